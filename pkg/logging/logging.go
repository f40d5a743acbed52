// Package logging configures the process logger. An interactive session
// writes records to a rotating file rather than the terminal, so log output
// never interleaves with the prompt.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter appends to a file and rotates it once it grows past
// maxSize, keeping maxFiles numbered backups.
type RotatingWriter struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	maxSize  int64
	maxFiles int
	written  int64
}

// Config configures a RotatingWriter. Zero values select the defaults.
type Config struct {
	Path     string // log file path
	MaxSize  int64  // bytes before rotation (default: 1MB)
	MaxFiles int    // rotated files to keep (default: 3)
}

// NewRotatingWriter opens (or creates) the log file at cfg.Path.
func NewRotatingWriter(cfg Config) (*RotatingWriter, error) {
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 1 << 20
	}
	maxFiles := cfg.MaxFiles
	if maxFiles <= 0 {
		maxFiles = 3
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	w := &RotatingWriter{
		file:     f,
		path:     cfg.Path,
		maxSize:  maxSize,
		maxFiles: maxFiles,
	}
	if info, err := f.Stat(); err == nil {
		w.written = info.Size()
	}
	return w, nil
}

// Write implements io.Writer.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, fmt.Errorf("log file closed")
	}
	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	w.written += int64(n)
	if w.written >= w.maxSize {
		w.rotate()
	}
	return n, nil
}

// Close closes the log file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}

func (w *RotatingWriter) rotate() {
	w.file.Close()
	w.file = nil

	for i := w.maxFiles - 1; i > 0; i-- {
		old := fmt.Sprintf("%s.%d", w.path, i)
		next := fmt.Sprintf("%s.%d", w.path, i+1)
		os.Rename(old, next)
	}
	os.Rename(w.path, w.path+".1")
	os.Remove(fmt.Sprintf("%s.%d", w.path, w.maxFiles+1))

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}
	w.file = f
	w.written = 0
}

// New builds a text logger on w at Info level, or Debug when debug is set.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
