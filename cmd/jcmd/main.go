// jcmd is an interactive interpreter for JSON/JSONC/YAML-described command
// trees. It loads a description file, registers a few demonstration
// callables, and runs the read-dispatch loop.
//
// Try it against the files under examples/:
//
//	jcmd -file examples/demo.jsonc -history ~/.jcmd_history
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/neoul/jcmd/pkg/cli"
	"github.com/neoul/jcmd/pkg/logging"
)

// helloTree is the built-in demonstration tree used when no -file is given.
const helloTree = `{
	"hello": {
		"help": "print a greeting through the shell",
		"cmd": {"shell": "echo HELLO {{name}}"},
		"args": {"name": "who to greet"}
	}
}`

func main() {
	file := flag.String("file", "", "command tree description file (json, jsonc, or yaml)")
	history := flag.String("history", "", "readline history file")
	prompt := flag.String("prompt", cli.DefaultPrompt, "interpreter prompt")
	intro := flag.String("intro", "[Line-oriented command interface]", "text printed at startup")
	logFile := flag.String("log", "", "write logs to a rotating file instead of stderr")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// Logs go to a file when asked, so they never interleave with the
	// prompt; otherwise stderr.
	var logDst io.Writer = os.Stderr
	if *logFile != "" {
		w, err := logging.NewRotatingWriter(logging.Config{Path: *logFile})
		if err != nil {
			fmt.Fprintf(os.Stderr, "jcmd: %v\n", err)
			os.Exit(1)
		}
		defer w.Close()
		logDst = w
	}
	slog.SetDefault(logging.New(logDst, *debug))

	e := cli.New(
		cli.WithPrompt(*prompt),
		cli.WithIntro(*intro),
		cli.WithHistory(*history),
		cli.WithFunc("my-func", myFunc),
		cli.WithMethod("my_method", myMethod),
	)

	var err error
	if *file != "" {
		err = e.LoadFile(*file)
	} else {
		err = e.Load([]byte(helloTree))
	}
	if err != nil {
		// A bad description is reported, not fatal: the interpreter still
		// comes up with its built-in commands and whatever merged cleanly.
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}

	if err := e.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "jcmd: %v\n", err)
		os.Exit(1)
	}
}

func myFunc(e *cli.Engine, args cli.Args) error {
	fmt.Printf("my-func first=%s second=%s\n", args.Get("first"), args.Get("second"))
	return nil
}

func myMethod(e *cli.Engine, args cli.Args) error {
	fmt.Printf("my-method %v\n", map[string]cli.Value(args))
	return nil
}
