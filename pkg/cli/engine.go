// Package cli implements the interactive command-tree interpreter: line
// parsing, contextual tab completion, argument resolution, and dispatch over
// a cmdtree description, driven by a readline loop.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/neoul/jcmd/pkg/cmdtree"
)

// DefaultPrompt is used when no prompt is configured.
const DefaultPrompt = "jcmd> "

// ActionFunc is a callback bound to a method or func action. Methods are the
// engine's own registered behaviors; funcs are host callables supplied by
// the embedding application. Both receive the engine and the fully resolved
// arguments.
type ActionFunc func(e *Engine, args Args) error

// Engine interprets lines against one command tree. Each engine owns its
// tree, prompt, and completion state; subtree dispatch builds a fresh engine
// rather than sharing this one. Not safe for concurrent use: one line is
// fully dispatched before the next is read.
type Engine struct {
	prompt  string
	intro   string
	out     io.Writer
	history string
	tree    *cmdtree.Node
	log     *slog.Logger

	methods map[string]ActionFunc
	funcs   map[string]ActionFunc
	hooks   map[string]HookFunc

	preCmd  func(line string) string
	postCmd func(line string, err error)

	queue []string
	end   bool

	rl *readline.Instance

	// line state of the dispatch in flight
	curLine  string
	curWords []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPrompt sets the prompt string.
func WithPrompt(prompt string) Option { return func(e *Engine) { e.prompt = prompt } }

// WithIntro sets the text printed once when the loop starts.
func WithIntro(intro string) Option { return func(e *Engine) { e.intro = intro } }

// WithHistory sets the readline history file path.
func WithHistory(path string) Option { return func(e *Engine) { e.history = path } }

// WithOutput redirects the engine's reports and help output.
func WithOutput(w io.Writer) Option { return func(e *Engine) { e.out = w } }

// WithFunc registers a host callable for "func" actions.
func WithFunc(name string, fn ActionFunc) Option {
	return func(e *Engine) { e.funcs[name] = fn }
}

// WithMethod registers an engine method for "method" actions.
func WithMethod(name string, fn ActionFunc) Option {
	return func(e *Engine) { e.methods[name] = fn }
}

// WithCompletionHook registers a named completion override.
func WithCompletionHook(name string, fn HookFunc) Option {
	return func(e *Engine) { e.hooks[name] = fn }
}

// WithPreCmd sets a hook run on each line before dispatch; its result
// replaces the line.
func WithPreCmd(fn func(line string) string) Option {
	return func(e *Engine) { e.preCmd = fn }
}

// WithPostCmd sets a hook run after each dispatch with the line and its
// outcome.
func WithPostCmd(fn func(line string, err error)) Option {
	return func(e *Engine) { e.postCmd = fn }
}

// New creates an engine with an empty tree and the built-in commands
// injected. Descriptions are merged in afterwards with Load, LoadFile, or
// LoadMap.
func New(opts ...Option) *Engine {
	e := &Engine{
		prompt:  DefaultPrompt,
		out:     os.Stdout,
		tree:    cmdtree.New(),
		log:     slog.Default(),
		methods: make(map[string]ActionFunc),
		funcs:   make(map[string]ActionFunc),
		hooks:   make(map[string]HookFunc),
	}
	e.methods["do_quit"] = (*Engine).doQuit
	e.methods["do_help"] = (*Engine).doHelp
	e.methods["do_brief_help"] = (*Engine).doBriefHelp
	e.hooks["complete_help"] = completeHelp
	for _, opt := range opts {
		opt(e)
	}
	e.injectBuiltins()
	return e
}

// injectBuiltins adds the always-present commands: the end-of-input sentinel
// and its aliases, the shell escape, and the help commands.
func (e *Engine) injectBuiltins() {
	quit := &cmdtree.Node{
		Doc:    "quit (ctrl+d)",
		Action: &cmdtree.Action{Kind: cmdtree.ActionMethod, Name: "do_quit"},
	}
	e.tree.Children[cmdtree.EOF] = quit
	e.tree.Children["quit"] = quit
	e.tree.Children["exit"] = quit

	e.tree.Children[cmdtree.ExecShell] = &cmdtree.Node{
		Doc:    "execute a shell command",
		Action: &cmdtree.Action{Kind: cmdtree.ActionShell, Shell: []string{"{{shell-cmd}}"}},
		Args:   []*cmdtree.ArgSpec{{Name: "shell-cmd", Doc: "executable shell command"}},
	}

	e.tree.Children["help"] = &cmdtree.Node{
		Doc:            "show a command help",
		Action:         &cmdtree.Action{Kind: cmdtree.ActionMethod, Name: "do_help"},
		CompletionHook: "complete_help",
	}

	brief := &cmdtree.Node{
		Doc:            "show all the commands' help briefly",
		Action:         &cmdtree.Action{Kind: cmdtree.ActionMethod, Name: "do_brief_help"},
		CompletionHook: "complete_help",
	}
	e.tree.Children[cmdtree.BriefHelp] = brief
	e.tree.Children["list"] = brief
}

// Tree exposes the engine's command tree for inspection and direct merging.
func (e *Engine) Tree() *cmdtree.Node { return e.tree }

// Load merges a JSON, JSONC, or YAML description into the engine's tree.
// A malformed description leaves the tree empty or partially merged but
// always usable.
func (e *Engine) Load(src []byte) error {
	err := e.tree.Load(src)
	if err != nil {
		e.log.Debug("command tree load failed", "error", err)
	}
	return err
}

// LoadFile merges the description read from path.
func (e *Engine) LoadFile(path string) error {
	err := e.tree.LoadFile(path)
	if err != nil {
		e.log.Debug("command tree load failed", "file", path, "error", err)
	}
	return err
}

// LoadMap merges a native map description.
func (e *Engine) LoadMap(desc map[string]any) error { return e.tree.LoadMap(desc) }

// RegisterFunc registers a host callable for "func" actions.
func (e *Engine) RegisterFunc(name string, fn ActionFunc) { e.funcs[name] = fn }

// RegisterMethod registers an engine method for "method" actions.
func (e *Engine) RegisterMethod(name string, fn ActionFunc) { e.methods[name] = fn }

// RegisterCompletionHook registers a named completion override.
func (e *Engine) RegisterCompletionHook(name string, fn HookFunc) { e.hooks[name] = fn }

// Queue appends lines consumed by the read loop before prompting the
// terminal. Useful for scripted sessions.
func (e *Engine) Queue(lines ...string) { e.queue = append(e.queue, lines...) }

// Ended reports whether the end-of-input flag is set.
func (e *Engine) Ended() bool { return e.end }

// Run reads, completes, and dispatches lines until the end-of-input command
// sets the end flag. Dispatch errors are reported on the engine output and
// never stop the loop.
func (e *Engine) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          e.prompt,
		HistoryFile:     e.history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    &completer{e: e},
		Listener:        readline.FuncListener(e.helpKey),
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	e.rl = rl
	defer func() {
		rl.Close()
		e.rl = nil
	}()

	if e.intro != "" {
		fmt.Fprintln(e.out, e.intro)
	}
	for !e.end {
		line, err := e.nextLine()
		switch err {
		case nil:
		case readline.ErrInterrupt:
			continue
		case io.EOF:
			line = cmdtree.EOF
		default:
			return err
		}
		if e.preCmd != nil {
			line = e.preCmd(line)
		}
		dispatchErr := e.Dispatch(line)
		if dispatchErr != nil {
			e.report(dispatchErr)
		}
		if e.postCmd != nil {
			e.postCmd(line, dispatchErr)
		}
	}
	return nil
}

func (e *Engine) nextLine() (string, error) {
	if len(e.queue) > 0 {
		line := e.queue[0]
		e.queue = e.queue[1:]
		return line, nil
	}
	return e.rl.Readline()
}

// report renders any dispatch failure as a single line; the loop and the
// process always survive.
func (e *Engine) report(err error) {
	fmt.Fprintf(e.out, "** %v\n", err)
}

// helpWriter returns the writer help output should go to: readline's stdout
// while the loop runs, so the prompt redraws under the help text.
func (e *Engine) helpWriter() io.Writer {
	if e.rl != nil {
		return e.rl.Stdout()
	}
	return e.out
}

// helpKey intercepts the '?' key: it strips the character readline already
// inserted, prints per-level brief help, and keeps the line buffer so the
// user continues typing where they were.
func (e *Engine) helpKey(line []rune, pos int, key rune) ([]rune, int, bool) {
	if key != '?' || pos < 1 {
		return line, pos, false
	}
	clean := make([]rune, 0, len(line)-1)
	clean = append(clean, line[:pos-1]...)
	clean = append(clean, line[pos:]...)
	text := string(clean[:pos-1])

	boundary := text == "" || strings.HasSuffix(text, " ")
	pl, err := parseLine(text, boundary)
	if err != nil {
		return clean, pos - 1, true
	}
	words, last := pl.words, ""
	if pl.incomplete != "" {
		words, last = words[:len(words)-1], pl.incomplete
	}
	cands := e.briefCandidates(words, last)
	if len(cands) == 0 {
		fmt.Fprintln(e.helpWriter(), "  (no matching command)")
	} else {
		cmdtree.WriteHelp(e.helpWriter(), cands)
	}
	return clean, pos - 1, true
}

// briefCandidates lists the next-level commands below the deepest node the
// words reach, with a <cr> marker when that node is itself executable.
func (e *Engine) briefCandidates(words []string, last string) []cmdtree.Candidate {
	_, node := e.tree.Find(words, true)
	var out []cmdtree.Candidate
	for name, child := range node.Children {
		if cmdtree.Reserved(name) || !strings.HasPrefix(name, last) {
			continue
		}
		out = append(out, cmdtree.Candidate{Name: name, Desc: child.Doc})
	}
	if len(out) > 0 && node.IsLeaf() {
		out = append(out, cmdtree.Candidate{Name: "<cr>", Desc: node.Doc})
	}
	return out
}

// subEngine builds the nested engine for a subtree action: fresh tree and
// prompt, shared output and registries. Sub-modes keep no history store, so
// their lines never rewrite the parent's history file.
func (e *Engine) subEngine(ref cmdtree.SubtreeRef) *Engine {
	sub := New(WithOutput(e.out))
	maps.Copy(sub.methods, e.methods)
	maps.Copy(sub.funcs, e.funcs)
	maps.Copy(sub.hooks, e.hooks)
	sub.log = e.log
	if ref.Prompt != "" {
		sub.prompt = ref.Prompt
	}
	if ref.Intro != "" {
		sub.intro = ref.Intro
	}
	return sub
}
