package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/neoul/jcmd/pkg/cmdtree"
)

// Dispatch runs one full cycle for a submitted line: parse, best-match find,
// argument resolution, and action invocation. The returned error is one of
// the package's typed errors; callers report it and keep reading — Run does
// exactly that. An empty line is a no-op.
func (e *Engine) Dispatch(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	pl, err := parseLine(line, true)
	if err != nil {
		// Malformed quoting reads as a command that cannot exist.
		return &UnknownCommandError{Line: line}
	}
	_, node := e.tree.Find(pl.words, true)
	if !node.IsLeaf() {
		return &UnknownCommandError{Line: line}
	}

	args, err := resolveArgs(pl.args, node.Args)
	if err != nil {
		return err
	}

	e.curLine, e.curWords = line, pl.words
	defer func() { e.curLine, e.curWords = "", nil }()
	e.log.Debug("dispatch", "line", line, "action", node.Action.Kind.String())

	switch node.Action.Kind {
	case cmdtree.ActionShell:
		return e.execShell(node.Action.Shell, args)
	case cmdtree.ActionMethod:
		fn := e.methods[node.Action.Name]
		if fn == nil {
			return &ActionNotFoundError{Kind: "method", Name: node.Action.Name}
		}
		if err := fn(e, args); err != nil {
			return &ActionFailedError{Err: err}
		}
		return nil
	case cmdtree.ActionFunc:
		for _, name := range node.Action.Funcs {
			fn := e.funcs[name]
			if fn == nil {
				return &ActionNotFoundError{Kind: "func", Name: name}
			}
			if err := fn(e, args); err != nil {
				return &ActionFailedError{Err: err}
			}
		}
		return nil
	case cmdtree.ActionSubtree:
		return e.enterSubtree(node.Action.Subtree)
	default:
		return &UnknownCommandError{Line: line}
	}
}

// execShell substitutes {{name}} placeholders into each template, joins the
// templates with " && " so a later step is skipped when an earlier one
// fails, and runs the result through the shell with the engine's streams.
// Values are inserted as plain text; quoting is the template author's
// responsibility.
func (e *Engine) execShell(templates []string, args Args) error {
	steps := make([]string, len(templates))
	for i, t := range templates {
		s, err := expandTemplate(t, args)
		if err != nil {
			return err
		}
		steps[i] = s
	}
	cmdStr := strings.Join(steps, " && ")
	fmt.Fprintf(e.out, "  shell: %s\n", cmdStr)

	cmd := exec.Command("sh", "-c", cmdStr)
	cmd.Stdin = os.Stdin
	cmd.Stdout = e.out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &ActionFailedError{Err: err}
	}
	return nil
}

// expandTemplate replaces every {{name}} in t with the argument's text. An
// unterminated placeholder is left as-is; an unknown name is an error.
func expandTemplate(t string, args Args) (string, error) {
	var sb strings.Builder
	for {
		i := strings.Index(t, "{{")
		if i < 0 {
			break
		}
		j := strings.Index(t[i:], "}}")
		if j < 0 {
			break
		}
		key := t[i+2 : i+j]
		v, ok := args[key]
		if !ok {
			return "", &MissingArgumentError{Name: key}
		}
		sb.WriteString(t[:i])
		sb.WriteString(v.Text())
		t = t[i+j+2:]
	}
	sb.WriteString(t)
	return sb.String(), nil
}

// enterSubtree loads the referenced command file into a fresh engine and
// runs its read-dispatch loop to completion — a blocking recursive call —
// before control returns to this engine's loop. A load failure is reported
// and the sub-mode still opens with its built-in commands, matching how the
// outer engine treats a bad description.
func (e *Engine) enterSubtree(ref cmdtree.SubtreeRef) error {
	sub := e.subEngine(ref)
	if err := sub.LoadFile(ref.File); err != nil {
		sub.report(err)
	}
	if err := sub.Run(); err != nil {
		return &ActionFailedError{Err: err}
	}
	return nil
}

// doQuit is the end-of-input action: it sets the end flag consulted by the
// read loop after every cycle.
func (e *Engine) doQuit(Args) error {
	fmt.Fprintln(e.out)
	e.end = true
	return nil
}
