package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/neoul/jcmd/pkg/cmdtree"
)

// doHelp shows detailed help for the deepest valid prefix of the typed
// command path: the doc line plus the declared arguments with their
// defaults, ranges, and enums.
func (e *Engine) doHelp(Args) error {
	target := e.curWords
	if len(target) > 1 {
		target = target[1:]
	}
	e.printDetailedHelp(target)
	return nil
}

func (e *Engine) printDetailedHelp(target []string) {
	n, node := e.tree.Find(target, true)
	w := e.helpWriter()
	writeWrapped(w, []string{
		strings.Join(target[:n], " "),
		fmt.Sprintf(":: %s", node.Doc),
	}, "  ", "  ")
	if !node.IsLeaf() || len(node.Args) == 0 {
		return
	}
	lines := []string{">> Required Arguments"}
	for _, spec := range node.Args {
		entry := fmt.Sprintf(" - %s: %s", spec.Name, spec.Doc)
		if spec.Default != nil {
			entry += fmt.Sprintf(" (default:%s)", Value(spec.Default).Text())
		}
		lines = append(lines, entry)
		if spec.Range != "" {
			lines = append(lines, fmt.Sprintf("   range(%s)", spec.Range))
		}
		if len(spec.Enum) > 0 {
			lines = append(lines, fmt.Sprintf("   enum(%s)", strings.Join(spec.Enum, ", ")))
		}
	}
	writeWrapped(w, lines, "  ", "     ")
}

// doBriefHelp lists the next-level commands under the typed path with their
// doc strings. When the path lands exactly on an executable node with no
// further children to list, detailed help is shown instead.
func (e *Engine) doBriefHelp(Args) error {
	target, last := e.curWords[1:], ""
	if !strings.HasSuffix(e.curLine, " ") && len(target) > 0 {
		last = target[len(target)-1]
		target = target[:len(target)-1]
	}
	cands := e.briefCandidates(target, last)
	if len(cands) == 0 {
		if _, node := e.tree.Find(target, true); node.IsLeaf() {
			e.printDetailedHelp(target)
		}
		return nil
	}
	cmdtree.WriteHelp(e.helpWriter(), cands)
	return nil
}

// completeHelp completes command paths for the help command, never offering
// help itself.
func completeHelp(e *Engine, remainder []string, incomplete string) []string {
	cur := e.tree
	count := len(remainder)
	if incomplete != "" {
		count--
	}
	idx := 0
	for idx < count {
		next := cur.Children[remainder[idx]]
		if next == nil {
			break
		}
		cur = next
		idx++
	}
	prefix := ""
	if rest := remainder[idx:]; len(rest) > 0 {
		prefix = rest[0]
	}
	var out []string
	for name := range cur.Children {
		if cmdtree.Reserved(name) || name == "help" || name == "list" {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			out = append(out, name+" ")
		}
	}
	return out
}

// termWidth returns the terminal column count, 80 when stdout is not a
// terminal.
func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// writeWrapped prints each entry wrapped to the terminal width, indenting
// continuation lines with subIndent.
func writeWrapped(w io.Writer, entries []string, indent, subIndent string) {
	width := termWidth()
	var sb strings.Builder
	for _, entry := range entries {
		for _, line := range wrapText(entry, width, indent, subIndent) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	io.WriteString(w, sb.String())
}

func wrapText(s string, width int, indent, subIndent string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	var lines []string
	cur := indent + fields[0]
	pad := subIndent
	for _, f := range fields[1:] {
		if len(cur)+1+len(f) > width {
			lines = append(lines, cur)
			cur = pad + f
			continue
		}
		cur += " " + f
	}
	return append(lines, cur)
}
