package cli

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/neoul/jcmd/pkg/cmdtree"
)

// HookFunc is a completion-hook callback. remainder holds the words not yet
// consumed by the tree walk, incomplete the token under the cursor. The
// result is handed to readline verbatim, even when empty.
type HookFunc func(e *Engine, remainder []string, incomplete string) []string

// Complete returns the sorted candidate set for the given line prefix, the
// way the completion callback offers them: command names carry a trailing
// space, argument names a trailing '='.
func (e *Engine) Complete(text string) []string {
	boundary := text == "" || text[len(text)-1] == ' ' || text[len(text)-1] == '\t'
	pl, err := parseLine(text, boundary)
	if err != nil {
		return nil
	}
	return dedupSort(e.completeLine(pl))
}

// completeLine walks the typed words through the tree and produces the
// next-token candidates. A visited node with a registered completion hook
// takes over entirely; its result is final even when empty.
func (e *Engine) completeLine(pl parsedLine) []string {
	cur := e.tree
	remainder := pl.words
	for i, w := range pl.words {
		if pl.incomplete != "" && i+1 == len(pl.words) {
			break
		}
		next := cur.Children[w]
		if next == nil {
			break
		}
		cur = next
		remainder = remainder[1:]
		if cur.CompletionHook != "" {
			if hook := e.hooks[cur.CompletionHook]; hook != nil {
				return hook(e, remainder, pl.incomplete)
			}
		}
	}

	// Everything typed so far names an existing node: offer its children,
	// and for a leaf the next argument.
	if len(remainder) == 0 {
		cands := childCandidates(cur, "")
		if cur.IsLeaf() {
			cands = append(cands, nextArg(cur, "", pl)...)
		}
		return cands
	}

	// The token under the cursor may still be a child-name prefix.
	if pl.incomplete != "" {
		if cands := childCandidates(cur, pl.incomplete); len(cands) > 0 {
			if cur.IsLeaf() {
				cands = append(cands, nextArg(cur, pl.incomplete, pl)...)
			}
			return cands
		}
	}

	if cur.IsLeaf() {
		return e.completeArgs(cur, remainder, pl)
	}
	return nil
}

// completeArgs offers argument candidates for a leaf node. Declared
// arguments must be supplied in declaration order, so the name candidate is
// always the first declared argument not yet present. A token that names a
// supplied argument under the cursor switches to value completion.
func (e *Engine) completeArgs(n *cmdtree.Node, remainder []string, pl parsedLine) []string {
	for _, key := range remainder {
		spec := n.Arg(key)
		if spec == nil || !pl.args.Has(key) {
			return nextArg(n, key, pl)
		}
		if pl.incomplete == key {
			return completeValue(spec, pl.args[key])
		}
	}
	return nextArg(n, "", pl)
}

// nextArg returns the next offerable argument name with a '=' tail: the
// first declared argument not yet supplied, and only when it matches the
// typed prefix. Later arguments are never offered before earlier ones.
func nextArg(n *cmdtree.Node, prefix string, pl parsedLine) []string {
	for _, spec := range n.Args {
		if pl.args.Has(spec.Name) {
			continue
		}
		if strings.HasPrefix(spec.Name, prefix) {
			return []string{spec.Name + "="}
		}
		return nil
	}
	return nil
}

// completeValue produces value candidates for one argument: enum members
// filtered by the typed prefix, filesystem matches for path arguments, or an
// echo of the current value.
func completeValue(spec *cmdtree.ArgSpec, cur Value) []string {
	last := ""
	if len(cur) > 0 {
		last = cur[len(cur)-1]
	}
	switch {
	case len(spec.Enum) > 0:
		return cmdtree.FilterPrefix(spec.Enum, last)
	case spec.Type == "path":
		matches, err := filepath.Glob(last + "*")
		if err != nil {
			return nil
		}
		return matches
	default:
		if last == "" {
			return nil
		}
		return []string{last}
	}
}

// childCandidates lists child names with a trailing space, excluding the
// reserved commands, filtered by prefix.
func childCandidates(n *cmdtree.Node, prefix string) []string {
	var out []string
	for name := range n.Children {
		if cmdtree.Reserved(name) || !strings.HasPrefix(name, prefix) {
			continue
		}
		out = append(out, name+" ")
	}
	return out
}

func dedupSort(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	slices.Sort(items)
	return slices.Compact(items)
}

// completer adapts the engine to readline's AutoComplete contract.
type completer struct {
	e *Engine
}

// Do completes the word under the cursor. A single candidate inserts its
// remaining suffix; multiple candidates print an aligned description list
// above the prompt and insert their common prefix.
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	cands := c.e.Complete(text)
	if len(cands) == 0 {
		return nil, 0
	}
	partial := lastFragment(text)

	if len(cands) == 1 {
		if !strings.HasPrefix(cands[0], partial) {
			return nil, 0
		}
		return [][]rune{[]rune(cands[0][len(partial):])}, len(partial)
	}

	c.e.writeCandidateHelp(text, cands)
	cp := cmdtree.CommonPrefix(cands)
	if !strings.HasPrefix(cp, partial) || len(cp) == len(partial) {
		return nil, 0
	}
	return [][]rune{[]rune(cp[len(partial):])}, len(partial)
}

// lastFragment returns the text after the last completion delimiter: the
// part of the word under the cursor that candidates must extend.
func lastFragment(text string) string {
	idx := strings.LastIndexAny(text, " \t=,")
	if idx < 0 {
		return text
	}
	return text[idx+1:]
}

// writeCandidateHelp prints the candidate set with doc strings above the
// prompt, resolving each candidate against the node the typed words reach.
func (e *Engine) writeCandidateHelp(text string, cands []string) {
	boundary := text == "" || text[len(text)-1] == ' ' || text[len(text)-1] == '\t'
	pl, err := parseLine(text, boundary)
	if err != nil {
		return
	}
	words := pl.words
	if pl.incomplete != "" && len(words) > 0 {
		words = words[:len(words)-1]
	}
	_, node := e.tree.Find(words, true)

	display := make([]cmdtree.Candidate, 0, len(cands))
	for _, cand := range cands {
		c := cmdtree.Candidate{Name: strings.TrimRight(cand, " ")}
		switch {
		case strings.HasSuffix(cand, "="):
			if spec := node.Arg(strings.TrimSuffix(cand, "=")); spec != nil {
				c.Desc = spec.Doc
			}
		case strings.HasSuffix(cand, " "):
			if child := node.Child(c.Name); child != nil {
				c.Desc = child.Doc
			}
		}
		display = append(display, c)
	}
	cmdtree.WriteHelp(e.helpWriter(), display)
}
