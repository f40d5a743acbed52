package cmdtree

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Candidate holds a command name and its description for display.
type Candidate struct {
	Name string
	Desc string
}

// WriteHelp prints aligned completion candidates to w. The entire output is
// built as a single string and written in one call so that readline's
// wrapWriter triggers only one refresh cycle.
func WriteHelp(w io.Writer, candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })
	maxWidth := 20
	for _, c := range candidates {
		if len(c.Name)+2 > maxWidth {
			maxWidth = len(c.Name) + 2
		}
	}
	var sb strings.Builder
	sb.WriteString("Possible completions:\n")
	for _, c := range candidates {
		if c.Desc != "" {
			fmt.Fprintf(&sb, "  %-*s %s\n", maxWidth, c.Name, c.Desc)
		} else {
			fmt.Fprintf(&sb, "  %s\n", c.Name)
		}
	}
	io.WriteString(w, sb.String())
}

// HelpCandidates returns the node's children as display candidates,
// excluding the reserved commands.
func (n *Node) HelpCandidates() []Candidate {
	candidates := make([]Candidate, 0, len(n.Children))
	for name, child := range n.Children {
		if Reserved(name) {
			continue
		}
		candidates = append(candidates, Candidate{Name: name, Desc: child.Doc})
	}
	return candidates
}

// CommonPrefix returns the longest shared prefix among the given strings.
func CommonPrefix(items []string) string {
	if len(items) == 0 {
		return ""
	}
	prefix := items[0]
	for _, s := range items[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}

// FilterPrefix returns only items that start with the given prefix.
func FilterPrefix(items []string, prefix string) []string {
	if prefix == "" {
		return items
	}
	var result []string
	for _, item := range items {
		if strings.HasPrefix(item, prefix) {
			result = append(result, item)
		}
	}
	return result
}
