// Package cmdtree implements the command tree for jcmd.
//
// This is the SINGLE SOURCE OF TRUTH for what a running interpreter can do:
// a hierarchy of named nodes built from a JSON, JSONC, or YAML description.
// Each node carries a doc string, child nodes, an optional action binding,
// and an ordered argument specification. The pkg/cli engine walks this tree
// for tab completion, ? help, and dispatch.
//
// A node may carry children and an action at the same time (a command with
// sub-commands and its own behavior); the two are never exclusive.
package cmdtree

// Description keys consumed by the loader. Every other key in a description
// mapping names a child command.
const (
	KeyHelp = "help"
	KeyCmd  = "cmd"
	KeyArgs = "args"
)

// NoHelp is the doc string assigned to nodes without a help entry.
const NoHelp = "no help"

// Reserved command names, injected into every tree by the engine and
// excluded from generic completion and brief help.
const (
	ExecShell = "!"
	BriefHelp = "?"
	EOF       = "EOF"
)

// Reserved reports whether name is one of the reserved commands.
func Reserved(name string) bool {
	switch name {
	case ExecShell, BriefHelp, EOF:
		return true
	}
	return false
}

// ActionKind tags the action variant bound to a leaf node.
type ActionKind int

const (
	ActionShell ActionKind = iota + 1 // run shell command templates
	ActionFunc                        // invoke registered host functions
	ActionMethod                      // invoke a registered engine method
	ActionSubtree                     // enter a nested command tree
)

func (k ActionKind) String() string {
	switch k {
	case ActionShell:
		return "shell"
	case ActionFunc:
		return "func"
	case ActionMethod:
		return "method"
	case ActionSubtree:
		return "subtree"
	default:
		return "none"
	}
}

// SubtreeRef points at a nested command tree entered as a sub-mode.
type SubtreeRef struct {
	File   string
	Prompt string
	Intro  string
}

// Action is the tagged union of behaviors a leaf node can bind.
type Action struct {
	Kind    ActionKind
	Shell   []string   // ActionShell: command templates, joined with " && "
	Funcs   []string   // ActionFunc: registered function names, run in order
	Name    string     // ActionMethod: registered method name
	Subtree SubtreeRef // ActionSubtree
}

// ArgSpec describes one declared argument of a leaf command.
type ArgSpec struct {
	Name    string
	Doc     string
	Default []string // nil means mandatory
	Range   string   // "<lo-hi>" inclusive integer bounds
	Enum    []string // ordered allowed values
	Type    string   // "path" enables filesystem completion
}

// Node is one level of the command tree.
type Node struct {
	Doc            string
	Children       map[string]*Node
	Action         *Action    // nil unless the node is a leaf
	Args           []*ArgSpec // declaration order
	CompletionHook string     // overrides generic completion when set
}

// New returns an empty, non-leaf node.
func New() *Node {
	return &Node{Doc: NoHelp, Children: make(map[string]*Node)}
}

// IsLeaf reports whether the node declares an action.
func (n *Node) IsLeaf() bool { return n.Action != nil }

// Child returns the named child node, or nil.
func (n *Node) Child(name string) *Node { return n.Children[name] }

// Arg returns the declared argument spec for name, or nil.
func (n *Node) Arg(name string) *ArgSpec {
	for _, a := range n.Args {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Find walks the tree one word per level. It returns the number of words
// consumed and the node reached. With bestMatch, a missing key stops the
// walk at the deepest existing node; otherwise the result node is nil.
func (n *Node) Find(words []string, bestMatch bool) (int, *Node) {
	cur := n
	for i, w := range words {
		next := cur.Children[w]
		if next == nil {
			if bestMatch {
				return i, cur
			}
			return i, nil
		}
		cur = next
	}
	return len(words), cur
}
