package cmdtree

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const helloJSON = `{
	"hello": {
		"help": "greeting",
		"cmd": {"shell": "echo HELLO {{name}}"},
		"args": {"name": "who to greet"}
	}
}`

func TestLoadJSON(t *testing.T) {
	root := New()
	if err := root.Load([]byte(helloJSON)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hello := root.Child("hello")
	if hello == nil {
		t.Fatal("hello node missing")
	}
	if hello.Doc != "greeting" {
		t.Errorf("Doc = %q, want greeting", hello.Doc)
	}
	if !hello.IsLeaf() {
		t.Fatal("hello should be a leaf")
	}
	if hello.Action.Kind != ActionShell {
		t.Errorf("Kind = %v, want shell", hello.Action.Kind)
	}
	if len(hello.Action.Shell) != 1 || hello.Action.Shell[0] != "echo HELLO {{name}}" {
		t.Errorf("Shell = %v", hello.Action.Shell)
	}
	spec := hello.Arg("name")
	if spec == nil {
		t.Fatal("name arg missing")
	}
	if spec.Doc != "who to greet" {
		t.Errorf("arg Doc = %q, want who to greet", spec.Doc)
	}
}

func TestLoadJSONCComments(t *testing.T) {
	src := `{
		// greeting command
		"hello": {
			"help": "greeting",
			"cmd": {"shell": "echo hi"}, /* trailing ok */
		},
	}`
	root := New()
	if err := root.Load([]byte(src)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if root.Child("hello") == nil {
		t.Fatal("hello node missing")
	}
}

func TestLoadJSONCLeadingComment(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"line comment", "// demonstration tree\n// second line\n" + helloJSON},
		{"block comment", "/* demonstration tree */\n" + helloJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := New()
			if err := root.Load([]byte(tt.src)); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if root.Child("hello") == nil {
				t.Fatal("hello node missing")
			}
		})
	}
}

func TestLoadExampleFiles(t *testing.T) {
	for _, name := range []string{"hello.json", "demo.jsonc", "nested.yaml"} {
		t.Run(name, func(t *testing.T) {
			root := New()
			if err := root.LoadFile(filepath.Join("..", "..", "examples", name)); err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if len(root.Children) == 0 {
				t.Fatal("no commands loaded")
			}
		})
	}
}

func TestLoadYAMLArgOrder(t *testing.T) {
	src := `
cmdx:
  help: ordered args
  cmd:
    method: noop
  args:
    zebra: last in sort, first in declaration
    alpha: first in sort, second in declaration
    middle:
      help: third
      default: [a, b]
`
	root := New()
	if err := root.Load([]byte(src)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	node := root.Child("cmdx")
	if node == nil {
		t.Fatal("cmdx missing")
	}
	want := []string{"zebra", "alpha", "middle"}
	if len(node.Args) != len(want) {
		t.Fatalf("got %d args, want %d", len(node.Args), len(want))
	}
	for i, name := range want {
		if node.Args[i].Name != name {
			t.Errorf("Args[%d] = %q, want %q", i, node.Args[i].Name, name)
		}
	}
	if got := node.Arg("middle").Default; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("middle default = %v, want [a b]", got)
	}
}

func TestLoadMerge(t *testing.T) {
	root := New()
	if err := root.Load([]byte(`{"show": {"version": {"help": "v", "cmd": {"shell": "true"}}}}`)); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := root.Load([]byte(`{"show": {"status": {"help": "s", "cmd": {"shell": "true"}}}}`)); err != nil {
		t.Fatalf("second load: %v", err)
	}
	show := root.Child("show")
	if show == nil {
		t.Fatal("show missing")
	}
	if show.Child("version") == nil || show.Child("status") == nil {
		t.Fatal("merge dropped a sibling")
	}

	// Repeating a key overwrites its doc without discarding children.
	if err := root.Load([]byte(`{"show": {"help": "display things"}}`)); err != nil {
		t.Fatalf("third load: %v", err)
	}
	if show.Doc != "display things" {
		t.Errorf("Doc = %q, want overwritten", show.Doc)
	}
	if show.Child("version") == nil {
		t.Fatal("overwrite discarded children")
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad action tag", `{"x": {"cmd": {"launch": "nope"}}}`},
		{"two action tags", `{"x": {"cmd": {"shell": "a", "method": "b"}}}`},
		{"no action tag", `{"x": {"cmd": {}}}`},
		{"scalar node", `{"x": "not a mapping"}`},
		{"subtree without file", `{"x": {"cmd": {"subtree": {"prompt": "p"}}}}`},
		{"unparseable", `{"x": `},
		{"top-level scalar", `"words"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := New()
			err := root.Load([]byte(tt.src))
			var mtErr *MalformedTreeError
			if !errors.As(err, &mtErr) {
				t.Fatalf("Load = %v, want MalformedTreeError", err)
			}
		})
	}
}

func TestLoadMalformedKeepsPartialTree(t *testing.T) {
	root := New()
	if err := root.Load([]byte(helloJSON)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := root.Load([]byte(`{"broken": {"cmd": {"warp": "x"}}}`)); err == nil {
		t.Fatal("want error for bad action tag")
	}
	if root.Child("hello") == nil {
		t.Fatal("failed load destroyed prior tree")
	}
}

func TestLoadMap(t *testing.T) {
	root := New()
	err := root.LoadMap(map[string]any{
		"hello": map[string]any{
			"help": "greeting",
			"cmd":  map[string]any{"shell": "echo hi"},
			"args": map[string]any{"name": "who"},
		},
	})
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if root.Child("hello") == nil || !root.Child("hello").IsLeaf() {
		t.Fatal("hello not loaded as a leaf")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := os.WriteFile(path, []byte(helloJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	root := New()
	if err := root.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if root.Child("hello") == nil {
		t.Fatal("hello missing")
	}

	var mtErr *MalformedTreeError
	if err := root.LoadFile(filepath.Join(t.TempDir(), "nope.json")); !errors.As(err, &mtErr) {
		t.Fatalf("LoadFile missing = %v, want MalformedTreeError", err)
	}
}

func TestLoadFuncList(t *testing.T) {
	root := New()
	src := `{"multi": {"cmd": {"func": ["first", "second"]}}}`
	if err := root.Load([]byte(src)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	node := root.Child("multi")
	if node.Action.Kind != ActionFunc {
		t.Fatalf("Kind = %v, want func", node.Action.Kind)
	}
	if len(node.Action.Funcs) != 2 || node.Action.Funcs[0] != "first" {
		t.Errorf("Funcs = %v, want [first second]", node.Action.Funcs)
	}
}

func TestMixedNode(t *testing.T) {
	// A node may be a leaf and still have children.
	src := `{
		"net": {
			"help": "network commands",
			"cmd": {"shell": "ip addr"},
			"stats": {"help": "counters", "cmd": {"shell": "ip -s link"}}
		}
	}`
	root := New()
	if err := root.Load([]byte(src)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	net := root.Child("net")
	if !net.IsLeaf() {
		t.Error("net should be a leaf")
	}
	if net.Child("stats") == nil {
		t.Error("net should keep its child")
	}
}
