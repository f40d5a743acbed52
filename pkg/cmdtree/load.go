package cmdtree

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// MalformedTreeError reports an unusable command description. The tree the
// loader was merging into stays valid: keys applied before the error remain.
type MalformedTreeError struct {
	Path string // slash-separated description path of the offending key
	Err  error
}

func (e *MalformedTreeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed command tree: %v", e.Err)
	}
	return fmt.Sprintf("malformed command tree at %s: %v", e.Path, e.Err)
}

func (e *MalformedTreeError) Unwrap() error { return e.Err }

func malformed(path, format string, args ...any) error {
	return &MalformedTreeError{Path: path, Err: fmt.Errorf(format, args...)}
}

// Load merges a JSON, JSONC, or YAML description into the tree. A source
// whose first non-space byte is '{' or '/' (a leading comment) is treated
// as JSON with comments and trailing commas allowed; anything else is
// parsed as YAML. Both go through the yaml.v3 node API so mapping key order
// survives — argument declaration order is significant for completion.
//
// Repeated loads merge: existing children are descended into, doc strings
// and action bindings are overwritten when the new description sets them,
// and siblings from earlier loads are kept.
func (n *Node) Load(src []byte) error {
	trimmed := strings.TrimSpace(string(src))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "/") {
		src = jsonc.ToJSON(src)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return &MalformedTreeError{Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return malformed("", "top-level description must be a mapping")
	}
	return n.merge(root, "")
}

// LoadFile reads path and merges its description into the tree.
func (n *Node) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &MalformedTreeError{Err: err}
	}
	return n.Load(data)
}

// LoadMap merges a native description into the tree by round-tripping it
// through encoding/json. Go maps are unordered and json.Marshal sorts keys,
// so argument declaration order for map input is lexical; use a text
// description when order matters.
func (n *Node) LoadMap(desc map[string]any) error {
	data, err := json.Marshal(desc)
	if err != nil {
		return &MalformedTreeError{Err: err}
	}
	return n.Load(data)
}

func deref(v *yaml.Node) *yaml.Node {
	if v != nil && v.Kind == yaml.AliasNode && v.Alias != nil {
		return v.Alias
	}
	return v
}

func (n *Node) merge(m *yaml.Node, path string) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i].Value
		v := deref(m.Content[i+1])
		childPath := path + "/" + key
		switch key {
		case KeyHelp:
			if v.Kind != yaml.ScalarNode {
				return malformed(childPath, "help must be a string")
			}
			n.Doc = v.Value
		case KeyCmd:
			if err := n.setAction(v, childPath); err != nil {
				return err
			}
		case KeyArgs:
			if err := n.setArgs(v, childPath); err != nil {
				return err
			}
		default:
			if v.Kind != yaml.MappingNode {
				return malformed(childPath, "command node must be a mapping")
			}
			child := n.Children[key]
			if child == nil {
				child = New()
				if n.Children == nil {
					n.Children = make(map[string]*Node)
				}
				n.Children[key] = child
			}
			if err := child.merge(v, childPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// setAction destructures a cmd mapping into the node's action binding.
// Exactly one action tag must be present; the optional complete key names a
// completion hook.
func (n *Node) setAction(v *yaml.Node, path string) error {
	if v.Kind != yaml.MappingNode {
		return malformed(path, "cmd must be a mapping")
	}
	action := &Action{}
	hook := ""
	tags := 0
	for i := 0; i+1 < len(v.Content); i += 2 {
		key := v.Content[i].Value
		val := deref(v.Content[i+1])
		switch key {
		case "shell":
			list, err := scalarList(val, path+"/shell")
			if err != nil {
				return err
			}
			action.Kind = ActionShell
			action.Shell = list
			tags++
		case "func":
			list, err := scalarList(val, path+"/func")
			if err != nil {
				return err
			}
			action.Kind = ActionFunc
			action.Funcs = list
			tags++
		case "method":
			if val.Kind != yaml.ScalarNode {
				return malformed(path+"/method", "method must be a name")
			}
			action.Kind = ActionMethod
			action.Name = val.Value
			tags++
		case "subtree":
			ref, err := subtreeRef(val, path+"/subtree")
			if err != nil {
				return err
			}
			action.Kind = ActionSubtree
			action.Subtree = ref
			tags++
		case "complete":
			if val.Kind != yaml.ScalarNode {
				return malformed(path+"/complete", "complete must be a name")
			}
			hook = val.Value
		default:
			return malformed(path+"/"+key, "unsupported action tag")
		}
	}
	if tags != 1 {
		return malformed(path, "cmd requires exactly one of shell, func, method, subtree")
	}
	n.Action = action
	n.CompletionHook = hook
	return nil
}

// setArgs replaces the node's argument specification. Entries that are not
// mappings are normalized to {help: value}.
func (n *Node) setArgs(v *yaml.Node, path string) error {
	if v.Kind != yaml.MappingNode {
		return malformed(path, "args must be a mapping")
	}
	args := make([]*ArgSpec, 0, len(v.Content)/2)
	for i := 0; i+1 < len(v.Content); i += 2 {
		name := v.Content[i].Value
		val := deref(v.Content[i+1])
		spec := &ArgSpec{Name: name, Doc: NoHelp}
		switch val.Kind {
		case yaml.ScalarNode:
			spec.Doc = val.Value
		case yaml.MappingNode:
			if err := fillArgSpec(spec, val, path+"/"+name); err != nil {
				return err
			}
		default:
			return malformed(path+"/"+name, "argument spec must be a mapping or help string")
		}
		args = append(args, spec)
	}
	n.Args = args
	return nil
}

func fillArgSpec(spec *ArgSpec, v *yaml.Node, path string) error {
	for i := 0; i+1 < len(v.Content); i += 2 {
		key := v.Content[i].Value
		val := deref(v.Content[i+1])
		switch key {
		case KeyHelp:
			if val.Kind != yaml.ScalarNode {
				return malformed(path+"/help", "help must be a string")
			}
			spec.Doc = val.Value
		case "default":
			list, err := scalarList(val, path+"/default")
			if err != nil {
				return err
			}
			spec.Default = list
		case "range":
			if val.Kind != yaml.ScalarNode {
				return malformed(path+"/range", "range must be a <lo-hi> string")
			}
			spec.Range = val.Value
		case "enum":
			list, err := scalarList(val, path+"/enum")
			if err != nil {
				return err
			}
			spec.Enum = list
		case "type":
			if val.Kind != yaml.ScalarNode {
				return malformed(path+"/type", "type must be a string")
			}
			spec.Type = val.Value
		default:
			// Unknown spec keys are ignored.
		}
	}
	return nil
}

func scalarList(v *yaml.Node, path string) ([]string, error) {
	switch v.Kind {
	case yaml.ScalarNode:
		return []string{v.Value}, nil
	case yaml.SequenceNode:
		list := make([]string, 0, len(v.Content))
		for _, item := range v.Content {
			item = deref(item)
			if item.Kind != yaml.ScalarNode {
				return nil, malformed(path, "list entries must be scalars")
			}
			list = append(list, item.Value)
		}
		return list, nil
	default:
		return nil, malformed(path, "expected a scalar or list")
	}
}

func subtreeRef(v *yaml.Node, path string) (SubtreeRef, error) {
	var ref SubtreeRef
	if v.Kind != yaml.MappingNode {
		return ref, malformed(path, "subtree must be a mapping")
	}
	for i := 0; i+1 < len(v.Content); i += 2 {
		key := v.Content[i].Value
		val := deref(v.Content[i+1])
		if val.Kind != yaml.ScalarNode {
			return ref, malformed(path+"/"+key, "must be a string")
		}
		switch key {
		case "file":
			ref.File = val.Value
		case "prompt":
			ref.Prompt = val.Value
		case "intro":
			ref.Intro = val.Value
		default:
			return ref, malformed(path+"/"+key, "unsupported subtree key")
		}
	}
	if ref.File == "" {
		return ref, malformed(path, "subtree requires a file")
	}
	return ref, nil
}
