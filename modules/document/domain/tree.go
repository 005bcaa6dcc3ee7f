package domain

// NodeKind discriminates structured-tree nodes.
type NodeKind int

const (
	TextNode NodeKind = iota
	MacroNode
	GroupNode
)

// Node is one element of a document's structured tree. Macro nodes carry a
// macro name and its parameters.
type Node struct {
	Kind     NodeKind
	Text     string
	Macro    string
	Params   map[string]string
	Children []*Node
}

func (n *Node) Param(name string) string {
	if n.Params == nil {
		return ""
	}
	return n.Params[name]
}

// Tree is the parsed representation of a document body or a large-text
// field value.
type Tree struct {
	Blocks []*Node
}

// Walk visits every node depth-first. The visitor returns false to stop.
func (t *Tree) Walk(visit func(*Node) bool) {
	if t == nil {
		return
	}
	var rec func(nodes []*Node) bool
	rec = func(nodes []*Node) bool {
		for _, n := range nodes {
			if !visit(n) {
				return false
			}
			if !rec(n.Children) {
				return false
			}
		}
		return true
	}
	rec(t.Blocks)
}

// Macros returns every macro node with the given name, in document order.
func (t *Tree) Macros(name string) []*Node {
	var out []*Node
	t.Walk(func(n *Node) bool {
		if n.Kind == MacroNode && n.Macro == name {
			out = append(out, n)
		}
		return true
	})
	return out
}
