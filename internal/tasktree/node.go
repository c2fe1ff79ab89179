package tasktree

import "github.com/vk/taskbridge/internal/host"

// Literal is an attribute as set on the host wrapper.
type Literal struct {
	Name  string
	Value string
}

// Node is one constructed task or nested element: its name, the literal
// attributes set on it, and its children in build order. Element is the
// host object the node is mirrored into.
type Node struct {
	Name     string
	Attrs    []Literal
	Children []*Node
	Element  host.Element

	parent *Node
}

// Parent returns the node this one was attached to, nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Attr returns the literal value of an attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Walk visits n and its descendants depth-first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// attach is the only place a child is linked to its parent. It appends to
// the logical tree, the host element tree and the host wrapper tree in one
// step so the three stay in the same order.
func attach(parent, child *Node) {
	child.parent = parent
	parent.Children = append(parent.Children, child)
	parent.Element.AddChild(child.Element)
	parent.Element.Wrapper().AddChild(child.Element.Wrapper())
}
