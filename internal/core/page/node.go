// Package page holds the document model that modals attach to: a tree of
// nodes with classes, visibility and style, plus the viewport it is shown in.
package page

import "slices"

// Style holds the animatable presentation properties of a node. Top and Left
// are document coordinates measured in terminal cells.
type Style struct {
	Opacity float64
	Top     float64
	Left    float64
}

// Node is a single element of a page.
type Node struct {
	ID      string
	Classes []string
	Content string // markdown
	Label   string // text shown for controls (buttons, links)
	Href    string // default action target for controls
	Hidden  bool
	Style   Style

	parent   *Node
	children []*Node
}

// NewNode creates a visible, fully opaque node.
func NewNode(id string, classes ...string) *Node {
	return &Node{
		ID:      id,
		Classes: classes,
		Style:   Style{Opacity: 1},
	}
}

// HasClass reports whether the node carries the given class marker.
func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.Classes, class)
}

// Show makes the node visible without touching its opacity.
func (n *Node) Show() { n.Hidden = false }

// Hide removes the node from rendering.
func (n *Node) Hide() { n.Hidden = true }

// Visible returns true when the node is not hidden.
func (n *Node) Visible() bool { return !n.Hidden }

// AppendChild adds child as the last child of n and returns it.
func (n *Node) AppendChild(child *Node) *Node {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// Children returns the node's children in document order.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the node's parent or nil for a detached node or the body.
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = slices.Delete(n.children, i, i+1)
			break
		}
	}
	child.parent = nil
}

// walk visits n and its descendants depth first. Returning false from fn
// stops the walk.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
