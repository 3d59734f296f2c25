package page

import (
	lipgloss "charm.land/lipgloss/v2"
)

// Viewport describes the visible window onto the document. ScrollX and
// ScrollY are the document coordinates of the viewport's top-left cell.
type Viewport struct {
	Width   int
	Height  int
	ScrollX int
	ScrollY int
}

// Measurer returns the outer size of a node as it would be rendered.
type Measurer func(n *Node) (width, height int)

// Document is a page: a title, a markdown body and a tree of element nodes
// rooted at Body.
type Document struct {
	Title   string
	Content string
	Body    *Node

	viewport Viewport
	measure  Measurer
}

// NewDocument returns an empty document with an 80x24 viewport.
func NewDocument(title string) *Document {
	return &Document{
		Title:    title,
		Body:     NewNode("", "body"),
		viewport: Viewport{Width: 80, Height: 24},
		measure:  MeasureContent,
	}
}

// Append adds n as the last child of the body and returns it.
func (d *Document) Append(n *Node) *Node {
	return d.Body.AppendChild(n)
}

// ByID returns the first node in document order whose ID matches exactly.
func (d *Document) ByID(id string) *Node {
	if id == "" {
		return nil
	}

	var found *Node
	d.Body.walk(func(n *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// ByClass returns every node carrying class, in document order.
func (d *Document) ByClass(class string) []*Node {
	var nodes []*Node
	d.Walk(func(n *Node) bool {
		if n.HasClass(class) {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

// Walk visits every node below the body depth first.
func (d *Document) Walk(fn func(*Node) bool) {
	for _, c := range d.Body.children {
		if !c.walk(fn) {
			return
		}
	}
}

// Viewport returns the current viewport.
func (d *Document) Viewport() Viewport {
	return d.viewport
}

// SetViewport replaces the viewport. Negative values are clamped to zero.
func (d *Document) SetViewport(v Viewport) {
	d.viewport = Viewport{
		Width:   max(v.Width, 0),
		Height:  max(v.Height, 0),
		ScrollX: max(v.ScrollX, 0),
		ScrollY: max(v.ScrollY, 0),
	}
}

// ScrollTo moves the viewport origin.
func (d *Document) ScrollTo(x, y int) {
	v := d.viewport
	v.ScrollX, v.ScrollY = x, y
	d.SetViewport(v)
}

// SetMeasurer installs the function used to size nodes. A nil measurer
// restores MeasureContent.
func (d *Document) SetMeasurer(m Measurer) {
	if m == nil {
		m = MeasureContent
	}
	d.measure = m
}

// Measure returns the outer size of n using the installed measurer.
func (d *Document) Measure(n *Node) (width, height int) {
	return d.measure(n)
}

// MeasureContent sizes a node by its raw content, or its label for controls.
func MeasureContent(n *Node) (int, int) {
	text := n.Content
	if text == "" {
		text = n.Label
	}
	if text == "" {
		return 0, 0
	}
	return lipgloss.Width(text), lipgloss.Height(text)
}
