package tui

import (
	"math"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/hay-kot/lightbox/internal/core/page"
	"github.com/hay-kot/lightbox/internal/modal"
)

// minVisibleOpacity is the opacity below which a fading dialog is not drawn.
const minVisibleOpacity = 0.05

// control is a clickable element and its bounds in cells.
type control struct {
	node   *page.Node
	bounds rect
}

// layout renders the document body in document coordinates. Overlay and
// dialog nodes are skipped; they are drawn as layers on top.
func (m Model) layout() blocks {
	var lay blocks
	w, _ := m.pageSize()
	wrap := w - controlIndent

	if m.doc.Title != "" {
		lay.add(titleStyle.Render(m.doc.Title))
	}
	if m.doc.Content != "" {
		lay.add(m.render.markdown(m.doc.Content, wrap))
	}
	for _, n := range m.doc.Body.Children() {
		m.render.walk(&lay, n, wrap, m.focus)
	}

	return lay
}

func isTrigger(n *page.Node) bool {
	return strings.HasPrefix(n.ID, modal.TriggerPrefix)
}

// controlLabel is the button text for a control. Triggers without a label
// borrow the first heading of the modal they open.
func controlLabel(modals *modal.Set, n *page.Node) string {
	if n.Label != "" {
		return n.Label
	}

	id := strings.TrimPrefix(n.ID, modal.TriggerPrefix)
	if c, ok := modals.Get(id); ok {
		if title := page.Heading(c.Content()); title != "" {
			return "Open " + title
		}
	}
	return "Open " + id
}

// Frame renders the full screen: page, overlay dimming, dialogs and footer.
func (m Model) Frame() string {
	w, h := m.pageSize()
	vp := m.doc.Viewport()
	lay := m.layout()

	rows := make([]string, h)
	for i := range rows {
		if idx := vp.ScrollY + i; idx < len(lay.lines) {
			rows[i] = ansi.Cut(lay.lines[idx], vp.ScrollX, vp.ScrollX+w)
		}
	}
	background := strings.Join(rows, "\n")

	visible := m.modals.Visible()
	backdrop := 0.0
	for _, c := range visible {
		if c.Overlay().Visible() {
			backdrop = max(backdrop, c.Overlay().Style.Opacity)
		}
	}
	if backdrop > 0 {
		background = dim(background, backdrop)
	}

	top := m.topDialog()
	layers := []*lipgloss.Layer{lipgloss.NewLayer(background)}
	for i, c := range visible {
		opacity := c.Dialog().Style.Opacity
		if opacity < minVisibleOpacity {
			continue
		}
		focus := -1
		if c == top {
			focus = m.dialogFocus
		}
		x, y := m.dialogOrigin(c)
		box := m.render.dialog(c.Dialog(), opacity, focus)
		layers = append(layers, lipgloss.NewLayer(box).X(max(x, 0)).Y(max(y, 0)).Z(i+1))
	}

	screen := strings.Split(lipgloss.NewCompositor(layers...).Render(), "\n")
	if len(screen) > h {
		screen = screen[:h]
	}
	for i, line := range screen {
		screen[i] = ansi.Truncate(line, w, "")
	}
	for len(screen) < h {
		screen = append(screen, "")
	}

	return strings.Join(append(screen, ansi.Truncate(m.footer(), w, "")), "\n")
}

func (m Model) footer() string {
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	for _, c := range m.modals.Visible() {
		if title := page.Heading(c.Content()); title != "" && c.State() == modal.Open {
			return statusStyle.Render(title) + "  " + m.help.View(m.keys)
		}
	}
	return m.help.View(m.keys)
}

// topDialog returns the most recently attached modal that is opening or
// open, or nil. Keyboard navigation inside dialogs goes to it.
func (m Model) topDialog() *modal.Controller {
	visible := m.modals.Visible()
	for i := len(visible) - 1; i >= 0; i-- {
		if s := visible[i].State(); s == modal.Open || s == modal.Opening {
			return visible[i]
		}
	}
	return nil
}

// dialogOrigin converts the dialog's document position to screen cells.
func (m Model) dialogOrigin(c *modal.Controller) (int, int) {
	vp := m.doc.Viewport()
	style := c.Dialog().Style
	return int(math.Round(style.Left)) - vp.ScrollX, int(math.Round(style.Top)) - vp.ScrollY
}

// hitTest maps a screen cell to the node a click there lands on. Dialogs
// are tested top-most first; an open overlay swallows clicks outside its
// dialog.
func (m Model) hitTest(x, y int) *page.Node {
	_, h := m.pageSize()
	if y < 0 || y >= h {
		return nil
	}

	visible := m.modals.Visible()
	for i := len(visible) - 1; i >= 0; i-- {
		c := visible[i]
		ox, oy := m.dialogOrigin(c)
		dw, dh := m.doc.Measure(c.Dialog())
		box := rect{x: max(ox, 0), y: max(oy, 0), w: dw, h: dh}

		if box.contains(x, y) {
			view := m.render.dialogView(c.Dialog(), -1)
			if view.close.offset(box.x, box.y).contains(x, y) {
				return c.CloseButton()
			}
			for _, ctl := range view.controls {
				if ctl.bounds.offset(box.x, box.y).contains(x, y) {
					return ctl.node
				}
			}
			return c.Dialog()
		}
		if c.Overlay().Visible() {
			return c.Overlay()
		}
	}

	vp := m.doc.Viewport()
	for _, ctl := range m.layout().controls {
		if ctl.bounds.contains(x+vp.ScrollX, y+vp.ScrollY) {
			return ctl.node
		}
	}
	return nil
}
