package tui

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/hay-kot/lightbox/internal/core/config"
	"github.com/hay-kot/lightbox/internal/core/page"
	"github.com/hay-kot/lightbox/internal/modal"
)

// Layout constants.
const (
	minWrapWidth  = 20 // narrowest markdown wrap width
	dialogMargin  = 8  // columns kept free around a dialog
	controlIndent = 2  // left indent of page controls
)

type mdKey struct {
	source string
	width  int
}

// renderer turns page content into styled strings. Markdown output is cached
// since dialogs are measured and drawn on every frame.
type renderer struct {
	cfg      *config.Config
	width    int
	glamours map[int]*glamour.TermRenderer
	rendered map[mdKey]string
	label    func(*page.Node) string
	log      zerolog.Logger
}

func newRenderer(cfg *config.Config, logger zerolog.Logger) *renderer {
	return &renderer{
		cfg:      cfg,
		width:    80,
		glamours: make(map[int]*glamour.TermRenderer),
		rendered: make(map[mdKey]string),
		label:    func(n *page.Node) string { return n.Label },
		log:      logger,
	}
}

// markdown renders source wrapped at width. Rendering failures fall back to
// the raw source.
func (r *renderer) markdown(source string, width int) string {
	width = max(width, minWrapWidth)
	k := mdKey{source: source, width: width}
	if out, ok := r.rendered[k]; ok {
		return out
	}

	out := source
	if tr, err := r.termRenderer(width); err == nil {
		if md, err := tr.Render(source); err == nil {
			out = md
		} else {
			r.log.Warn().Err(err).Msg("render markdown")
		}
	}

	out = strings.Trim(out, "\n")
	r.rendered[k] = out
	return out
}

func (r *renderer) termRenderer(width int) (*glamour.TermRenderer, error) {
	if tr, ok := r.glamours[width]; ok {
		return tr, nil
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.cfg.Theme.Markdown),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r.log.Warn().Err(err).Str("style", r.cfg.Theme.Markdown).Msg("create markdown renderer")
		return nil, err
	}
	r.glamours[width] = tr
	return tr, nil
}

// dialogWrap is the markdown wrap width inside a dialog.
func (r *renderer) dialogWrap() int {
	return min(r.cfg.Dialog.MaxWidth, r.width-dialogMargin)
}

// blocks accumulates rendered lines and the controls placed on them.
type blocks struct {
	lines    []string
	width    int
	controls []control
}

func (b *blocks) add(block string) {
	for _, line := range strings.Split(block, "\n") {
		b.lines = append(b.lines, line)
		b.width = max(b.width, lipgloss.Width(line))
	}
}

// walk renders n and its visible descendants into b. Labeled nodes and
// triggers become buttons; the control with index focus is highlighted.
// Overlay, dialog and close nodes are drawn elsewhere.
func (r *renderer) walk(b *blocks, n *page.Node, wrap, focus int) {
	if n.Hidden || n.HasClass(modal.OverlayClass) || n.HasClass(modal.DialogClass) || n.HasClass(modal.CloseClass) {
		return
	}

	switch {
	case n.Label != "" || isTrigger(n):
		style := buttonStyle
		if len(b.controls) == focus {
			style = buttonFocusedStyle
		}
		btn := style.Render(r.label(n))
		b.controls = append(b.controls, control{
			node: n,
			bounds: rect{
				x: controlIndent,
				y: len(b.lines),
				w: lipgloss.Width(btn),
				h: lipgloss.Height(btn),
			},
		})
		b.add(strings.Repeat(" ", controlIndent) + btn)
		b.add("")
	case n.Content != "":
		b.add(r.markdown(n.Content, wrap))
	}

	for _, child := range n.Children() {
		r.walk(b, child, wrap, focus)
	}
}

// dialogView is a dialog's body without the border. The close and control
// bounds are relative to the top-left cell of the bordered box.
type dialogView struct {
	body     string
	close    rect
	controls []control
}

// dialogView lays out a dialog node: a right-aligned close row over the
// markdown content and the dialog's child elements.
func (r *renderer) dialogView(n *page.Node, focus int) dialogView {
	wrap := r.dialogWrap()

	var b blocks
	if n.Content != "" {
		b.add(r.markdown(n.Content, wrap))
	}
	label := ""
	for _, child := range n.Children() {
		if child.HasClass(modal.CloseClass) {
			if child.Visible() {
				label = child.Label
			}
			continue
		}
		r.walk(&b, child, wrap, focus)
	}
	for len(b.lines) > 0 && b.lines[len(b.lines)-1] == "" {
		b.lines = b.lines[:len(b.lines)-1]
	}

	closeWidth := lipgloss.Width(label)
	inner := max(b.width, closeWidth)
	closeRow := strings.Repeat(" ", inner-closeWidth) + closeStyle.Render(label)

	left := dialogBorder + dialogPadding
	controls := make([]control, len(b.controls))
	for i, ctl := range b.controls {
		// One row down for the close row.
		controls[i] = control{node: ctl.node, bounds: ctl.bounds.offset(left, dialogBorder+1)}
	}

	return dialogView{
		body:     strings.Join(append([]string{closeRow}, b.lines...), "\n"),
		close:    rect{x: left + inner - closeWidth, y: dialogBorder, w: closeWidth, h: 1},
		controls: controls,
	}
}

// dialog renders a dialog node at the given opacity with the control at
// index focus highlighted. Below full opacity the colors are dropped and the
// text is blended into the backdrop.
func (r *renderer) dialog(n *page.Node, opacity float64, focus int) string {
	body := r.dialogView(n, focus).body
	if opacity >= 1 {
		return dialogStyle.Render(body)
	}

	text := lipgloss.Color(blend(hexBackdrop, hexWhite, opacity))
	border := lipgloss.Color(blend(hexBackdrop, hexBlue, opacity))
	faded := lipgloss.NewStyle().Foreground(text).Render(ansi.Strip(body))
	return dialogStyle.BorderForeground(border).Render(faded)
}

// measure implements page.Measurer. Dialogs are sized as drawn; everything
// else falls back to its raw content.
func (r *renderer) measure(n *page.Node) (int, int) {
	if n.HasClass(modal.DialogClass) {
		box := r.dialog(n, 1, -1)
		return lipgloss.Width(box), lipgloss.Height(box)
	}
	return page.MeasureContent(n)
}

// closeBounds returns the close control's rectangle relative to the dialog's
// top-left corner.
func (r *renderer) closeBounds(n *page.Node) rect {
	return r.dialogView(n, -1).close
}

// dim fades every line of s toward the backdrop by amount and drops its
// styling.
func dim(s string, amount float64) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(blend(hexWhite, hexBackdrop, amount)))
	lines := strings.Split(ansi.Strip(s), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

func (r rect) offset(dx, dy int) rect {
	return rect{x: r.x + dx, y: r.y + dy, w: r.w, h: r.h}
}
