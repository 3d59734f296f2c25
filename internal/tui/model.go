package tui

import (
	"fmt"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/hay-kot/lightbox/internal/core/config"
	"github.com/hay-kot/lightbox/internal/core/events"
	"github.com/hay-kot/lightbox/internal/core/fx"
	"github.com/hay-kot/lightbox/internal/core/page"
	"github.com/hay-kot/lightbox/internal/modal"
)

// Options configures the TUI behavior.
type Options struct {
	Logger zerolog.Logger
	Clock  func() time.Time // effect clock, defaults to time.Now
}

// frameMsg advances running effects.
type frameMsg time.Time

// Model is the main Bubble Tea model: one page with its modals.
type Model struct {
	cfg    *config.Config
	doc    *page.Document
	bus    *events.Bus
	fx     *fx.Engine
	modals *modal.Set
	render *renderer
	keys   keyMap
	help   help.Model

	width       int
	height      int
	focus       int
	dialogFocus int
	ticking     bool
	status      string
	quitting    bool

	clock func() time.Time
	log   zerolog.Logger
}

// New attaches modals to doc and returns a model that hosts it.
func New(cfg *config.Config, doc *page.Document, opts Options) (Model, error) {
	logger := opts.Logger.With().Str("component", "tui").Logger()

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	fxOpts := []fx.Option{fx.WithEasing(cfg.Easing()), fx.WithClock(clock)}

	var (
		bus    = events.New(opts.Logger.With().Str("component", "events").Logger())
		engine = fx.New(fxOpts...)
		r      = newRenderer(cfg, logger)
	)
	doc.SetMeasurer(r.measure)

	modals, err := modal.Attach(doc, bus, engine, modal.Options{
		FadeDuration:       cfg.Effects.Fade,
		RepositionDuration: cfg.Effects.Reposition,
		OverlayOpacity:     cfg.Overlay.Opacity,
		CloseLabel:         cfg.Dialog.CloseLabel,
		Logger:             opts.Logger.With().Str("component", "modal").Logger(),
	})
	if err != nil {
		return Model{}, fmt.Errorf("attach modals: %w", err)
	}
	r.label = func(n *page.Node) string { return controlLabel(modals, n) }

	return Model{
		cfg:    cfg,
		doc:    doc,
		bus:    bus,
		fx:     engine,
		modals: modals,
		render: r,
		keys:   defaultKeyMap(),
		help:   help.New(),
		clock:  clock,
		log:    logger,
	}, nil
}

// Modals returns the page's modals.
func (m Model) Modals() *modal.Set {
	return m.modals
}

// Settle runs every pending effect to completion.
func (m Model) Settle() {
	now := m.clock()
	for i := 1; m.fx.Busy() && i <= 64; i++ {
		m.fx.Step(now.Add(time.Duration(i) * time.Hour))
	}
}

// Init starts the model. Layout waits for the first WindowSizeMsg.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.bus.PublishResize()
		return m.animate()

	case frameMsg:
		m.fx.Step(time.Time(msg))
		if m.fx.Busy() {
			return m, m.tick()
		}
		m.ticking = false
		return m, nil

	case tea.MouseClickMsg:
		mouse := msg.Mouse()
		if mouse.Button != tea.MouseLeft {
			return m, nil
		}
		if target := m.hitTest(mouse.X, mouse.Y); target != nil {
			m.activate(target)
		}
		return m.animate()

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes key presses. Every key reaches the page as a key-up
// signal. While a modal is shown, navigation moves through the controls of
// the top dialog instead of the page.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	m.status = ""
	m.bus.PublishKeyUp(msg.String())

	if m.modalShown() {
		if top := m.topDialog(); top != nil {
			switch {
			case key.Matches(msg, m.keys.Next):
				m.moveDialogFocus(top, 1)
			case key.Matches(msg, m.keys.Prev):
				m.moveDialogFocus(top, -1)
			case key.Matches(msg, m.keys.Activate):
				if n := m.dialogFocused(top); n != nil {
					m.activate(n)
				}
			}
		}
		return m.animate()
	}

	_, pageHeight := m.pageSize()
	switch {
	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Activate):
		if n := m.focused(); n != nil {
			m.activate(n)
		}
	case key.Matches(msg, m.keys.Up):
		m.scrollBy(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.scrollBy(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.scrollBy(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.scrollBy(1, 0)
	case key.Matches(msg, m.keys.PageUp):
		m.scrollBy(0, -pageHeight)
	case key.Matches(msg, m.keys.PageDown):
		m.scrollBy(0, pageHeight)
	}

	return m.animate()
}

// activate clicks n. When no handler prevents it, a control's href is shown
// in the status line.
func (m *Model) activate(n *page.Node) {
	shown := m.modalShown()
	ev := m.bus.PublishClick(n)
	if !shown && m.modalShown() {
		m.dialogFocus = 0
	}
	if !ev.DefaultPrevented() && n.Href != "" {
		m.status = "→ " + n.Href
		m.log.Info().Str("href", n.Href).Msg("link activated")
	}
}

// animate starts the frame ticker if effects are running and it is not
// already going.
func (m Model) animate() (tea.Model, tea.Cmd) {
	if m.fx.Busy() && !m.ticking {
		m.ticking = true
		return m, m.tick()
	}
	return m, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.Effects.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// resize applies new terminal dimensions to the document viewport. The last
// row is reserved for the help line.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.render.width = width

	w, h := m.pageSize()
	vp := m.doc.Viewport()
	vp.Width, vp.Height = w, h
	m.doc.SetViewport(vp)
	m.clampScroll()
}

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}
	return w, h
}

// pageSize is the area available to the page, excluding the footer.
func (m Model) pageSize() (int, int) {
	w, h := m.size()
	return w, max(h-1, 1)
}

func (m Model) modalShown() bool {
	return len(m.modals.Visible()) > 0
}

func (m *Model) moveFocus(delta int) {
	controls := m.layout().controls
	if len(controls) == 0 {
		return
	}
	m.focus = (m.focus + delta + len(controls)) % len(controls)
	m.scrollIntoView(controls[m.focus].bounds)
}

func (m Model) focused() *page.Node {
	controls := m.layout().controls
	if len(controls) == 0 {
		return nil
	}
	return controls[min(m.focus, len(controls)-1)].node
}

func (m *Model) moveDialogFocus(c *modal.Controller, delta int) {
	controls := m.render.dialogView(c.Dialog(), -1).controls
	if len(controls) == 0 {
		return
	}
	m.dialogFocus = (m.dialogFocus + delta + len(controls)) % len(controls)
}

func (m Model) dialogFocused(c *modal.Controller) *page.Node {
	controls := m.render.dialogView(c.Dialog(), -1).controls
	if len(controls) == 0 {
		return nil
	}
	return controls[min(m.dialogFocus, len(controls)-1)].node
}

func (m *Model) scrollBy(dx, dy int) {
	vp := m.doc.Viewport()
	m.doc.ScrollTo(vp.ScrollX+dx, vp.ScrollY+dy)
	m.clampScroll()
}

func (m *Model) scrollIntoView(r rect) {
	vp := m.doc.Viewport()
	y := vp.ScrollY
	if r.y < y {
		y = r.y
	} else if r.y+r.h > y+vp.Height {
		y = r.y + r.h - vp.Height
	}
	m.doc.ScrollTo(vp.ScrollX, y)
	m.clampScroll()
}

// clampScroll keeps the viewport within the page content.
func (m *Model) clampScroll() {
	lay := m.layout()
	vp := m.doc.Viewport()
	maxY := max(len(lay.lines)-vp.Height, 0)
	maxX := max(lay.width-vp.Width, 0)
	m.doc.ScrollTo(min(vp.ScrollX, maxX), min(vp.ScrollY, maxY))
}

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	v := tea.NewView(m.Frame())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}
