// Package modal turns page elements into modal dialogs. Each Controller owns
// one overlay and dialog pair, opens and closes it in response to signals
// from the shared events bus, and keeps the dialog centered in the viewport.
package modal

import (
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lightbox/internal/core/events"
	"github.com/hay-kot/lightbox/internal/core/fx"
	"github.com/hay-kot/lightbox/internal/core/page"
)

// Class markers used on source elements and produced nodes.
const (
	SourceClass  = "modal"
	OverlayClass = "overlay"
	DialogClass  = "modal-dialog"
	CloseClass   = "close-button"
)

// TriggerPrefix is prepended to a modal's identifier to form the id of the
// control that opens it.
const TriggerPrefix = "modal-open-"

// KeyEscape is the key-up name that closes open modals.
const KeyEscape = "esc"

// TriggerID returns the trigger control id for the modal identifier id.
func TriggerID(id string) string {
	return TriggerPrefix + id
}

// State is the lifecycle state of a modal.
type State int

const (
	Closed State = iota
	Opening
	Open
	Closing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Options tunes effect timing and presentation.
type Options struct {
	FadeDuration       time.Duration
	RepositionDuration time.Duration
	OverlayOpacity     float64
	CloseLabel         string
	Logger             zerolog.Logger
}

// DefaultOptions returns the stock timings: 400ms fades, a 1.2s glide on
// resize and an overlay faded to 0.8.
func DefaultOptions() Options {
	return Options{
		FadeDuration:       400 * time.Millisecond,
		RepositionDuration: 1200 * time.Millisecond,
		OverlayOpacity:     0.8,
		CloseLabel:         "✕",
		Logger:             zerolog.Nop(),
	}
}

// Controller is a single modal instance.
type Controller struct {
	id      string
	content string
	state   State

	doc     *page.Document
	fx      *fx.Engine
	overlay *page.Node
	dialog  *page.Node
	closer  *page.Node
	trigger *page.Node

	subs []events.Subscription
	opts Options
	log  zerolog.Logger
}

// New binds source into a modal. The source is hidden for good; its content
// is copied and its children moved into a new dialog node. Overlay and
// dialog are appended to the document body, hidden. A missing trigger control is not an error: the
// modal can still be opened programmatically.
func New(doc *page.Document, source *page.Node, bus *events.Bus, engine *fx.Engine, opts Options) *Controller {
	source.Hide()

	c := &Controller{
		id:      source.ID,
		content: source.Content,
		state:   Closed,
		doc:     doc,
		fx:      engine,
		opts:    opts,
		log:     opts.Logger.With().Str("modal", source.ID).Logger(),
	}

	c.overlay = page.NewNode("", OverlayClass)
	c.overlay.Hide()

	c.dialog = page.NewNode("", DialogClass)
	c.dialog.Content = c.content
	c.dialog.Hide()

	// The source never shows again, so its child elements move into the
	// dialog ahead of the close button.
	for _, child := range slices.Clone(source.Children()) {
		c.dialog.AppendChild(child)
	}

	c.closer = page.NewNode("", CloseClass)
	c.closer.Label = opts.CloseLabel
	c.dialog.AppendChild(c.closer)

	doc.Append(c.overlay)
	doc.Append(c.dialog)

	c.subs = append(c.subs,
		bus.OnClick(c.overlay, func(*events.Event) { c.Close() }),
		bus.OnClick(c.closer, func(*events.Event) { c.Close() }),
		bus.Subscribe(events.KeyUp, func(ev *events.Event) {
			if ev.Key == KeyEscape {
				c.Close()
			}
		}),
		bus.Subscribe(events.Resize, func(*events.Event) { c.Reposition() }),
	)

	if trigger := doc.ByID(TriggerID(c.id)); trigger != nil {
		trigger.Show()
		c.trigger = trigger
		c.subs = append(c.subs, bus.OnClick(trigger, func(ev *events.Event) {
			c.Open()
			ev.PreventDefault()
		}))
	} else {
		c.log.Debug().Str("trigger", TriggerID(c.id)).Msg("no trigger control, modal is unreachable from the page")
	}

	return c
}

// ID returns the modal identifier.
func (c *Controller) ID() string { return c.id }

// Content returns the markdown captured from the source element.
func (c *Controller) Content() string { return c.content }

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Overlay returns the backdrop node.
func (c *Controller) Overlay() *page.Node { return c.overlay }

// Dialog returns the content panel node.
func (c *Controller) Dialog() *page.Node { return c.dialog }

// CloseButton returns the close control inside the dialog.
func (c *Controller) CloseButton() *page.Node { return c.closer }

// Trigger returns the control that opens the modal, or nil.
func (c *Controller) Trigger() *page.Node { return c.trigger }

// Open shows the overlay and dialog and fades them in. It does nothing
// unless the modal is closed.
func (c *Controller) Open() {
	if c.state != Closed {
		return
	}
	c.setState(Opening)

	for _, n := range []*page.Node{c.overlay, c.dialog} {
		n.Show()
		n.Style.Opacity = 0
	}

	c.fx.Animate(c.overlay, fx.QueueFade, fx.To().Opacity(c.opts.OverlayOpacity), c.opts.FadeDuration, nil)

	top, left := c.center()
	c.fx.Stop(c.dialog, fx.QueuePosition)
	c.fx.Stop(c.dialog, fx.QueueFade)
	c.dialog.Style.Top, c.dialog.Style.Left = top, left
	c.fx.Animate(c.dialog, fx.QueueFade, fx.To().Opacity(1), c.opts.FadeDuration, func() {
		if c.state == Opening {
			c.setState(Open)
		}
	})
}

// Close fades the overlay and dialog out together and hides them. It does
// nothing unless the modal is open or opening; an in-flight fade-in is
// interrupted.
func (c *Controller) Close() {
	if c.state != Open && c.state != Opening {
		return
	}
	c.setState(Closing)

	pair := []*page.Node{c.overlay, c.dialog}
	for _, n := range pair {
		c.fx.Stop(n, fx.QueueFade)
	}

	c.fx.AnimateAll(pair, fx.QueueFade, fx.To().Opacity(0), c.opts.FadeDuration, func() {
		if c.state != Closing {
			return
		}
		c.overlay.Hide()
		c.dialog.Hide()
		c.setState(Closed)
	})
}

// Reposition glides the dialog to the center of the current viewport. It is
// safe in every state; a hidden dialog simply moves unseen.
func (c *Controller) Reposition() {
	top, left := c.center()
	c.fx.Stop(c.dialog, fx.QueuePosition)
	c.fx.Animate(c.dialog, fx.QueuePosition, fx.To().Position(top, left), c.opts.RepositionDuration, nil)
}

// Detach removes the modal's bus subscriptions. Its nodes stay in the
// document.
func (c *Controller) Detach() {
	for _, s := range c.subs {
		s.Unsubscribe()
	}
	c.subs = nil
}

func (c *Controller) center() (top, left float64) {
	w, h := c.doc.Measure(c.dialog)
	return Center(c.doc.Viewport(), float64(w), float64(h))
}

func (c *Controller) setState(s State) {
	c.log.Debug().Stringer("from", c.state).Stringer("to", s).Msg("state change")
	c.state = s
}
