// Package events provides the signal bus shared by every modal on a page.
// Resize, key-up and click signals are fanned out to subscribers, each of
// which registers and unregisters on its own.
//
// A Bus is not safe for concurrent use; it is driven from the UI loop.
package events

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lightbox/internal/core/page"
)

// Kind identifies a signal source.
type Kind int

const (
	Resize Kind = iota + 1
	KeyUp
	Click
)

func (k Kind) String() string {
	switch k {
	case Resize:
		return "resize"
	case KeyUp:
		return "keyup"
	case Click:
		return "click"
	default:
		return "unknown"
	}
}

// Event is a single signal occurrence.
type Event struct {
	Kind   Kind
	Key    string     // KeyUp only
	Target *page.Node // Click only

	prevented bool
}

// PreventDefault suppresses the target's default action.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether a handler called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.prevented }

// Handler receives events.
type Handler func(ev *Event)

type subscriber struct {
	id      uint64
	kind    Kind
	handler Handler
}

// Bus dispatches events synchronously, in subscription order.
type Bus struct {
	subs   []subscriber
	nextID uint64
	log    zerolog.Logger
}

// New creates an empty bus.
func New(logger zerolog.Logger) *Bus {
	return &Bus{log: logger}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus *Bus
	id  uint64
}

// Unsubscribe removes the handler. It is safe to call more than once and
// from inside a handler.
func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	s.bus.subs = slices.DeleteFunc(s.bus.subs, func(sub subscriber) bool {
		return sub.id == s.id
	})
}

// Subscribe registers h for every event of the given kind.
func (b *Bus) Subscribe(kind Kind, h Handler) Subscription {
	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, kind: kind, handler: h})
	return Subscription{bus: b, id: b.nextID}
}

// OnClick registers h for clicks whose target is exactly node.
func (b *Bus) OnClick(node *page.Node, h Handler) Subscription {
	return b.Subscribe(Click, func(ev *Event) {
		if ev.Target == node {
			h(ev)
		}
	})
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	return len(b.subs)
}

// Publish delivers ev to every subscriber of its kind that was registered
// when Publish was called and is still registered when its turn comes.
func (b *Bus) Publish(ev *Event) *Event {
	snapshot := slices.Clone(b.subs)
	delivered := 0
	for _, sub := range snapshot {
		if sub.kind != ev.Kind || !b.live(sub.id) {
			continue
		}
		sub.handler(ev)
		delivered++
	}

	b.log.Trace().
		Stringer("kind", ev.Kind).
		Str("key", ev.Key).
		Int("delivered", delivered).
		Msg("event published")

	return ev
}

func (b *Bus) live(id uint64) bool {
	return slices.ContainsFunc(b.subs, func(sub subscriber) bool { return sub.id == id })
}

// PublishResize signals a viewport resize.
func (b *Bus) PublishResize() *Event {
	return b.Publish(&Event{Kind: Resize})
}

// PublishKeyUp signals a released key, using the key names of the UI layer
// (for example "esc").
func (b *Bus) PublishKeyUp(key string) *Event {
	return b.Publish(&Event{Kind: KeyUp, Key: key})
}

// PublishClick signals a pointer click on target.
func (b *Bus) PublishClick(target *page.Node) *Event {
	return b.Publish(&Event{Kind: Click, Target: target})
}
