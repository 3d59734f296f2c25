// Package fx animates node styles over time. Effects are queued per node and
// per named queue; each queue runs its effects one after another and fires
// their completion callbacks in the order the effects were issued.
//
// The engine does no scheduling of its own. The UI loop calls Step with the
// current frame time, which applies interpolated values and completes
// finished effects.
package fx

import (
	"math"
	"slices"
	"time"

	"github.com/hay-kot/lightbox/internal/core/page"
)

// Queue names an effect queue. Effects in different queues on the same node
// run concurrently.
type Queue string

const (
	QueueFade     Queue = "fade"
	QueuePosition Queue = "position"
)

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(p float64) float64

// Linear progresses at a constant rate.
func Linear(p float64) float64 { return p }

// Swing starts and ends slowly.
func Swing(p float64) float64 { return 0.5 - math.Cos(p*math.Pi)/2 }

// EasingByName returns the easing for name and false when it is unknown.
func EasingByName(name string) (Easing, bool) {
	switch name {
	case "linear":
		return Linear, true
	case "swing", "":
		return Swing, true
	default:
		return nil, false
	}
}

// Props is a set of target style values.
type Props struct {
	opacity    float64
	top, left  float64
	hasOpacity bool
	hasPos     bool
}

// To starts an empty set of target values.
func To() Props { return Props{} }

// Opacity sets the target opacity.
func (p Props) Opacity(v float64) Props {
	p.opacity, p.hasOpacity = v, true
	return p
}

// Position sets the target top and left.
func (p Props) Position(top, left float64) Props {
	p.top, p.left, p.hasPos = top, left, true
	return p
}

type effect struct {
	to       Props
	from     page.Style
	duration time.Duration
	start    time.Time
	done     func()
}

type queueKey struct {
	node  *page.Node
	queue Queue
}

// Engine runs effects.
type Engine struct {
	clock  func() time.Time
	easing Easing
	queues map[queueKey][]*effect
	order  []queueKey
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the source of effect start times.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithEasing sets the easing used by every effect.
func WithEasing(easing Easing) Option {
	return func(e *Engine) { e.easing = easing }
}

// New creates an engine with swing easing.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:  time.Now,
		easing: Swing,
		queues: make(map[queueKey][]*effect),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Animate queues an effect that moves node's style to the target values
// over d. If the queue is idle the effect starts immediately. done, when not
// nil, runs from Step once the target values have been applied.
func (e *Engine) Animate(node *page.Node, q Queue, to Props, d time.Duration, done func()) {
	key := queueKey{node: node, queue: q}
	fx := &effect{to: to, duration: d, done: done}

	pending, ok := e.queues[key]
	if !ok {
		e.order = append(e.order, key)
	}
	if len(pending) == 0 {
		fx.start = e.clock()
		fx.from = node.Style
	}
	e.queues[key] = append(pending, fx)
}

// AnimateAll runs the same effect on every node and calls done once, after
// the last of them completes.
func (e *Engine) AnimateAll(nodes []*page.Node, q Queue, to Props, d time.Duration, done func()) {
	remaining := len(nodes)
	for _, n := range nodes {
		e.Animate(n, q, to, d, func() {
			remaining--
			if remaining == 0 && done != nil {
				done()
			}
		})
	}
}

// Stop drops the running and pending effects of node's queue. Values applied
// so far are kept and no completion callbacks run.
func (e *Engine) Stop(node *page.Node, q Queue) {
	key := queueKey{node: node, queue: q}
	if _, ok := e.queues[key]; !ok {
		return
	}
	delete(e.queues, key)
	e.order = slices.DeleteFunc(e.order, func(k queueKey) bool { return k == key })
}

// Busy reports whether any effect is running or pending.
func (e *Engine) Busy() bool {
	return len(e.order) > 0
}

// Running reports whether node has effects on q.
func (e *Engine) Running(node *page.Node, q Queue) bool {
	return len(e.queues[queueKey{node: node, queue: q}]) > 0
}

// Step advances every queue to now. Finished effects get their exact target
// values before their callbacks run; the next effect in the queue starts
// where the previous one ended.
func (e *Engine) Step(now time.Time) {
	for _, key := range slices.Clone(e.order) {
		e.stepQueue(key, now)
	}
}

func (e *Engine) stepQueue(key queueKey, now time.Time) {
	for {
		pending := e.queues[key]
		if len(pending) == 0 {
			e.Stop(key.node, key.queue)
			return
		}

		fx := pending[0]
		elapsed := now.Sub(fx.start)
		if elapsed < fx.duration {
			p := 0.0
			if elapsed > 0 {
				p = float64(elapsed) / float64(fx.duration)
			}
			e.apply(key.node, fx, e.easing(p))
			return
		}

		e.apply(key.node, fx, 1)
		e.queues[key] = pending[1:]
		if len(pending) > 1 {
			next := pending[1]
			next.start = fx.start.Add(fx.duration)
			next.from = key.node.Style
		}

		if fx.done != nil {
			fx.done()
		}

		// The callback may have stopped this queue.
		if _, ok := e.queues[key]; !ok {
			return
		}
	}
}

func (e *Engine) apply(node *page.Node, fx *effect, p float64) {
	if p >= 1 {
		if fx.to.hasOpacity {
			node.Style.Opacity = fx.to.opacity
		}
		if fx.to.hasPos {
			node.Style.Top = fx.to.top
			node.Style.Left = fx.to.left
		}
		return
	}

	if fx.to.hasOpacity {
		node.Style.Opacity = lerp(fx.from.Opacity, fx.to.opacity, p)
	}
	if fx.to.hasPos {
		node.Style.Top = lerp(fx.from.Top, fx.to.top, p)
		node.Style.Left = lerp(fx.from.Left, fx.to.left, p)
	}
}

func lerp(from, to, p float64) float64 {
	return from + (to-from)*p
}
