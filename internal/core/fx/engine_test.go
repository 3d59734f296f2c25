package fx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/lightbox/internal/core/page"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newEngine(now *time.Time) *Engine {
	return New(WithClock(func() time.Time { return *now }), WithEasing(Linear))
}

func TestEngine_InterpolatesAndCompletes(t *testing.T) {
	now := t0
	e := newEngine(&now)
	n := page.NewNode("n")
	n.Style = page.Style{Opacity: 0, Top: 10, Left: 20}

	done := 0
	e.Animate(n, QueueFade, To().Opacity(0.8).Position(30, 40), 400*time.Millisecond, func() { done++ })
	require.True(t, e.Busy())

	e.Step(t0.Add(100 * time.Millisecond))
	assert.InDelta(t, 0.2, n.Style.Opacity, 1e-9)
	assert.InDelta(t, 15.0, n.Style.Top, 1e-9)
	assert.InDelta(t, 25.0, n.Style.Left, 1e-9)
	assert.Equal(t, 0, done)

	e.Step(t0.Add(time.Second))
	assert.Equal(t, page.Style{Opacity: 0.8, Top: 30, Left: 40}, n.Style)
	assert.Equal(t, 1, done)
	assert.False(t, e.Busy())

	e.Step(t0.Add(2 * time.Second))
	assert.Equal(t, 1, done, "completion fires once")
}

func TestEngine_OnlyTouchesRequestedProps(t *testing.T) {
	now := t0
	e := newEngine(&now)
	n := page.NewNode("n")
	n.Style = page.Style{Opacity: 1, Top: 3, Left: 4}

	e.Animate(n, QueueFade, To().Opacity(0), time.Second, nil)
	e.Step(t0.Add(time.Second))

	assert.Equal(t, page.Style{Opacity: 0, Top: 3, Left: 4}, n.Style)
}

func TestEngine_QueueRunsInIssueOrder(t *testing.T) {
	now := t0
	e := newEngine(&now)
	n := page.NewNode("n")
	n.Style.Opacity = 0

	var order []string
	e.Animate(n, QueueFade, To().Opacity(1), 100*time.Millisecond, func() { order = append(order, "in") })
	e.Animate(n, QueueFade, To().Opacity(0), 100*time.Millisecond, func() { order = append(order, "out") })

	e.Step(t0.Add(150 * time.Millisecond))
	assert.Equal(t, []string{"in"}, order)
	assert.InDelta(t, 0.5, n.Style.Opacity, 1e-9, "second effect starts where the first ended")

	e.Step(t0.Add(200 * time.Millisecond))
	assert.Equal(t, []string{"in", "out"}, order)
	assert.Equal(t, 0.0, n.Style.Opacity)
}

func TestEngine_CatchUpCompletesChains(t *testing.T) {
	now := t0
	e := newEngine(&now)
	n := page.NewNode("n")

	var order []int
	for i := range 3 {
		e.Animate(n, QueueFade, To().Opacity(float64(i)), 10*time.Millisecond, func() { order = append(order, i) })
	}

	e.Step(t0.Add(time.Hour))
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.False(t, e.Busy())
}

func TestEngine_StopDropsWithoutCallbacks(t *testing.T) {
	now := t0
	e := newEngine(&now)
	n := page.NewNode("n")
	n.Style.Opacity = 0

	called := false
	e.Animate(n, QueueFade, To().Opacity(1), time.Second, func() { called = true })
	e.Step(t0.Add(500 * time.Millisecond))

	e.Stop(n, QueueFade)
	e.Stop(n, QueueFade)
	e.Step(t0.Add(time.Hour))

	assert.False(t, called)
	assert.InDelta(t, 0.5, n.Style.Opacity, 1e-9, "stop keeps the values applied so far")
	assert.False(t, e.Busy())
}

func TestEngine_QueuesAreIndependent(t *testing.T) {
	now := t0
	e := newEngine(&now)
	n := page.NewNode("n")
	n.Style = page.Style{Opacity: 0}

	e.Animate(n, QueueFade, To().Opacity(1), time.Second, nil)
	e.Animate(n, QueuePosition, To().Position(10, 10), time.Second, nil)
	e.Stop(n, QueuePosition)

	assert.True(t, e.Running(n, QueueFade))
	assert.False(t, e.Running(n, QueuePosition))

	e.Step(t0.Add(time.Second))
	assert.Equal(t, page.Style{Opacity: 1}, n.Style)
}

func TestEngine_CallbackMayQueueMore(t *testing.T) {
	now := t0
	e := newEngine(&now)
	n := page.NewNode("n")
	n.Style.Opacity = 0

	finished := false
	e.Animate(n, QueueFade, To().Opacity(1), 100*time.Millisecond, func() {
		now = t0.Add(100 * time.Millisecond)
		e.Animate(n, QueueFade, To().Opacity(0), 100*time.Millisecond, func() { finished = true })
	})

	e.Step(t0.Add(100 * time.Millisecond))
	assert.True(t, e.Busy())
	assert.False(t, finished)

	e.Step(t0.Add(200 * time.Millisecond))
	assert.True(t, finished)
	assert.False(t, e.Busy())
}

func TestEngine_AnimateAll(t *testing.T) {
	now := t0
	e := newEngine(&now)
	a := page.NewNode("a")
	b := page.NewNode("b")

	// b is busy with a longer effect first, so it finishes later.
	e.Animate(b, QueueFade, To().Opacity(0.5), 200*time.Millisecond, nil)

	calls := 0
	e.AnimateAll([]*page.Node{a, b}, QueueFade, To().Opacity(0), 100*time.Millisecond, func() { calls++ })

	e.Step(t0.Add(150 * time.Millisecond))
	assert.Equal(t, 0, calls)

	e.Step(t0.Add(300 * time.Millisecond))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0.0, a.Style.Opacity)
	assert.Equal(t, 0.0, b.Style.Opacity)
}

func TestEasing(t *testing.T) {
	assert.InDelta(t, 0.0, Swing(0), 1e-9)
	assert.InDelta(t, 0.5, Swing(0.5), 1e-9)
	assert.InDelta(t, 1.0, Swing(1), 1e-9)
	assert.InDelta(t, 0.25, Linear(0.25), 1e-9)

	for _, name := range []string{"", "swing", "linear"} {
		_, ok := EasingByName(name)
		assert.True(t, ok, name)
	}
	_, ok := EasingByName("bounce")
	assert.False(t, ok)
}
