package modal

import (
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/lightbox/internal/core/events"
	"github.com/hay-kot/lightbox/internal/core/fx"
	"github.com/hay-kot/lightbox/internal/core/page"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	doc    *page.Document
	bus    *events.Bus
	engine *fx.Engine
	now    time.Time
	opts   Options
}

func newHarness(t *testing.T, ids ...string) *harness {
	t.Helper()

	h := &harness{
		doc:  page.NewDocument("test"),
		bus:  events.New(zerolog.Nop()),
		now:  t0,
		opts: DefaultOptions(),
	}
	h.engine = fx.New(fx.WithClock(func() time.Time { return h.now }), fx.WithEasing(fx.Linear))
	h.doc.SetViewport(page.Viewport{Width: 100, Height: 40})
	h.doc.SetMeasurer(func(n *page.Node) (int, int) {
		if n.HasClass(DialogClass) {
			return 30, 10
		}
		return page.MeasureContent(n)
	})

	for _, id := range ids {
		src := page.NewNode(id, SourceClass)
		src.Content = "## " + id
		h.doc.Append(src)

		trigger := page.NewNode(TriggerID(id), "modal-open")
		trigger.Label = "open " + id
		trigger.Hide()
		h.doc.Append(trigger)
	}
	return h
}

func (h *harness) attach(t *testing.T) *Set {
	t.Helper()
	set, err := Attach(h.doc, h.bus, h.engine, h.opts)
	require.NoError(t, err)
	return set
}

// advance moves the clock forward and steps the engine.
func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
	h.engine.Step(h.now)
}

// settle runs every pending effect to completion.
func (h *harness) settle() {
	for h.engine.Busy() {
		h.advance(h.opts.RepositionDuration)
	}
}

func get(t *testing.T, set *Set, id string) *Controller {
	t.Helper()
	c, ok := set.Get(id)
	require.True(t, ok, "modal %q", id)
	return c
}

func TestNew_BuildsNodes(t *testing.T) {
	h := newHarness(t, "about")
	set := h.attach(t)
	c := get(t, set, "about")

	src := h.doc.ByID("about")
	assert.True(t, src.Hidden, "source is hidden for good")
	assert.Equal(t, "## about", c.Content())

	assert.True(t, c.Overlay().HasClass(OverlayClass))
	assert.True(t, c.Overlay().Hidden)
	assert.True(t, c.Dialog().HasClass(DialogClass))
	assert.True(t, c.Dialog().Hidden)
	assert.Equal(t, "## about", c.Dialog().Content)
	assert.Same(t, h.doc.Body, c.Overlay().Parent())
	assert.Same(t, h.doc.Body, c.Dialog().Parent())

	require.Len(t, c.Dialog().Children(), 1)
	assert.Same(t, c.CloseButton(), c.Dialog().Children()[0])
	assert.Equal(t, "✕", c.CloseButton().Label)

	require.NotNil(t, c.Trigger())
	assert.False(t, c.Trigger().Hidden, "trigger is revealed")
	assert.Equal(t, Closed, c.State())
}

func TestNew_ContentCapturedOnce(t *testing.T) {
	h := newHarness(t, "about")
	set := h.attach(t)
	c := get(t, set, "about")

	h.doc.ByID("about").Content = "changed later"
	c.Open()
	h.settle()

	assert.Equal(t, "## about", c.Dialog().Content)
}

func TestOpen_Idempotent(t *testing.T) {
	h := newHarness(t, "a")
	set := h.attach(t)
	c := get(t, set, "a")

	c.Open()
	assert.Equal(t, Opening, c.State())
	c.Open()
	assert.Equal(t, Opening, c.State())

	h.advance(h.opts.FadeDuration / 2)
	assert.InDelta(t, 0.5, c.Dialog().Style.Opacity, 1e-9)
	assert.InDelta(t, 0.4, c.Overlay().Style.Opacity, 1e-9)

	h.advance(h.opts.FadeDuration / 2)
	assert.Equal(t, Open, c.State())
	assert.Equal(t, 1.0, c.Dialog().Style.Opacity)
	assert.Equal(t, 0.8, c.Overlay().Style.Opacity)
	assert.False(t, h.engine.Busy(), "second Open issued no effects")

	c.Open()
	assert.Equal(t, Open, c.State())
	assert.False(t, h.engine.Busy())
}

func TestClose_Idempotent(t *testing.T) {
	h := newHarness(t, "a")
	set := h.attach(t)
	c := get(t, set, "a")

	c.Close()
	assert.Equal(t, Closed, c.State(), "closing a closed modal does nothing")
	assert.False(t, h.engine.Busy())

	c.Open()
	h.settle()

	c.Close()
	assert.Equal(t, Closing, c.State())
	c.Close()
	assert.Equal(t, Closing, c.State())

	h.advance(h.opts.FadeDuration)
	assert.Equal(t, Closed, c.State())
	assert.True(t, c.Overlay().Hidden)
	assert.True(t, c.Dialog().Hidden)
	assert.Equal(t, 0.0, c.Dialog().Style.Opacity)
	assert.False(t, h.engine.Busy())
}

func TestClose_InterruptsOpening(t *testing.T) {
	h := newHarness(t, "a")
	set := h.attach(t)
	c := get(t, set, "a")

	c.Open()
	h.advance(h.opts.FadeDuration / 4)
	c.Close()
	assert.Equal(t, Closing, c.State())

	h.settle()
	assert.Equal(t, Closed, c.State(), "the interrupted fade-in never marks the modal open")
	assert.True(t, c.Dialog().Hidden)
	assert.True(t, c.Overlay().Hidden)

	c.Open()
	assert.Equal(t, Opening, c.State(), "modal can be reopened")
}

func TestPairingInvariant(t *testing.T) {
	h := newHarness(t, "a")
	set := h.attach(t)
	c := get(t, set, "a")

	paired := func() {
		t.Helper()
		assert.Equal(t, c.Overlay().Hidden, c.Dialog().Hidden, "state %s", c.State())
	}

	paired()
	c.Open()
	paired()
	for range 10 {
		h.advance(50 * time.Millisecond)
		paired()
	}
	c.Close()
	for range 10 {
		h.advance(50 * time.Millisecond)
		paired()
	}
	assert.Equal(t, Closed, c.State())
}

func TestCentering_OpenAndReposition(t *testing.T) {
	h := newHarness(t, "a")
	set := h.attach(t)
	c := get(t, set, "a")

	h.doc.SetViewport(page.Viewport{Width: 101, Height: 41, ScrollX: 7, ScrollY: 120})
	c.Open()

	// 41/2 - 10/2 + 120 and 101/2 - 30/2 + 7
	assert.Equal(t, 135.5, c.Dialog().Style.Top)
	assert.Equal(t, 42.5, c.Dialog().Style.Left)
	h.settle()

	h.doc.SetViewport(page.Viewport{Width: 60, Height: 20, ScrollX: 0, ScrollY: 3})
	h.bus.PublishResize()
	h.advance(h.opts.RepositionDuration / 2)
	assert.NotEqual(t, 8.0, c.Dialog().Style.Top, "dialog glides rather than jumps")

	h.settle()
	assert.Equal(t, 8.0, c.Dialog().Style.Top)
	assert.Equal(t, 15.0, c.Dialog().Style.Left)
	assert.Equal(t, Open, c.State())
}

func TestReposition_DuringOpenKeepsFade(t *testing.T) {
	h := newHarness(t, "a")
	set := h.attach(t)
	c := get(t, set, "a")

	c.Open()
	h.advance(h.opts.FadeDuration / 2)
	h.bus.PublishResize()

	h.advance(h.opts.FadeDuration / 2)
	assert.Equal(t, Open, c.State(), "reposition does not cancel the fade-in")
}

func TestMultiInstanceIsolation(t *testing.T) {
	h := newHarness(t, "A", "B")
	set := h.attach(t)
	a := get(t, set, "A")
	b := get(t, set, "B")

	ev := h.bus.PublishClick(h.doc.ByID("modal-open-A"))
	assert.True(t, ev.DefaultPrevented(), "trigger suppresses the default action")
	assert.Equal(t, Opening, a.State())
	assert.Equal(t, Closed, b.State())

	h.settle()
	h.bus.PublishClick(b.Overlay())
	h.bus.PublishClick(b.CloseButton())
	assert.Equal(t, Open, a.State(), "B's controls never reach A")

	h.bus.PublishClick(a.CloseButton())
	assert.Equal(t, Closing, a.State())
	assert.Equal(t, Closed, b.State())
}

func TestOverlayClickCloses(t *testing.T) {
	h := newHarness(t, "a")
	set := h.attach(t)
	c := get(t, set, "a")

	c.Open()
	h.settle()
	h.bus.PublishClick(c.Overlay())
	assert.Equal(t, Closing, c.State())

	h.settle()
	assert.Equal(t, Closed, c.State())
}

func TestEscapeCloses(t *testing.T) {
	h := newHarness(t, "a")
	set := h.attach(t)
	c := get(t, set, "a")

	h.bus.PublishKeyUp(KeyEscape)
	assert.Equal(t, Closed, c.State(), "escape on a closed modal is a no-op")
	assert.False(t, h.engine.Busy())

	c.Open()
	h.settle()

	h.bus.PublishKeyUp("enter")
	assert.Equal(t, Open, c.State())

	h.bus.PublishKeyUp(KeyEscape)
	assert.Equal(t, Closing, c.State())
	h.settle()
	assert.Equal(t, Closed, c.State())
}

func TestEscapeClosesEveryOpenModal(t *testing.T) {
	h := newHarness(t, "a", "b", "c")
	set := h.attach(t)
	a, b, c := get(t, set, "a"), get(t, set, "b"), get(t, set, "c")

	a.Open()
	b.Open()
	h.settle()

	h.bus.PublishKeyUp(KeyEscape)
	assert.Equal(t, Closing, a.State())
	assert.Equal(t, Closing, b.State())
	assert.Equal(t, Closed, c.State())

	h.settle()
	for _, m := range []*Controller{a, b} {
		assert.Equal(t, Closed, m.State())
		assert.True(t, m.Overlay().Hidden)
		assert.True(t, m.Dialog().Hidden)
	}
	assert.Empty(t, set.Visible())
}

func TestNew_MovesSourceChildrenIntoDialog(t *testing.T) {
	h := newHarness(t, "a")
	src := h.doc.ByID("a")
	link := src.AppendChild(page.NewNode("x"))
	link.Label = "Go"
	link.Href = "h"
	note := src.AppendChild(page.NewNode("note"))
	note.Content = "fine print"
	nested := note.AppendChild(page.NewNode("deep"))

	set := h.attach(t)
	c := get(t, set, "a")

	assert.Empty(t, src.Children(), "source keeps nothing")
	children := c.Dialog().Children()
	require.Len(t, children, 3)
	assert.Same(t, link, children[0])
	assert.Same(t, note, children[1])
	assert.Same(t, c.CloseButton(), children[2], "close button comes last")
	assert.Same(t, c.Dialog(), link.Parent())
	assert.Same(t, note, nested.Parent(), "grandchildren move with their parent")

	assert.Same(t, link, h.doc.ByID("x"))

	c.Open()
	h.settle()
	assert.Equal(t, Open, c.State())
	assert.True(t, link.Visible())
}

func TestResizeWhileClosed(t *testing.T) {
	h := newHarness(t, "a")
	set := h.attach(t)
	c := get(t, set, "a")

	h.doc.SetViewport(page.Viewport{Width: 50, Height: 30})
	require.NotPanics(t, func() { c.Reposition() })
	h.bus.PublishResize()
	h.settle()

	assert.Equal(t, Closed, c.State())
	assert.True(t, c.Dialog().Hidden)
	assert.Equal(t, 10.0, c.Dialog().Style.Top)
	assert.Equal(t, 10.0, c.Dialog().Style.Left)
}

func TestMissingTrigger(t *testing.T) {
	h := newHarness(t)
	src := page.NewNode("lonely", SourceClass)
	src.Content = "hi"
	h.doc.Append(src)

	set := h.attach(t)
	c := get(t, set, "lonely")
	assert.Nil(t, c.Trigger())

	c.Open()
	assert.Equal(t, Opening, c.State())
	h.settle()
	assert.Equal(t, Open, c.State())
}

func TestDetach(t *testing.T) {
	h := newHarness(t, "a", "b")
	set := h.attach(t)
	a := get(t, set, "a")
	b := get(t, set, "b")
	before := h.bus.Len()

	a.Detach()
	assert.Less(t, h.bus.Len(), before)

	h.bus.PublishClick(a.Trigger())
	h.bus.PublishClick(b.Trigger())
	assert.Equal(t, Closed, a.State())
	assert.Equal(t, Opening, b.State(), "other instances keep their handlers")
}

func TestAttach_RejectsDuplicateAndEmptyIDs(t *testing.T) {
	h := newHarness(t, "dup", "dup")
	h.doc.Append(page.NewNode("", SourceClass))

	_, err := Attach(h.doc, h.bus, h.engine, h.opts)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
	assert.Contains(t, err.Error(), "duplicate identifier")
	assert.Contains(t, err.Error(), "identifier is required")
	assert.Equal(t, 0, h.bus.Len(), "nothing is wired when validation fails")
	assert.False(t, h.doc.ByID("dup").Hidden)
}

func TestSet(t *testing.T) {
	h := newHarness(t, "a", "b")
	set := h.attach(t)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, "a", set.All()[0].ID())
	assert.Equal(t, "b", set.All()[1].ID())
	_, ok := set.Get("missing")
	assert.False(t, ok)

	assert.Empty(t, set.Visible())
	get(t, set, "b").Open()
	visible := set.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "b", visible[0].ID())
}

func TestValidate(t *testing.T) {
	doc := page.NewDocument("t")
	doc.Append(page.NewNode("ok", SourceClass))
	doc.Append(page.NewNode(TriggerID("ok")))
	doc.Append(page.NewNode("lonely", SourceClass))
	doc.Append(page.NewNode(TriggerID("ghost")))

	warnings, err := Validate(doc)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, "lonely", warnings[0].Item)
	assert.Equal(t, "modal-open-ghost", warnings[1].Item)

	doc.Append(page.NewNode("ok", SourceClass))
	_, err = Validate(doc)
	require.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "opening", Opening.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "closing", Closing.String())
	assert.Equal(t, "unknown", State(42).String())
}
