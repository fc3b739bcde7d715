package dnd

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/notegrid/internal/mouse"
	"github.com/marcus/notegrid/internal/note"
)

const rowH = 40

// listLayout stacks notes vertically in store order, like a single column.
type listLayout struct {
	store *note.Store
	vp    mouse.Rect
}

func (l listLayout) Rect(id string) (mouse.Rect, bool) {
	i := l.store.State().IndexOf(id)
	if i < 0 {
		return mouse.Rect{}, false
	}
	return mouse.Rect{X: 0, Y: i * rowH, W: 100, H: rowH}, true
}

func (l listLayout) Viewport() mouse.Rect { return l.vp }

// fixedLayout never moves, so the pointer stays over the same note after a swap.
type fixedLayout map[string]mouse.Rect

func (l fixedLayout) Rect(id string) (mouse.Rect, bool) {
	r, ok := l[id]
	return r, ok
}

func (l fixedLayout) Viewport() mouse.Rect { return mouse.Rect{W: 1000, H: 1000} }

type commits struct{ moves [][2]int }

func (c *commits) record(from, to int) { c.moves = append(c.moves, [2]int{from, to}) }

func newStore(t *testing.T, notes ...note.Note) *note.Store {
	t.Helper()
	st, err := note.NewState(notes)
	require.NoError(t, err)
	s, err := note.NewStore(st, nil)
	require.NoError(t, err)
	return s
}

func abcd() []note.Note {
	return []note.Note{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}}
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newListEngine(t *testing.T, notes ...note.Note) (*Engine, *note.Store, *commits) {
	t.Helper()
	store := newStore(t, notes...)
	var c commits
	e := New(Config{}, store, listLayout{store: store, vp: mouse.Rect{W: 100, H: 1000}}, c.record, nil)
	return e, store, &c
}

func TestThresholdSeparatesClickFromDrag(t *testing.T) {
	e, _, c := newListEngine(t, abcd()...)

	require.True(t, e.PointerDown("A", 10, 10))
	assert.Equal(t, Armed, e.Phase())

	e.PointerMove(15, 15)
	assert.Equal(t, Armed, e.Phase(), "exactly the threshold is still a click")
	_, ok := e.Session()
	assert.False(t, ok)

	assert.False(t, e.PointerUp(t0))
	assert.Equal(t, Idle, e.Phase())
	assert.Empty(t, c.moves)

	require.True(t, e.PointerDown("A", 10, 10))
	e.PointerMove(10, 4)
	assert.Equal(t, Dragging, e.Phase())
	s, ok := e.Session()
	require.True(t, ok)
	assert.Equal(t, Session{DraggedID: "A", InitialIndex: 0, CurrentIndex: 0}, s)
}

func TestPointerDownIgnoredUnlessIdle(t *testing.T) {
	e, _, _ := newListEngine(t, abcd()...)
	assert.False(t, e.PointerDown("Z", 0, 0), "unknown note")
	require.True(t, e.PointerDown("A", 0, 0))
	assert.False(t, e.PointerDown("B", 0, 0))
}

func TestDragSwapCommitAndSettle(t *testing.T) {
	e, store, c := newListEngine(t, abcd()...)

	require.True(t, e.PointerDown("A", 10, 20))
	e.PointerMove(10, 60) // over B
	res := e.Frame(t0)
	assert.True(t, res.Swapped)
	assert.Equal(t, []string{"B", "A", "C", "D"}, store.State().Order)

	s, _ := e.Session()
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, "B", s.OverID)

	assert.True(t, e.PointerUp(t0.Add(time.Second)))
	assert.Equal(t, [][2]int{{0, 1}}, c.moves)
	assert.Equal(t, Settling, e.Phase())

	e.Frame(t0.Add(time.Second + 100*time.Millisecond))
	assert.Equal(t, Settling, e.Phase())
	assert.False(t, e.PointerDown("C", 0, 0), "not reusable while settling")

	e.Frame(t0.Add(time.Second + DefaultSettle))
	assert.Equal(t, Idle, e.Phase())
	assert.Len(t, c.moves, 1, "commit happens once")
}

func TestReturningToStartCommitsNothing(t *testing.T) {
	e, store, c := newListEngine(t, abcd()...)

	require.True(t, e.PointerDown("A", 10, 20))
	e.PointerMove(10, 60)
	require.True(t, e.Frame(t0).Swapped)

	// B now occupies rows 0..40; cross most of it from the bottom.
	e.PointerMove(10, 10)
	require.True(t, e.Frame(t0.Add(time.Second)).Swapped)
	assert.Equal(t, []string{"A", "B", "C", "D"}, store.State().Order)

	assert.False(t, e.PointerUp(t0.Add(2*time.Second)))
	assert.Empty(t, c.moves)
}

func TestSwapsAreRateLimited(t *testing.T) {
	e, store, _ := newListEngine(t, abcd()...)

	require.True(t, e.PointerDown("A", 10, 20))
	e.PointerMove(10, 60)
	require.True(t, e.Frame(t0).Swapped)

	e.PointerMove(10, 100) // over C
	assert.False(t, e.Frame(t0.Add(50*time.Millisecond)).Swapped)
	assert.False(t, e.Frame(t0.Add(100*time.Millisecond)).Swapped)
	assert.Equal(t, []string{"B", "A", "C", "D"}, store.State().Order)

	// The sample stays pending, so no further motion is needed.
	assert.True(t, e.Frame(t0.Add(160*time.Millisecond)).Swapped)
	assert.Equal(t, []string{"B", "C", "A", "D"}, store.State().Order)
}

func TestFramesWithoutMotionDoNothing(t *testing.T) {
	store := newStore(t, abcd()...)
	layout := fixedLayout{
		"A": {X: 0, Y: 0, W: 100, H: rowH},
		"B": {X: 0, Y: 40, W: 100, H: rowH},
	}
	e := New(Config{}, store, layout, nil, nil)

	require.True(t, e.PointerDown("A", 10, 20))
	e.PointerMove(10, 45)
	require.True(t, e.Frame(t0).Swapped)
	order := store.State().Order

	for i := 1; i <= 5; i++ {
		assert.False(t, e.Frame(t0.Add(time.Duration(i)*time.Second)).Swapped)
	}
	assert.Equal(t, order, store.State().Order)
}

func TestHysteresisOnSameNote(t *testing.T) {
	store := newStore(t, abcd()...)
	layout := fixedLayout{
		"A": {X: 0, Y: 0, W: 100, H: rowH},
		"B": {X: 0, Y: 40, W: 100, H: rowH},
	}
	e := New(Config{}, store, layout, nil, nil)

	require.True(t, e.PointerDown("A", 10, 20))
	e.PointerMove(10, 45) // enters B from the top
	require.True(t, e.Frame(t0).Swapped)
	assert.Equal(t, []string{"B", "A", "C", "D"}, store.State().Order)

	// 0.675 of 40 rows is 27: y must reach 67 before swapping with B again.
	at := t0
	for _, y := range []int{50, 60, 66} {
		at = at.Add(time.Second)
		e.PointerMove(10, y)
		assert.False(t, e.Frame(at).Swapped, "y=%d", y)
	}
	at = at.Add(time.Second)
	e.PointerMove(10, 68)
	assert.True(t, e.Frame(at).Swapped)
	assert.Equal(t, []string{"A", "B", "C", "D"}, store.State().Order)

	// The next swap against B is measured from the opposite edge.
	at = at.Add(time.Second)
	e.PointerMove(10, 70)
	assert.False(t, e.Frame(at).Swapped)
	at = at.Add(time.Second)
	e.PointerMove(10, 52)
	assert.True(t, e.Frame(at).Swapped)
}

func TestHysteresisFraction(t *testing.T) {
	assert.InDelta(t, 0.65, HysteresisFraction(0, 400), 1e-9)
	assert.InDelta(t, 0.775, HysteresisFraction(200, 400), 1e-9)
	assert.InDelta(t, 0.9, HysteresisFraction(400, 400), 1e-9)
	assert.InDelta(t, 0.9, HysteresisFraction(4000, 400), 1e-9)
}

func TestPartitionGuard(t *testing.T) {
	notes := []note.Note{
		{ID: "P1", IsPinned: true}, {ID: "U1"}, {ID: "P2", IsPinned: true},
		{ID: "U2"}, {ID: "P3", IsPinned: true}, {ID: "U3"}, {ID: "U4"},
	}
	rng := rand.New(rand.NewPCG(1, 2))

	for _, dragged := range []string{"P1", "U1"} {
		t.Run(dragged, func(t *testing.T) {
			e, store, _ := newListEngine(t, notes...)
			start := store.State().IndexOf(dragged)
			require.True(t, e.PointerDown(dragged, 10, start*rowH+5))
			e.PointerMove(50, start*rowH+30)
			require.Equal(t, Dragging, e.Phase())
			pinned := store.State().Notes[dragged].IsPinned

			at := t0
			for i := 0; i < 500; i++ {
				at = at.Add(time.Duration(rng.IntN(200)) * time.Millisecond)
				e.PointerMove(rng.IntN(100), rng.IntN(len(notes)*rowH))
				if e.Frame(at).Swapped {
					s, _ := e.Session()
					over := store.State().Notes[s.OverID]
					require.Equal(t, pinned, over.IsPinned, "swapped %s against %s", dragged, s.OverID)
				}
				require.NoError(t, store.State().Validate())
			}
		})
	}
}

func TestEdgeVelocity(t *testing.T) {
	vp := mouse.Rect{X: 0, Y: 0, W: 100, H: 400}
	tests := []struct {
		y    int
		want float64
	}{
		{-20, -480},
		{0, -480},
		{40, -240},
		{80, 0},
		{200, 0},
		{319, 0},
		{320, 6},
		{359, 240},
		{399, 480},
		{450, 480},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, EdgeVelocity(tt.y, vp, 80, 480), 1e-9, "y=%d", tt.y)
	}
}

func TestAutoScrollDuringDragOnly(t *testing.T) {
	store := newStore(t, abcd()...)
	e := New(Config{}, store, listLayout{store: store, vp: mouse.Rect{W: 100, H: 400}}, nil, nil)

	require.True(t, e.PointerDown("A", 10, 390))
	assert.Zero(t, e.ScrollVelocity(), "armed engines do not scroll")

	e.PointerMove(10, 399)
	assert.InDelta(t, DefaultMaxScrollSpeed, e.ScrollVelocity(), 1e-9)

	assert.Zero(t, e.Frame(t0).ScrollBy, "first frame has no elapsed time")
	res := e.Frame(t0.Add(100 * time.Millisecond))
	assert.InDelta(t, DefaultMaxScrollSpeed/10, res.ScrollBy, 1e-6)

	e.PointerMove(10, 200)
	assert.Zero(t, e.ScrollVelocity())

	e.PointerMove(10, 399)
	e.PointerUp(t0.Add(time.Second))
	assert.Zero(t, e.ScrollVelocity(), "release stops scrolling")
}

func TestInvalidateRechecksStillPointer(t *testing.T) {
	store := newStore(t, abcd()...)
	layout := fixedLayout{"A": {Y: 0, W: 100, H: rowH}}
	e := New(Config{}, store, layout, nil, nil)

	require.True(t, e.PointerDown("A", 10, 20))
	e.PointerMove(10, 60)
	assert.False(t, e.Frame(t0).Swapped, "nothing under the pointer")

	// The layout scrolls C under the pointer.
	layout["C"] = mouse.Rect{Y: 40, W: 100, H: rowH}
	assert.False(t, e.Frame(t0.Add(time.Second)).Swapped, "not dirty")
	e.Invalidate()
	assert.True(t, e.Frame(t0.Add(2*time.Second)).Swapped)
	assert.Equal(t, []string{"B", "C", "A", "D"}, store.State().Order)
}
