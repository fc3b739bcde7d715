// Package dnd is the pointer-driven reorder engine. It is driven by pointer
// samples and frame callbacks from the UI goroutine, mutates the note order
// through the note store, and reports the final move once on release.
package dnd

import (
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/marcus/notegrid/internal/mouse"
	"github.com/marcus/notegrid/internal/note"
)

// Defaults, in layout units.
const (
	DefaultThreshold       = 5
	DefaultEdgeBand        = 80
	DefaultMaxScrollSpeed  = 480.0 // units per second
	DefaultSwapInterval    = 150 * time.Millisecond
	DefaultSettle          = 250 * time.Millisecond
	DefaultHysteresisScale = 400.0

	minHysteresis = 0.65
	maxHysteresis = 0.9
)

// Phase is the engine state.
type Phase int

const (
	Idle Phase = iota
	Armed
	Dragging
	Settling
)

func (p Phase) String() string {
	switch p {
	case Armed:
		return "armed"
	case Dragging:
		return "dragging"
	case Settling:
		return "settling"
	default:
		return "idle"
	}
}

// Layout supplies on-screen geometry. Rect reports false for notes that are
// not currently laid out.
type Layout interface {
	Rect(id string) (mouse.Rect, bool)
	Viewport() mouse.Rect
}

// Store is the part of note.Store the engine needs.
type Store interface {
	State() note.State
	Dispatch(a note.Action) error
}

// CommitFunc receives the single persisted move of a finished drag.
type CommitFunc func(initialIndex, finalIndex int)

// Config tunes the engine. Zero fields take the defaults.
type Config struct {
	Threshold       int
	EdgeBand        int
	MaxScrollSpeed  float64
	SwapInterval    time.Duration
	Settle          time.Duration
	HysteresisScale float64
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.EdgeBand <= 0 {
		c.EdgeBand = DefaultEdgeBand
	}
	if c.MaxScrollSpeed <= 0 {
		c.MaxScrollSpeed = DefaultMaxScrollSpeed
	}
	if c.SwapInterval <= 0 {
		c.SwapInterval = DefaultSwapInterval
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	if c.HysteresisScale <= 0 {
		c.HysteresisScale = DefaultHysteresisScale
	}
	return c
}

// Session describes the drag in progress.
type Session struct {
	DraggedID    string
	InitialIndex int
	CurrentIndex int
	// Pinned is the partition the drag is confined to.
	Pinned bool
	// OverID is the note the pointer was last locked onto.
	OverID string
}

// lock is the hysteresis state for the note last swapped against.
type lock struct {
	id string
	// fromTop is the edge the pointer entered from.
	fromTop bool
}

// FrameResult is what one Frame call did.
type FrameResult struct {
	Swapped bool
	// ScrollBy is how far the viewport should move this frame.
	ScrollBy float64
}

// Engine is the drag reorder state machine. It is not safe for concurrent
// use; call it from the goroutine that owns the note store.
type Engine struct {
	cfg    Config
	store  Store
	layout Layout
	commit CommitFunc
	logger *slog.Logger

	phase   Phase
	session Session
	lock    *lock
	limiter *rate.Limiter

	downID       string
	downX, downY int
	x, y         int
	dirty        bool

	velocity    float64
	lastFrame   time.Time
	settleUntil time.Time
}

// New creates an idle engine. commit may be nil.
func New(cfg Config, store Store, layout Layout, commit CommitFunc, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		cfg:    cfg.withDefaults(),
		store:  store,
		layout: layout,
		commit: commit,
		logger: logger,
	}
}

// SetConfig replaces the tuning. It takes effect at the next drag.
func (e *Engine) SetConfig(cfg Config) {
	e.cfg = cfg.withDefaults()
}

// Phase returns the current state.
func (e *Engine) Phase() Phase { return e.phase }

// Active reports whether a pointer gesture or settle is in progress.
func (e *Engine) Active() bool { return e.phase != Idle }

// Session returns the drag in progress, if any.
func (e *Engine) Session() (Session, bool) {
	if e.phase != Dragging && e.phase != Settling {
		return Session{}, false
	}
	return e.session, true
}

// ScrollVelocity is the current auto-scroll speed in units per second.
// Negative scrolls up.
func (e *Engine) ScrollVelocity() float64 { return e.velocity }

// PointerDown arms the engine on a note. It is ignored unless idle.
func (e *Engine) PointerDown(id string, x, y int) bool {
	if e.phase != Idle {
		return false
	}
	if _, ok := e.store.State().Get(id); !ok {
		return false
	}
	e.phase = Armed
	e.downID = id
	e.downX, e.downY = x, y
	e.x, e.y = x, y
	return true
}

// PointerMove records a pointer sample. Crossing the threshold while armed
// starts the drag.
func (e *Engine) PointerMove(x, y int) {
	switch e.phase {
	case Armed:
		e.x, e.y = x, y
		if abs(x-e.downX) <= e.cfg.Threshold && abs(y-e.downY) <= e.cfg.Threshold {
			return
		}
		e.start()
	case Dragging:
		if x == e.x && y == e.y {
			return
		}
		e.x, e.y = x, y
		e.dirty = true
		e.updateVelocity()
	}
}

func (e *Engine) start() {
	st := e.store.State()
	n, ok := st.Get(e.downID)
	if !ok {
		e.reset()
		return
	}
	index := st.IndexOf(e.downID)
	e.session = Session{
		DraggedID:    e.downID,
		InitialIndex: index,
		CurrentIndex: index,
		Pinned:       n.IsPinned,
	}
	e.phase = Dragging
	e.lock = nil
	e.limiter = rate.NewLimiter(rate.Every(e.cfg.SwapInterval), 1)
	e.dirty = true
	e.lastFrame = time.Time{}
	e.updateVelocity()
	e.logger.Debug("dnd: drag started", "id", e.downID, "index", index, "pinned", n.IsPinned)
}

// Invalidate forces a collision check on the next frame, for when the layout
// moved under a still pointer (scrolling, resize).
func (e *Engine) Invalidate() {
	if e.phase == Dragging {
		e.dirty = true
	}
}

// Frame advances the engine to now: at most one swap while dragging, and the
// end of the settle window while settling.
func (e *Engine) Frame(now time.Time) FrameResult {
	var res FrameResult
	switch e.phase {
	case Settling:
		if !now.Before(e.settleUntil) {
			e.reset()
		}
		return res
	case Dragging:
	default:
		return res
	}

	if !e.lastFrame.IsZero() && e.velocity != 0 {
		res.ScrollBy = e.velocity * now.Sub(e.lastFrame).Seconds()
	}
	e.lastFrame = now

	if e.dirty {
		res.Swapped = e.check(now)
	}
	return res
}

// check runs the collision test against the last pointer sample.
func (e *Engine) check(now time.Time) bool {
	st := e.store.State()
	overID, rect, ok := e.hovered(st)
	if !ok {
		e.lock = nil
		e.dirty = false
		return false
	}

	over := st.Notes[overID]
	if over.IsPinned != e.session.Pinned {
		e.dirty = false
		return false
	}

	next := lock{id: overID, fromTop: e.y < rect.Y+rect.H/2}
	if e.lock != nil && e.lock.id == overID {
		if !e.crossed(rect) {
			e.dirty = false
			return false
		}
		next.fromTop = !e.lock.fromTop
	}

	if !e.limiter.AllowN(now, 1) {
		// Keep the sample dirty so the swap happens once the interval passes.
		return false
	}
	e.dirty = false

	from := st.IndexOf(e.session.DraggedID)
	to := st.IndexOf(overID)
	if from < 0 || to < 0 || from == to {
		return false
	}
	if err := e.store.Dispatch(note.DND{Order: note.MoveIndex(st.Order, from, to)}); err != nil {
		e.logger.Error("dnd: swap failed", "id", e.session.DraggedID, "error", err)
		return false
	}

	e.lock = &next
	e.session.CurrentIndex = to
	e.session.OverID = overID
	return true
}

// hovered finds the note under the pointer, excluding the dragged one.
func (e *Engine) hovered(st note.State) (string, mouse.Rect, bool) {
	for _, id := range st.Order {
		if id == e.session.DraggedID {
			continue
		}
		r, ok := e.layout.Rect(id)
		if ok && r.Contains(e.x, e.y) {
			return id, r, true
		}
	}
	return "", mouse.Rect{}, false
}

// crossed reports whether the pointer is deep enough into the locked note,
// measured from the edge it entered from.
func (e *Engine) crossed(r mouse.Rect) bool {
	depth := r.Bottom() - e.y
	if e.lock.fromTop {
		depth = e.y - r.Y
	}
	return float64(depth) >= HysteresisFraction(r.H, e.cfg.HysteresisScale)*float64(r.H)
}

// HysteresisFraction is the share of a note's height the pointer must cross
// before a second swap against the same note. Taller notes need more.
func HysteresisFraction(height int, scale float64) float64 {
	if scale <= 0 {
		scale = DefaultHysteresisScale
	}
	f := minHysteresis + (maxHysteresis-minHysteresis)*math.Min(1, float64(height)/scale)
	return math.Min(f, maxHysteresis)
}

func (e *Engine) updateVelocity() {
	e.velocity = EdgeVelocity(e.y, e.layout.Viewport(), e.cfg.EdgeBand, e.cfg.MaxScrollSpeed)
}

// EdgeVelocity ramps linearly from zero at the inner edge of the band to max
// at the viewport edge. Outside the band it is zero.
func EdgeVelocity(y int, vp mouse.Rect, band int, maxSpeed float64) float64 {
	if band <= 0 || vp.Empty() {
		return 0
	}
	if top := vp.Y + band; y < top {
		depth := math.Min(float64(top-y), float64(band))
		return -maxSpeed * depth / float64(band)
	}
	if bottom := vp.Bottom() - band; y >= bottom {
		depth := math.Min(float64(y-bottom+1), float64(band))
		return maxSpeed * depth / float64(band)
	}
	return 0
}

// PointerUp releases the pointer. A drag commits the move from its initial to
// its final index when they differ and enters the settle window; releasing an
// armed engine is a plain click. It reports whether a move was committed.
func (e *Engine) PointerUp(now time.Time) bool {
	switch e.phase {
	case Armed:
		e.reset()
		return false
	case Dragging:
	default:
		return false
	}

	e.velocity = 0
	e.dirty = false
	e.phase = Settling
	e.settleUntil = now.Add(e.cfg.Settle)

	final := e.store.State().IndexOf(e.session.DraggedID)
	e.session.CurrentIndex = final
	if final < 0 || final == e.session.InitialIndex {
		return false
	}
	e.logger.Debug("dnd: drag committed", "id", e.session.DraggedID, "from", e.session.InitialIndex, "to", final)
	if e.commit != nil {
		e.commit(e.session.InitialIndex, final)
	}
	return true
}

func (e *Engine) reset() {
	e.phase = Idle
	e.session = Session{}
	e.lock = nil
	e.limiter = nil
	e.downID = ""
	e.dirty = false
	e.velocity = 0
	e.lastFrame = time.Time{}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
