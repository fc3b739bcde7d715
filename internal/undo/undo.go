// Package undo implements the single undo slot behind the notification bar.
//
// At most one notification is live. Opening a new one finalizes the previous
// slot first by running its OnClose callback. The controller owns no timers:
// the UI loop calls Tick with the current time on every frame, which keeps
// every slot transition on the UI goroutine.
package undo

import "time"

const (
	// DefaultWindow is how long a notification with an undo control stays up.
	DefaultWindow = 6 * time.Second
	// DefaultWindowNoUndo is how long a plain notification stays up.
	DefaultWindowNoUndo = 4 * time.Second

	// UndoneMessage is shown after an inverse ran.
	UndoneMessage = "Action undone"
)

// Notification describes one slot.
type Notification struct {
	Message string
	// Undo applies the inverse transition. Nil means no undo control.
	Undo func()
	// OnClose finalizes the action. It runs exactly once when the slot is
	// replaced, expires or is closed, and never after Undo ran.
	OnClose func()
	// NoActionUndone suppresses the "Action undone" follow-up.
	NoActionUndone bool
	// WarnUnload blocks quitting while the slot is live.
	WarnUnload bool
}

// View is the read-only snapshot used for rendering.
type View struct {
	Message   string
	HasUndo   bool
	Remaining time.Duration
}

type slot struct {
	Notification
	expiresAt time.Time
}

// Controller owns the slot.
type Controller struct {
	window       time.Duration
	windowNoUndo time.Duration
	slot         *slot
}

// Option configures a Controller.
type Option func(*Controller)

// WithWindows overrides the expiry windows. Non-positive values keep the
// defaults.
func WithWindows(withUndo, withoutUndo time.Duration) Option {
	return func(c *Controller) {
		if withUndo > 0 {
			c.window = withUndo
		}
		if withoutUndo > 0 {
			c.windowNoUndo = withoutUndo
		}
	}
}

// New creates a controller with no live slot.
func New(opts ...Option) *Controller {
	c := &Controller{
		window:       DefaultWindow,
		windowNoUndo: DefaultWindowNoUndo,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open finalizes the current slot, if any, and installs n.
func (c *Controller) Open(now time.Time, n Notification) {
	c.finalize()

	window := c.windowNoUndo
	if n.Undo != nil {
		window = c.window
	}
	c.slot = &slot{Notification: n, expiresAt: now.Add(window)}
}

// Tick expires the slot when its window has passed. It reports whether a
// slot expired.
func (c *Controller) Tick(now time.Time) bool {
	if c.slot == nil || now.Before(c.slot.expiresAt) {
		return false
	}
	c.finalize()
	return true
}

// Invoke runs the live slot's inverse. The slot is cleared without running
// OnClose, then an "Action undone" notification replaces it unless the slot
// asked otherwise. It reports whether an inverse ran.
func (c *Controller) Invoke(now time.Time) bool {
	if c.slot == nil || c.slot.Undo == nil {
		return false
	}
	s := c.slot
	c.slot = nil

	s.Undo()

	if !s.NoActionUndone {
		c.Open(now, Notification{Message: UndoneMessage})
	}
	return true
}

// Close finalizes the live slot immediately.
func (c *Controller) Close() {
	c.finalize()
}

// Current returns the live slot's view.
func (c *Controller) Current(now time.Time) (View, bool) {
	if c.slot == nil {
		return View{}, false
	}
	return View{
		Message:   c.slot.Message,
		HasUndo:   c.slot.Undo != nil,
		Remaining: max(0, c.slot.expiresAt.Sub(now)),
	}, true
}

// Active reports whether a slot is live.
func (c *Controller) Active() bool { return c.slot != nil }

// CanUndo reports whether the live slot offers an undo control.
func (c *Controller) CanUndo() bool { return c.slot != nil && c.slot.Undo != nil }

// UnloadBlocked reports whether quitting now would abandon a pending action.
func (c *Controller) UnloadBlocked() bool {
	return c.slot != nil && c.slot.WarnUnload
}

// finalize clears the slot before running OnClose, so OnClose may open a new
// notification and a stale inverse can never run.
func (c *Controller) finalize() {
	s := c.slot
	if s == nil {
		return
	}
	c.slot = nil
	if s.OnClose != nil {
		s.OnClose()
	}
}
