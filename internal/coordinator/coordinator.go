// Package coordinator applies user mutations optimistically, pairs each with
// an undo notification carrying its inverse, and hands the persistence call
// to the remote dispatcher.
package coordinator

import (
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/marcus/notegrid/internal/labels"
	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/remote"
	"github.com/marcus/notegrid/internal/undo"
)

// Config wires a Coordinator to its collaborators.
type Config struct {
	Store  *note.Store
	Undo   *undo.Controller
	Remote *remote.Dispatcher
	Labels *labels.Registry
	Logger *slog.Logger

	// UserID namespaces media paths.
	UserID string

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Coordinator runs the optimistic mutation protocol. It must be used from the
// goroutine that owns the note store.
type Coordinator struct {
	store  *note.Store
	undo   *undo.Controller
	remote *remote.Dispatcher
	labels *labels.Registry
	logger *slog.Logger
	userID string
	now    func() time.Time
	newID  func() string
}

// New creates a Coordinator.
func New(cfg Config) *Coordinator {
	c := &Coordinator{
		store:  cfg.Store,
		undo:   cfg.Undo,
		remote: cfg.Remote,
		labels: cfg.Labels,
		logger: cfg.Logger,
		userID: cfg.UserID,
		now:    cfg.Now,
		newID:  cfg.NewID,
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.labels == nil {
		c.labels = labels.NewRegistry()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return c
}

// MediaPath is where an image of a note is stored for a user.
func MediaPath(userID, noteID, imageID string) string {
	return path.Join("media", userID, noteID, imageID)
}

// Undo runs the inverse held by the live notification, if any.
func (c *Coordinator) Undo() bool {
	return c.undo.Invoke(c.now())
}

// Tick expires the live notification once its window has passed.
func (c *Coordinator) Tick(now time.Time) bool {
	return c.undo.Tick(now)
}

// lookup returns the note and its current index.
func (c *Coordinator) lookup(id string) (note.Note, int, error) {
	st := c.store.State()
	n, ok := st.Get(id)
	if !ok {
		return note.Note{}, -1, fmt.Errorf("%w: %s", note.ErrNoteNotFound, id)
	}
	return n, st.IndexOf(id), nil
}

// inverse wraps an undo body so a failing reducer call is logged instead of
// lost inside the notification callback.
func (c *Coordinator) inverse(name string, fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			c.logger.Error("coordinator: undo failed", "action", name, "error", err)
		}
	}
}

func (c *Coordinator) notify(msg string, undoFn func()) {
	c.undo.Open(c.now(), undo.Notification{Message: msg, Undo: undoFn})
}

func (c *Coordinator) order() []string {
	return c.store.State().Order
}
