// Package event provides a small typed publish/subscribe bus used to signal
// cross-component state changes (loading, mutations, order changes,
// persistence failures) without ambient globals.
package event

import (
	"log/slog"
	"sync"
)

// Type identifies an event topic.
type Type string

const (
	// LoadingStart is published when a remote call is handed to the dispatcher.
	LoadingStart Type = "loadingStart"
	// LoadingEnd is published when a remote call finishes, successfully or not.
	LoadingEnd Type = "loadingEnd"
	// NoteMutated is published after the note store applied an action.
	NoteMutated Type = "noteMutated"
	// OrderChanged is published when an action changed the order sequence.
	OrderChanged Type = "orderChanged"
	// PersistFailed is published when a remote call returned an error.
	PersistFailed Type = "persistFailed"
	// ConfigReloaded is published after the config file changed on disk.
	ConfigReloaded Type = "configReloaded"
)

// Event is the payload delivered to subscribers.
type Event struct {
	Type    Type
	Action  string   // reducer action or remote operation name
	NoteIDs []string // affected notes, may be empty
	Err     error    // set for PersistFailed
	Data    any      // optional topic-specific payload
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Dispatcher fans events out to registered handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Type][]subscription
	nextID   uint64
	closed   bool
	logger   *slog.Logger
}

// New creates a dispatcher that discards handler panics silently.
func New() *Dispatcher {
	return NewWithLogger(nil)
}

// NewWithLogger creates a dispatcher that logs recovered handler panics.
func NewWithLogger(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		handlers: make(map[Type][]subscription),
		logger:   logger,
	}
}

// Subscribe registers h for events of type t and returns a function that
// removes the registration.
func (d *Dispatcher) Subscribe(t Type, h Handler) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.handlers[t] = append(d.handlers[t], subscription{id: id, handler: h})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		subs := d.handlers[t]
		for i, s := range subs {
			if s.id == id {
				d.handlers[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every handler subscribed to e.Type.
// Publishing on a closed dispatcher is a no-op.
func (d *Dispatcher) Publish(e Event) {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return
	}
	// Copy so handlers may subscribe/unsubscribe while being called
	subs := append([]subscription(nil), d.handlers[e.Type]...)
	d.mu.RUnlock()

	for _, s := range subs {
		d.deliver(s, e)
	}
}

func (d *Dispatcher) deliver(s subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event: handler panic", "type", e.Type, "panic", r)
		}
	}()
	s.handler(e)
}

// Close drops all subscriptions. Later publishes are ignored.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.handlers = make(map[Type][]subscription)
}
