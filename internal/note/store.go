package note

import (
	"fmt"
	"slices"

	"github.com/marcus/notegrid/internal/event"
)

// Store owns the current State. Every mutation goes through Dispatch, which
// runs Reduce and publishes the outcome. A Store is confined to the UI
// goroutine and is not safe for concurrent use.
type Store struct {
	state State
	bus   *event.Dispatcher
	subs  []func(State)
}

// NewStore creates a store holding initial. bus may be nil.
func NewStore(initial State, bus *event.Dispatcher) (*Store, error) {
	if initial.Notes == nil {
		initial.Notes = make(map[string]Note)
	}
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}
	return &Store{state: initial, bus: bus}, nil
}

// State returns the current state. Treat it as read-only.
func (s *Store) State() State { return s.state }

// Subscribe registers fn to be called with every new state.
func (s *Store) Subscribe(fn func(State)) {
	s.subs = append(s.subs, fn)
}

// Dispatch applies a. On error the state is left untouched.
func (s *Store) Dispatch(a Action) error {
	next, err := Reduce(s.state, a)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Kind(), err)
	}

	orderChanged := !slices.Equal(s.state.Order, next.Order)
	s.state = next

	if s.bus != nil {
		s.bus.Publish(event.Event{Type: event.NoteMutated, Action: string(a.Kind()), NoteIDs: a.Targets()})
		if orderChanged {
			s.bus.Publish(event.Event{Type: event.OrderChanged, Action: string(a.Kind()), Data: slices.Clone(next.Order)})
		}
	}
	for _, fn := range s.subs {
		fn(next)
	}
	return nil
}

// Reset replaces the whole state, used when loading from the store of record.
func (s *Store) Reset(st State) error {
	if st.Notes == nil {
		st.Notes = make(map[string]Note)
	}
	if err := st.Validate(); err != nil {
		return err
	}
	s.state = st
	for _, fn := range s.subs {
		fn(st)
	}
	return nil
}
