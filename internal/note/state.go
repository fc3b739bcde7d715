package note

import (
	"fmt"
	"maps"
	"slices"
)

// State is the note map together with the display order.
// Order is a bijection with the keys of Notes; index 0 is the most recently
// surfaced note.
type State struct {
	Notes map[string]Note
	Order []string
}

// NewState builds a state from notes in display order.
func NewState(notes []Note) (State, error) {
	s := State{
		Notes: make(map[string]Note, len(notes)),
		Order: make([]string, 0, len(notes)),
	}
	for _, n := range notes {
		if _, ok := s.Notes[n.ID]; ok {
			return State{}, fmt.Errorf("%w: %s", ErrDuplicateNote, n.ID)
		}
		s.Notes[n.ID] = n.Clone()
		s.Order = append(s.Order, n.ID)
	}
	return s, nil
}

// Len returns the number of notes.
func (s State) Len() int { return len(s.Order) }

// Get returns the note with the given id.
func (s State) Get(id string) (Note, bool) {
	n, ok := s.Notes[id]
	return n, ok
}

// IndexOf returns the order position of id, or -1.
func (s State) IndexOf(id string) int {
	return slices.Index(s.Order, id)
}

// Ordered returns the notes in display order.
func (s State) Ordered() []Note {
	out := make([]Note, 0, len(s.Order))
	for _, id := range s.Order {
		out = append(out, s.Notes[id])
	}
	return out
}

// InSection returns the notes of one section in display order.
func (s State) InSection(sec Section) []Note {
	var out []Note
	for _, id := range s.Order {
		if n := s.Notes[id]; n.Section() == sec {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks the order/map bijection.
func (s State) Validate() error {
	if len(s.Order) != len(s.Notes) {
		return fmt.Errorf("%w: %d ids in order, %d notes", ErrInvalidOrder, len(s.Order), len(s.Notes))
	}
	seen := make(map[string]struct{}, len(s.Order))
	for _, id := range s.Order {
		if _, ok := s.Notes[id]; !ok {
			return fmt.Errorf("%w: dangling id %s", ErrInvalidOrder, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidOrder, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// lookup returns a deep copy of the note so callers can modify it freely.
func (s State) lookup(id string) (Note, error) {
	n, ok := s.Notes[id]
	if !ok {
		return Note{}, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	return n.Clone(), nil
}

// with returns a copy of s with n stored under its id. Order is shared.
func (s State) with(n Note) State {
	notes := maps.Clone(s.Notes)
	if notes == nil {
		notes = make(map[string]Note)
	}
	notes[n.ID] = n
	return State{Notes: notes, Order: s.Order}
}

// moveTo returns a new order with id removed from its position and
// reinserted at index (clamped to the valid range).
func moveTo(order []string, id string, index int) []string {
	out := slices.Clone(order)
	if i := slices.Index(out, id); i >= 0 {
		out = slices.Delete(out, i, i+1)
	}
	index = max(0, min(index, len(out)))
	return slices.Insert(out, index, id)
}

// MoveIndex returns a new order with the element at from moved to to.
// Both indices must be in range.
func MoveIndex(order []string, from, to int) []string {
	out := slices.Clone(order)
	id := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, id)
}
