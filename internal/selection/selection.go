// Package selection tracks the notes currently selected for a batch action,
// capturing each one's order index and flags at the moment it was selected.
package selection

import (
	"slices"

	"github.com/marcus/notegrid/internal/note"
)

// Controller holds the selected entries in selection order.
type Controller struct {
	entries []note.Entry
}

// New creates an empty controller.
func New() *Controller { return &Controller{} }

// Select captures id from s. Selecting an already selected or missing note
// is a no-op; it reports whether an entry was added.
func (c *Controller) Select(s note.State, id string) bool {
	if c.Has(id) {
		return false
	}
	n, ok := s.Get(id)
	if !ok {
		return false
	}
	c.entries = append(c.entries, note.Entry{
		ID:         id,
		Index:      s.IndexOf(id),
		IsPinned:   n.IsPinned,
		IsArchived: n.IsArchived,
	})
	return true
}

// Deselect drops id's entry.
func (c *Controller) Deselect(id string) {
	c.entries = slices.DeleteFunc(c.entries, func(e note.Entry) bool { return e.ID == id })
}

// Toggle selects id if unselected, otherwise deselects it.
func (c *Controller) Toggle(s note.State, id string) {
	if c.Has(id) {
		c.Deselect(id)
		return
	}
	c.Select(s, id)
}

// Has reports whether id is selected.
func (c *Controller) Has(id string) bool {
	return slices.ContainsFunc(c.entries, func(e note.Entry) bool { return e.ID == id })
}

// Len returns the number of selected notes.
func (c *Controller) Len() int { return len(c.entries) }

// IDs returns the selected ids in selection order.
func (c *Controller) IDs() []string {
	ids := make([]string, len(c.entries))
	for i, e := range c.entries {
		ids[i] = e.ID
	}
	return ids
}

// Entries returns a copy of the captured entries.
func (c *Controller) Entries() []note.Entry {
	return slices.Clone(c.entries)
}

// Take returns the entries and clears the selection. Batch operations consume
// the selection this way so the captured indices are used exactly once.
func (c *Controller) Take() []note.Entry {
	out := c.entries
	c.entries = nil
	return out
}

// Clear drops every entry.
func (c *Controller) Clear() { c.entries = nil }

// Prune drops entries whose note no longer exists in s.
func (c *Controller) Prune(s note.State) {
	c.entries = slices.DeleteFunc(c.entries, func(e note.Entry) bool {
		_, ok := s.Get(e.ID)
		return !ok
	})
}
