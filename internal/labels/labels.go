// Package labels keeps label metadata and per-label note counts. Counts are
// informational only; note membership lives on the notes themselves.
package labels

import (
	"cmp"
	"slices"
	"strings"

	"github.com/marcus/notegrid/internal/note"
)

// Label is label metadata.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registry maps label ids to metadata and usage counts.
// Like the note store it is confined to the UI goroutine.
type Registry struct {
	labels map[string]Label
	counts map[string]int
}

// NewRegistry creates a registry seeded with labels.
func NewRegistry(labels ...Label) *Registry {
	r := &Registry{
		labels: make(map[string]Label, len(labels)),
		counts: make(map[string]int, len(labels)),
	}
	for _, l := range labels {
		r.labels[l.ID] = l
	}
	return r
}

// Add registers or renames a label.
func (r *Registry) Add(l Label) {
	r.labels[l.ID] = l
}

// Get looks up a label.
func (r *Registry) Get(id string) (Label, bool) {
	l, ok := r.labels[id]
	return l, ok
}

// Name returns the label's display name, falling back to the id.
func (r *Registry) Name(id string) string {
	if l, ok := r.labels[id]; ok && l.Name != "" {
		return l.Name
	}
	return id
}

// List returns labels sorted by name.
func (r *Registry) List() []Label {
	out := make([]Label, 0, len(r.labels))
	for _, l := range r.labels {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b Label) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out
}

// Increment bumps the note count of id.
func (r *Registry) Increment(id string) {
	r.counts[id]++
}

// Decrement lowers the note count of id, never below zero.
func (r *Registry) Decrement(id string) {
	if r.counts[id] > 0 {
		r.counts[id]--
	}
}

// Count returns the note count of id.
func (r *Registry) Count(id string) int {
	return r.counts[id]
}

// Recount rebuilds every count from the notes in s.
func (r *Registry) Recount(s note.State) {
	clear(r.counts)
	for _, n := range s.Notes {
		for _, id := range n.Labels {
			r.counts[id]++
		}
	}
}
