package note

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// Reduce applies a to s and returns the resulting state. It never modifies s.
// An action that references a missing note returns s unchanged together with
// an error wrapping ErrNoteNotFound; callers must treat that as a bug rather
// than ignore it, otherwise order and map drift apart.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case Create:
		if a.Note.ID == "" {
			return s, fmt.Errorf("%w: empty id", ErrNoteNotFound)
		}
		if _, ok := s.Notes[a.Note.ID]; ok {
			return s, fmt.Errorf("%w: %s", ErrDuplicateNote, a.Note.ID)
		}
		next := s.with(a.Note.Clone())
		next.Order = slices.Insert(slices.Clone(s.Order), 0, a.Note.ID)
		return next, nil

	case Edit:
		return update(s, a.ID, func(n *Note) {
			n.Title = a.Title
			n.Content = a.Content
			n.ChecklistItems = slices.Clone(a.ChecklistItems)
			if !a.At.IsZero() {
				n.UpdatedAt = a.At
			}
		})

	case SetPinned:
		return changeSection(s, a.ID, func(n *Note) {
			n.IsPinned = a.Pinned
			if a.Pinned {
				n.IsArchived = false
			}
		})

	case SetArchived:
		return changeSection(s, a.ID, func(n *Note) {
			n.IsArchived = a.Archived
			if a.Archived {
				n.IsPinned = false
			}
		})

	case SetTrash:
		return changeSection(s, a.ID, func(n *Note) {
			n.IsTrash = a.Trash
			if a.Trash {
				n.IsPinned = false
			}
		})

	case UndoSection:
		n, err := s.lookup(a.ID)
		if err != nil {
			return s, err
		}
		n.IsPinned = a.Flags.Pinned
		n.IsArchived = a.Flags.Archived
		n.IsTrash = a.Flags.Trash
		next := s.with(n)
		next.Order = moveTo(s.Order, a.ID, a.Index)
		return next, nil

	case BatchArchive:
		return batchToFront(s, a.Entries, func(n *Note) {
			n.IsArchived = a.Archived
			if a.Archived {
				n.IsPinned = false
			}
		})

	case BatchPin:
		return batchToFront(s, a.Entries, func(n *Note) {
			n.IsPinned = a.Pinned
			if a.Pinned {
				n.IsArchived = false
			}
		})

	case UndoBatch:
		return undoBatch(s, a.Entries)

	case SetColor:
		return update(s, a.ID, func(n *Note) { n.Color = a.Color })

	case SetBackground:
		return update(s, a.ID, func(n *Note) { n.Background = a.Background })

	case BatchUpdateColor:
		return updateMany(s, a.IDs, func(n *Note) { n.Color = a.Color })

	case BatchUpdateBackground:
		return updateMany(s, a.IDs, func(n *Note) { n.Background = a.Background })

	case RestoreColors:
		return updateMany(s, sortedKeys(a.Colors), func(n *Note) { n.Color = a.Colors[n.ID] })

	case RestoreBackgrounds:
		return updateMany(s, sortedKeys(a.Backgrounds), func(n *Note) { n.Background = a.Backgrounds[n.ID] })

	case AddLabel:
		return update(s, a.ID, func(n *Note) {
			if !n.HasLabel(a.LabelID) {
				n.Labels = append(n.Labels, a.LabelID)
			}
		})

	case RemoveLabel:
		return update(s, a.ID, func(n *Note) {
			n.Labels = slices.DeleteFunc(n.Labels, func(l string) bool { return l == a.LabelID })
		})

	case AddImage:
		return update(s, a.ID, func(n *Note) {
			if a.Index < 0 || a.Index > len(n.Images) {
				n.Images = append(n.Images, a.Image)
				return
			}
			n.Images = slices.Insert(n.Images, a.Index, a.Image)
		})

	case RemoveImage:
		n, err := s.lookup(a.ID)
		if err != nil {
			return s, err
		}
		i := n.ImageIndex(a.ImageID)
		if i < 0 {
			return s, fmt.Errorf("%w: %s on note %s", ErrImageNotFound, a.ImageID, a.ID)
		}
		n.Images = slices.Delete(n.Images, i, i+1)
		return s.with(n), nil

	case Delete:
		if _, ok := s.Notes[a.ID]; !ok {
			return s, fmt.Errorf("%w: %s", ErrNoteNotFound, a.ID)
		}
		notes := maps.Clone(s.Notes)
		delete(notes, a.ID)
		order := slices.DeleteFunc(slices.Clone(s.Order), func(id string) bool { return id == a.ID })
		return State{Notes: notes, Order: order}, nil

	case EmptyTrash:
		notes := maps.Clone(s.Notes)
		maps.DeleteFunc(notes, func(_ string, n Note) bool { return n.IsTrash })
		order := slices.DeleteFunc(slices.Clone(s.Order), func(id string) bool { return s.Notes[id].IsTrash })
		return State{Notes: notes, Order: order}, nil

	case DND:
		if err := checkPermutation(s, a.Order); err != nil {
			return s, err
		}
		return State{Notes: s.Notes, Order: slices.Clone(a.Order)}, nil
	}

	return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

// update applies fn to one note without touching the order.
func update(s State, id string, fn func(*Note)) (State, error) {
	n, err := s.lookup(id)
	if err != nil {
		return s, err
	}
	fn(&n)
	return s.with(n), nil
}

// updateMany applies fn to several notes, failing before any change if one
// of them is missing.
func updateMany(s State, ids []string, fn func(*Note)) (State, error) {
	for _, id := range ids {
		if _, ok := s.Notes[id]; !ok {
			return s, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
		}
	}
	notes := maps.Clone(s.Notes)
	for _, id := range ids {
		n := notes[id].Clone()
		fn(&n)
		notes[id] = n
	}
	return State{Notes: notes, Order: s.Order}, nil
}

// changeSection applies fn and moves the note to the front of the order.
func changeSection(s State, id string, fn func(*Note)) (State, error) {
	next, err := update(s, id, fn)
	if err != nil {
		return s, err
	}
	next.Order = moveTo(s.Order, id, 0)
	return next, nil
}

// batchToFront splices the entries out in descending captured-index order and
// unshifts them as one block, so the deepest entry ends up first.
func batchToFront(s State, entries []Entry, fn func(*Note)) (State, error) {
	for _, e := range entries {
		if _, ok := s.Notes[e.ID]; !ok {
			return s, fmt.Errorf("%w: %s", ErrNoteNotFound, e.ID)
		}
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int { return cmp.Compare(b.Index, a.Index) })

	notes := maps.Clone(s.Notes)
	order := slices.Clone(s.Order)
	moved := make([]string, 0, len(sorted))
	for _, e := range sorted {
		// Splice by current position; equals the captured index while the
		// selection is fresh and stays correct if it went stale.
		i := slices.Index(order, e.ID)
		if i < 0 {
			continue // duplicate entry already moved
		}
		order = slices.Delete(order, i, i+1)
		moved = append(moved, e.ID)

		n := notes[e.ID].Clone()
		fn(&n)
		notes[e.ID] = n
	}

	return State{Notes: notes, Order: append(moved, order...)}, nil
}

// undoBatch reverses batchToFront: the moved block is lifted out and each id
// is spliced back at its captured index in ascending order, which keeps later
// (larger) targets valid.
func undoBatch(s State, entries []Entry) (State, error) {
	for _, e := range entries {
		if _, ok := s.Notes[e.ID]; !ok {
			return s, fmt.Errorf("%w: %s", ErrNoteNotFound, e.ID)
		}
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int { return cmp.Compare(a.Index, b.Index) })

	ids := make(map[string]struct{}, len(sorted))
	for _, e := range sorted {
		ids[e.ID] = struct{}{}
	}
	order := slices.DeleteFunc(slices.Clone(s.Order), func(id string) bool {
		_, ok := ids[id]
		return ok
	})

	notes := maps.Clone(s.Notes)
	for _, e := range sorted {
		if slices.Contains(order, e.ID) {
			continue
		}
		i := max(0, min(e.Index, len(order)))
		order = slices.Insert(order, i, e.ID)

		n := notes[e.ID].Clone()
		n.IsPinned = e.IsPinned
		n.IsArchived = e.IsArchived
		notes[e.ID] = n
	}

	return State{Notes: notes, Order: order}, nil
}

func checkPermutation(s State, order []string) error {
	if len(order) != len(s.Order) {
		return fmt.Errorf("%w: got %d ids, want %d", ErrInvalidOrder, len(order), len(s.Order))
	}
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if _, ok := s.Notes[id]; !ok {
			return fmt.Errorf("%w: unknown id %s", ErrInvalidOrder, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidOrder, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
