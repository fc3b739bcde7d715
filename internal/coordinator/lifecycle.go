package coordinator

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/remote"
)

// Create adds a new note at the front of the order and returns it.
func (c *Coordinator) Create(title, content string, items []note.ChecklistItem) (note.Note, error) {
	now := c.now()
	n := note.Note{
		ID:             c.newID(),
		Title:          title,
		Content:        content,
		Color:          note.ColorDefault,
		Background:     note.BackgroundDefault,
		ChecklistItems: c.withItemIDs(items),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := c.store.Dispatch(note.Create{Note: n}); err != nil {
		return note.Note{}, err
	}
	c.remote.CreateNote(n.Clone())
	c.logger.Debug("coordinator: note created", "id", n.ID)
	return n, nil
}

// Edit replaces the text of a note. It reports false without touching
// anything when the text is unchanged.
func (c *Coordinator) Edit(id, title, content string, items []note.ChecklistItem) (bool, error) {
	before, _, err := c.lookup(id)
	if err != nil {
		return false, err
	}
	items = c.withItemIDs(items)
	if Fingerprint(before.Title, before.Content, before.ChecklistItems) == Fingerprint(title, content, items) {
		return false, nil
	}

	if err := c.store.Dispatch(note.Edit{ID: id, Title: title, Content: content, ChecklistItems: items, At: c.now()}); err != nil {
		return false, err
	}
	after, _ := c.store.State().Get(id)
	c.remote.UpdateFields("edit", textChanges(before, after), nil)

	c.notify("Note saved", c.inverse("edit", func() error {
		current, _ := c.store.State().Get(id)
		err := c.store.Dispatch(note.Edit{
			ID:             id,
			Title:          before.Title,
			Content:        before.Content,
			ChecklistItems: before.ChecklistItems,
			At:             before.UpdatedAt,
		})
		if err != nil {
			return err
		}
		c.remote.UpdateFields("undo:edit", textChanges(current, before), nil)
		return nil
	}))
	return true, nil
}

// Fingerprint hashes the editable text of a note.
func Fingerprint(title, content string, items []note.ChecklistItem) uint64 {
	d := xxhash.New()
	var buf [8]byte
	write := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(s)
	}
	write(title)
	write(content)
	for _, it := range items {
		write(it.ID)
		write(it.Content)
		if it.IsCompleted {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{0})
		}
	}
	return d.Sum64()
}

func textChanges(from, to note.Note) []remote.Change {
	var out []remote.Change
	if from.Title != to.Title {
		out = append(out, remote.Change{Field: remote.FieldTitle, Value: to.Title, IDs: []string{to.ID}})
	}
	if from.Content != to.Content {
		out = append(out, remote.Change{Field: remote.FieldContent, Value: to.Content, IDs: []string{to.ID}})
	}
	if !slices.Equal(from.ChecklistItems, to.ChecklistItems) {
		out = append(out, remote.Change{Field: remote.FieldChecklist, Value: slices.Clone(to.ChecklistItems), IDs: []string{to.ID}})
	}
	return out
}

func (c *Coordinator) withItemIDs(items []note.ChecklistItem) []note.ChecklistItem {
	out := slices.Clone(items)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = c.newID()
		}
	}
	return out
}

// DeleteForever removes a note permanently. There is no undo; label counts
// are released before the remote delete is issued.
func (c *Coordinator) DeleteForever(id string) error {
	n, _, err := c.lookup(id)
	if err != nil {
		return err
	}
	if err := c.store.Dispatch(note.Delete{ID: id}); err != nil {
		return err
	}
	c.release(n)
	c.remote.DeleteNote(id)
	c.notify("Note deleted forever", nil)
	return nil
}

// EmptyTrash permanently removes every trashed note and returns how many
// were removed.
func (c *Coordinator) EmptyTrash() (int, error) {
	trashed := c.store.State().InSection(note.SectionTrash)
	if len(trashed) == 0 {
		return 0, nil
	}
	if err := c.store.Dispatch(note.EmptyTrash{}); err != nil {
		return 0, err
	}
	for _, n := range trashed {
		c.release(n)
		c.remote.DeleteNote(n.ID)
	}
	c.notify("Trash emptied", nil)
	return len(trashed), nil
}

// release drops the label usage and stored media held by a deleted note.
func (c *Coordinator) release(n note.Note) {
	for _, l := range n.Labels {
		c.labels.Decrement(l)
	}
	for _, img := range n.Images {
		c.remote.DeleteMedia(n.ID, img.URL)
	}
}

// Reorder persists a move whose local order change has already been applied,
// as done by the drag engine on release.
func (c *Coordinator) Reorder(initialIndex, finalIndex int) {
	if initialIndex == finalIndex {
		return
	}
	c.logger.Debug("coordinator: reorder", "from", initialIndex, "to", finalIndex)
	c.remote.UpdateOrder(initialIndex, finalIndex)
}

// Move shifts a note to index within the whole order, applying it locally and
// persisting it. Moves across the pinned boundary are refused.
func (c *Coordinator) Move(id string, index int) (bool, error) {
	n, from, err := c.lookup(id)
	if err != nil {
		return false, err
	}
	st := c.store.State()
	if index < 0 || index >= st.Len() || index == from {
		return false, nil
	}
	target, _ := st.Get(st.Order[index])
	if target.IsPinned != n.IsPinned {
		return false, nil
	}
	if err := c.store.Dispatch(note.DND{Order: note.MoveIndex(st.Order, from, index)}); err != nil {
		return false, err
	}
	c.Reorder(from, index)
	return true, nil
}
