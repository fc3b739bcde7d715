package coordinator

import (
	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/remote"
)

// Pin pins a note and moves it to the front.
func (c *Coordinator) Pin(id string) error {
	return c.changeSection(id, note.SetPinned{ID: id, Pinned: true}, "Note pinned", "pin")
}

// Unpin unpins a note and moves it to the front.
func (c *Coordinator) Unpin(id string) error {
	return c.changeSection(id, note.SetPinned{ID: id, Pinned: false}, "Note unpinned", "unpin")
}

// Archive archives a note and moves it to the front.
func (c *Coordinator) Archive(id string) error {
	return c.changeSection(id, note.SetArchived{ID: id, Archived: true}, "Note archived", "archive")
}

// Unarchive returns an archived note to the active section.
func (c *Coordinator) Unarchive(id string) error {
	return c.changeSection(id, note.SetArchived{ID: id, Archived: false}, "Note unarchived", "unarchive")
}

// Trash moves a note to the trash.
func (c *Coordinator) Trash(id string) error {
	return c.changeSection(id, note.SetTrash{ID: id, Trash: true}, "Note moved to trash", "trash")
}

// Restore takes a note out of the trash.
func (c *Coordinator) Restore(id string) error {
	return c.changeSection(id, note.SetTrash{ID: id, Trash: false}, "Note restored", "restore")
}

func (c *Coordinator) changeSection(id string, fwd note.Action, msg, op string) error {
	before, index, err := c.lookup(id)
	if err != nil {
		return err
	}
	if err := c.store.Dispatch(fwd); err != nil {
		return err
	}
	after, _ := c.store.State().Get(id)

	c.remote.UpdateFields(op, flagChanges(before.Flags(), after.Flags(), id), c.order())
	c.logger.Debug("coordinator: section changed", "id", id, "op", op, "section", after.Section())

	prev := before.Flags()
	c.notify(msg, c.inverse(op, func() error {
		current, _ := c.store.State().Get(id)
		if err := c.store.Dispatch(note.UndoSection{ID: id, Index: index, Flags: prev}); err != nil {
			return err
		}
		c.remote.UpdateFields("undo:"+op, flagChanges(current.Flags(), prev, id), c.order())
		return nil
	}))
	return nil
}

// flagChanges lists the field writes that turn from into to for ids.
func flagChanges(from, to note.Flags, ids ...string) []remote.Change {
	var out []remote.Change
	if from.Pinned != to.Pinned {
		out = append(out, remote.Change{Field: remote.FieldPinned, Value: to.Pinned, IDs: ids})
	}
	if from.Archived != to.Archived {
		out = append(out, remote.Change{Field: remote.FieldArchived, Value: to.Archived, IDs: ids})
	}
	if from.Trash != to.Trash {
		out = append(out, remote.Change{Field: remote.FieldTrash, Value: to.Trash, IDs: ids})
	}
	return out
}

// BatchArchive archives or unarchives the selected notes as a block.
func (c *Coordinator) BatchArchive(entries []note.Entry, archived bool) error {
	msg, op := "Notes archived", "batchArchive"
	if !archived {
		msg, op = "Notes unarchived", "batchUnarchive"
	}
	return c.batchSection(entries, note.BatchArchive{Entries: entries, Archived: archived}, msg, op)
}

// BatchPin pins or unpins the selected notes as a block.
func (c *Coordinator) BatchPin(entries []note.Entry, pinned bool) error {
	msg, op := "Notes pinned", "batchPin"
	if !pinned {
		msg, op = "Notes unpinned", "batchUnpin"
	}
	return c.batchSection(entries, note.BatchPin{Entries: entries, Pinned: pinned}, msg, op)
}

func (c *Coordinator) batchSection(entries []note.Entry, fwd note.Action, msg, op string) error {
	if len(entries) == 0 {
		return nil
	}
	before := c.flagsOf(entries)
	if err := c.store.Dispatch(fwd); err != nil {
		return err
	}
	after := c.flagsOf(entries)
	c.remote.UpdateFields(op, groupChanges(before, after), c.order())

	c.notify(msg, c.inverse(op, func() error {
		current := c.flagsOf(entries)
		if err := c.store.Dispatch(note.UndoBatch{Entries: entries}); err != nil {
			return err
		}
		c.remote.UpdateFields("undo:"+op, groupChanges(current, c.flagsOf(entries)), c.order())
		return nil
	}))
	return nil
}

// flagsOf snapshots the flags of every entry still present in the store.
func (c *Coordinator) flagsOf(entries []note.Entry) map[string]note.Flags {
	st := c.store.State()
	out := make(map[string]note.Flags, len(entries))
	for _, e := range entries {
		if n, ok := st.Get(e.ID); ok {
			out[e.ID] = n.Flags()
		}
	}
	return out
}

// groupChanges merges per-note flag diffs into one write per field and value.
func groupChanges(from, to map[string]note.Flags) []remote.Change {
	type key struct {
		field remote.Field
		value bool
	}
	var keys []key
	ids := make(map[key][]string)
	for _, id := range sortedIDs(to) {
		for _, ch := range flagChanges(from[id], to[id], id) {
			k := key{ch.Field, ch.Value.(bool)}
			if _, ok := ids[k]; !ok {
				keys = append(keys, k)
			}
			ids[k] = append(ids[k], id)
		}
	}
	out := make([]remote.Change, 0, len(keys))
	for _, k := range keys {
		out = append(out, remote.Change{Field: k.field, Value: k.value, IDs: ids[k]})
	}
	return out
}
