package coordinator

import (
	"fmt"
	"maps"
	"slices"

	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/remote"
	"github.com/marcus/notegrid/internal/undo"
)

// SetColor recolors one note.
func (c *Coordinator) SetColor(id string, color string) error {
	n, _, err := c.lookup(id)
	if err != nil {
		return err
	}
	prev := n.Color
	if prev == color {
		return nil
	}
	if err := c.store.Dispatch(note.SetColor{ID: id, Color: color}); err != nil {
		return err
	}
	c.remote.UpdateNoteField(remote.FieldColor, color, id)

	c.notify("Color changed", c.inverse("color", func() error {
		if err := c.store.Dispatch(note.SetColor{ID: id, Color: prev}); err != nil {
			return err
		}
		c.remote.UpdateNoteField(remote.FieldColor, prev, id)
		return nil
	}))
	return nil
}

// SetBackground changes the background of one note.
func (c *Coordinator) SetBackground(id string, bg string) error {
	n, _, err := c.lookup(id)
	if err != nil {
		return err
	}
	prev := n.Background
	if prev == bg {
		return nil
	}
	if err := c.store.Dispatch(note.SetBackground{ID: id, Background: bg}); err != nil {
		return err
	}
	c.remote.UpdateNoteField(remote.FieldBackground, bg, id)

	c.notify("Background changed", c.inverse("background", func() error {
		if err := c.store.Dispatch(note.SetBackground{ID: id, Background: prev}); err != nil {
			return err
		}
		c.remote.UpdateNoteField(remote.FieldBackground, prev, id)
		return nil
	}))
	return nil
}

// BatchColor recolors every selected note.
func (c *Coordinator) BatchColor(entries []note.Entry, color string) error {
	ids := entryIDs(entries)
	if len(ids) == 0 {
		return nil
	}
	st := c.store.State()
	prev := make(map[string]string, len(ids))
	for _, id := range ids {
		n, ok := st.Get(id)
		if !ok {
			return c.missing(id)
		}
		prev[id] = n.Color
	}
	if err := c.store.Dispatch(note.BatchUpdateColor{IDs: ids, Color: color}); err != nil {
		return err
	}
	c.remote.UpdateNoteField(remote.FieldColor, color, ids...)

	c.notify("Colors changed", c.inverse("batchColor", func() error {
		if err := c.store.Dispatch(note.RestoreColors{Colors: prev}); err != nil {
			return err
		}
		c.remote.UpdateFields("undo:batchColor", valueChanges(remote.FieldColor, prev), nil)
		return nil
	}))
	return nil
}

// BatchBackground changes the background of every selected note.
func (c *Coordinator) BatchBackground(entries []note.Entry, bg string) error {
	ids := entryIDs(entries)
	if len(ids) == 0 {
		return nil
	}
	st := c.store.State()
	prev := make(map[string]string, len(ids))
	for _, id := range ids {
		n, ok := st.Get(id)
		if !ok {
			return c.missing(id)
		}
		prev[id] = n.Background
	}
	if err := c.store.Dispatch(note.BatchUpdateBackground{IDs: ids, Background: bg}); err != nil {
		return err
	}
	c.remote.UpdateNoteField(remote.FieldBackground, bg, ids...)

	c.notify("Backgrounds changed", c.inverse("batchBackground", func() error {
		if err := c.store.Dispatch(note.RestoreBackgrounds{Backgrounds: prev}); err != nil {
			return err
		}
		c.remote.UpdateFields("undo:batchBackground", valueChanges(remote.FieldBackground, prev), nil)
		return nil
	}))
	return nil
}

// valueChanges groups ids by their value into one write per distinct value.
func valueChanges[V ~string](field remote.Field, values map[string]V) []remote.Change {
	var out []remote.Change
	index := make(map[V]int)
	for _, id := range sortedIDs(values) {
		v := values[id]
		i, ok := index[v]
		if !ok {
			i = len(out)
			index[v] = i
			out = append(out, remote.Change{Field: field, Value: string(v)})
		}
		out[i].IDs = append(out[i].IDs, id)
	}
	return out
}

// AddLabel attaches a label to a note. Adding a label the note already has
// does nothing.
func (c *Coordinator) AddLabel(id, labelID string) error {
	n, _, err := c.lookup(id)
	if err != nil {
		return err
	}
	if n.HasLabel(labelID) {
		return nil
	}
	if err := c.addLabel(id, labelID); err != nil {
		return err
	}
	c.notify("Label added: "+c.labels.Name(labelID), c.inverse("addLabel", func() error {
		return c.removeLabel(id, labelID)
	}))
	return nil
}

// RemoveLabel detaches a label from a note.
func (c *Coordinator) RemoveLabel(id, labelID string) error {
	n, _, err := c.lookup(id)
	if err != nil {
		return err
	}
	if !n.HasLabel(labelID) {
		return nil
	}
	if err := c.removeLabel(id, labelID); err != nil {
		return err
	}
	c.notify("Label removed: "+c.labels.Name(labelID), c.inverse("removeLabel", func() error {
		return c.addLabel(id, labelID)
	}))
	return nil
}

func (c *Coordinator) addLabel(id, labelID string) error {
	if err := c.store.Dispatch(note.AddLabel{ID: id, LabelID: labelID}); err != nil {
		return err
	}
	c.labels.Increment(labelID)
	c.remote.AddLabel(id, labelID)
	return nil
}

func (c *Coordinator) removeLabel(id, labelID string) error {
	if err := c.store.Dispatch(note.RemoveLabel{ID: id, LabelID: labelID}); err != nil {
		return err
	}
	c.labels.Decrement(labelID)
	c.remote.RemoveLabel(id, labelID)
	return nil
}

// AddImage attaches an image to a note and returns it. The image lives under
// the acting user's media path.
func (c *Coordinator) AddImage(id string) (note.Image, error) {
	if _, _, err := c.lookup(id); err != nil {
		return note.Image{}, err
	}
	imageID := c.newID()
	img := note.Image{ID: imageID, URL: MediaPath(c.userID, id, imageID)}
	if err := c.store.Dispatch(note.AddImage{ID: id, Image: img, Index: -1}); err != nil {
		return note.Image{}, err
	}
	c.persistImages(id)

	c.notify("Image added", c.inverse("addImage", func() error {
		if err := c.store.Dispatch(note.RemoveImage{ID: id, ImageID: imageID}); err != nil {
			return err
		}
		c.persistImages(id)
		c.remote.DeleteMedia(id, img.URL)
		return nil
	}))
	return img, nil
}

// RemoveImage detaches an image. The stored file is only deleted once the
// notification closes without an undo, so the slot blocks quitting until then.
func (c *Coordinator) RemoveImage(id, imageID string) error {
	n, _, err := c.lookup(id)
	if err != nil {
		return err
	}
	index := n.ImageIndex(imageID)
	if index < 0 {
		return fmt.Errorf("%w: %s on %s", note.ErrImageNotFound, imageID, id)
	}
	img := n.Images[index]
	if err := c.store.Dispatch(note.RemoveImage{ID: id, ImageID: imageID}); err != nil {
		return err
	}
	c.persistImages(id)

	c.undo.Open(c.now(), undo.Notification{
		Message:    "Image removed",
		WarnUnload: true,
		Undo: c.inverse("removeImage", func() error {
			if err := c.store.Dispatch(note.AddImage{ID: id, Image: img, Index: index}); err != nil {
				return err
			}
			c.persistImages(id)
			return nil
		}),
		OnClose: func() {
			c.remote.DeleteMedia(id, img.URL)
		},
	})
	return nil
}

func (c *Coordinator) persistImages(id string) {
	n, ok := c.store.State().Get(id)
	if !ok {
		return
	}
	c.remote.UpdateNoteField(remote.FieldImages, slices.Clone(n.Images), id)
}

func (c *Coordinator) missing(id string) error {
	return fmt.Errorf("%w: %s", note.ErrNoteNotFound, id)
}

func entryIDs(entries []note.Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func sortedIDs[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
