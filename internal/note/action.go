package note

import "time"

// Kind names an action for logging and events.
type Kind string

const (
	KindCreate             Kind = "CREATE"
	KindEdit               Kind = "EDIT"
	KindPin                Kind = "PIN"
	KindArchive            Kind = "ARCHIVE"
	KindTrash              Kind = "TRASH"
	KindUndoSection        Kind = "UNDO_SECTION"
	KindBatchArchive       Kind = "BATCH_ARCHIVE"
	KindBatchPin           Kind = "BATCH_PIN"
	KindUndoBatch          Kind = "UNDO_BATCH"
	KindColor              Kind = "UPDATE_COLOR"
	KindBackground         Kind = "UPDATE_BG"
	KindBatchColor         Kind = "BATCH_UPDATE_COLOR"
	KindBatchBackground    Kind = "BATCH_UPDATE_BG"
	KindRestoreColors      Kind = "RESTORE_COLORS"
	KindRestoreBackgrounds Kind = "RESTORE_BGS"
	KindAddLabel           Kind = "ADD_LABEL"
	KindRemoveLabel        Kind = "REMOVE_LABEL"
	KindAddImage           Kind = "ADD_IMAGE"
	KindRemoveImage        Kind = "REMOVE_IMAGE"
	KindDelete             Kind = "DELETE"
	KindEmptyTrash         Kind = "EMPTY_TRASH"
	KindDND                Kind = "DND"
)

// Action is a state transition request understood by Reduce.
type Action interface {
	Kind() Kind
	// Targets lists the note ids the action refers to.
	Targets() []string
}

// Create inserts a new note at the front of the order.
type Create struct{ Note Note }

// Edit replaces the editable text fields of a note.
type Edit struct {
	ID             string
	Title          string
	Content        string
	ChecklistItems []ChecklistItem
	At             time.Time
}

// SetPinned pins or unpins a note. Pinning clears the archived flag.
type SetPinned struct {
	ID     string
	Pinned bool
}

// SetArchived archives or unarchives a note. Archiving clears the pinned flag.
type SetArchived struct {
	ID       string
	Archived bool
}

// SetTrash moves a note into or out of the trash. Trashing clears the pinned
// flag but leaves the archived flag as it was.
type SetTrash struct {
	ID    string
	Trash bool
}

// UndoSection restores a note's flags and reinserts it at Index.
type UndoSection struct {
	ID    string
	Index int
	Flags Flags
}

// BatchArchive archives or unarchives every entry and moves them as a block
// to the front of the order.
type BatchArchive struct {
	Entries  []Entry
	Archived bool
}

// BatchPin pins or unpins every entry and moves them as a block to the front.
type BatchPin struct {
	Entries []Entry
	Pinned  bool
}

// UndoBatch puts every entry back at its captured index with its captured
// pinned/archived flags.
type UndoBatch struct{ Entries []Entry }

// SetColor changes one note's color.
type SetColor struct {
	ID    string
	Color string
}

// SetBackground changes one note's background.
type SetBackground struct {
	ID         string
	Background string
}

// BatchUpdateColor sets the same color on several notes.
type BatchUpdateColor struct {
	IDs   []string
	Color string
}

// BatchUpdateBackground sets the same background on several notes.
type BatchUpdateBackground struct {
	IDs        []string
	Background string
}

// RestoreColors sets per-note colors, used to undo color changes.
type RestoreColors struct{ Colors map[string]string }

// RestoreBackgrounds sets per-note backgrounds.
type RestoreBackgrounds struct{ Backgrounds map[string]string }

// AddLabel attaches a label. Attaching an attached label is a no-op.
type AddLabel struct {
	ID      string
	LabelID string
}

// RemoveLabel detaches a label.
type RemoveLabel struct {
	ID      string
	LabelID string
}

// AddImage inserts an image at Index; a negative or out-of-range Index appends.
type AddImage struct {
	ID    string
	Image Image
	Index int
}

// RemoveImage detaches an image.
type RemoveImage struct {
	ID      string
	ImageID string
}

// Delete removes a note permanently.
type Delete struct{ ID string }

// EmptyTrash removes every trashed note.
type EmptyTrash struct{}

// DND replaces the order with a permutation of itself.
type DND struct{ Order []string }

func (Create) Kind() Kind                { return KindCreate }
func (Edit) Kind() Kind                  { return KindEdit }
func (SetPinned) Kind() Kind             { return KindPin }
func (SetArchived) Kind() Kind           { return KindArchive }
func (SetTrash) Kind() Kind              { return KindTrash }
func (UndoSection) Kind() Kind           { return KindUndoSection }
func (BatchArchive) Kind() Kind          { return KindBatchArchive }
func (BatchPin) Kind() Kind              { return KindBatchPin }
func (UndoBatch) Kind() Kind             { return KindUndoBatch }
func (SetColor) Kind() Kind              { return KindColor }
func (SetBackground) Kind() Kind         { return KindBackground }
func (BatchUpdateColor) Kind() Kind      { return KindBatchColor }
func (BatchUpdateBackground) Kind() Kind { return KindBatchBackground }
func (RestoreColors) Kind() Kind         { return KindRestoreColors }
func (RestoreBackgrounds) Kind() Kind    { return KindRestoreBackgrounds }
func (AddLabel) Kind() Kind              { return KindAddLabel }
func (RemoveLabel) Kind() Kind           { return KindRemoveLabel }
func (AddImage) Kind() Kind              { return KindAddImage }
func (RemoveImage) Kind() Kind           { return KindRemoveImage }
func (Delete) Kind() Kind                { return KindDelete }
func (EmptyTrash) Kind() Kind            { return KindEmptyTrash }
func (DND) Kind() Kind                   { return KindDND }

func (a Create) Targets() []string                { return []string{a.Note.ID} }
func (a Edit) Targets() []string                  { return []string{a.ID} }
func (a SetPinned) Targets() []string             { return []string{a.ID} }
func (a SetArchived) Targets() []string           { return []string{a.ID} }
func (a SetTrash) Targets() []string              { return []string{a.ID} }
func (a UndoSection) Targets() []string           { return []string{a.ID} }
func (a BatchArchive) Targets() []string          { return entryIDs(a.Entries) }
func (a BatchPin) Targets() []string              { return entryIDs(a.Entries) }
func (a UndoBatch) Targets() []string             { return entryIDs(a.Entries) }
func (a SetColor) Targets() []string              { return []string{a.ID} }
func (a SetBackground) Targets() []string         { return []string{a.ID} }
func (a BatchUpdateColor) Targets() []string      { return a.IDs }
func (a BatchUpdateBackground) Targets() []string { return a.IDs }
func (a RestoreColors) Targets() []string         { return sortedKeys(a.Colors) }
func (a RestoreBackgrounds) Targets() []string    { return sortedKeys(a.Backgrounds) }
func (a AddLabel) Targets() []string              { return []string{a.ID} }
func (a RemoveLabel) Targets() []string           { return []string{a.ID} }
func (a AddImage) Targets() []string              { return []string{a.ID} }
func (a RemoveImage) Targets() []string           { return []string{a.ID} }
func (a Delete) Targets() []string                { return []string{a.ID} }
func (EmptyTrash) Targets() []string              { return nil }
func (DND) Targets() []string                     { return nil }

func entryIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
