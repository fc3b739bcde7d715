// Package remote defines the contract of the store of record and a
// fire-and-forget dispatcher that runs its calls off the UI goroutine.
package remote

import (
	"context"

	"github.com/marcus/notegrid/internal/note"
)

// Field names a persisted note field.
type Field string

const (
	FieldPinned     Field = "isPinned"
	FieldArchived   Field = "isArchived"
	FieldTrash      Field = "isTrash"
	FieldColor      Field = "color"
	FieldBackground Field = "background"
	FieldTitle      Field = "title"
	FieldContent    Field = "content"
	FieldImages     Field = "images"
	FieldChecklist  Field = "checklistItems"
)

// Fields lists every Field.
var Fields = []Field{
	FieldPinned, FieldArchived, FieldTrash, FieldColor, FieldBackground,
	FieldTitle, FieldContent, FieldImages, FieldChecklist,
}

// Store is the store of record. Results are opaque to the engine beyond
// success or failure.
type Store interface {
	CreateNote(ctx context.Context, n note.Note) error
	UpdateNoteField(ctx context.Context, field Field, value any, ids []string) error
	UpdateOrder(ctx context.Context, initialIndex, endIndex int) error
	DeleteNote(ctx context.Context, id string) error
	AddLabel(ctx context.Context, noteID, labelID string) error
	RemoveLabel(ctx context.Context, noteID, labelID string) error
}

// OrderSyncer is implemented by stores that can take a whole order at once.
// The dispatcher uses it after section changes and their undos so the stored
// order follows the local one.
type OrderSyncer interface {
	SyncOrder(ctx context.Context, order []string) error
}

// MediaRemover is implemented by stores that own uploaded media.
type MediaRemover interface {
	DeleteMedia(ctx context.Context, path string) error
}
