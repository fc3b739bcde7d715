package note

import "errors"

// Reducer errors. Each one indicates a caller bug: the action referenced
// something the state does not contain.
var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrDuplicateNote = errors.New("note already exists")
	ErrImageNotFound = errors.New("image not found")
	ErrInvalidOrder  = errors.New("order is not a permutation of the current notes")
	ErrUnknownAction = errors.New("unknown action")
)
