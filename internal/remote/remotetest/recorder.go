// Package remotetest provides an in-memory remote.Store that records calls.
package remotetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/remote"
)

// Call is one recorded store invocation.
type Call struct {
	Op    string
	Field remote.Field
	Value any
	IDs   []string
	From  int
	To    int
	Label string
}

// Recorder implements remote.Store by appending every call to Calls.
// Set Fail to make every call return that error after recording it.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	Fail  error
	Block chan struct{} // when non-nil, calls wait for it to close
}

var (
	_ remote.Store        = (*Recorder)(nil)
	_ remote.OrderSyncer  = (*Recorder)(nil)
	_ remote.MediaRemover = (*Recorder)(nil)
)

// Calls returns a snapshot of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Ops returns the recorded operation names in call order.
func (r *Recorder) Ops() []string {
	var ops []string
	for _, c := range r.Calls() {
		ops = append(ops, c.Op)
	}
	return ops
}

func (r *Recorder) record(ctx context.Context, c Call) error {
	if r.Block != nil {
		select {
		case <-r.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	r.calls = append(r.calls, c)
	fail := r.Fail
	r.mu.Unlock()
	if fail != nil {
		return fmt.Errorf("%s: %w", c.Op, fail)
	}
	return nil
}

func (r *Recorder) CreateNote(ctx context.Context, n note.Note) error {
	return r.record(ctx, Call{Op: "createNote", IDs: []string{n.ID}, Value: n})
}

func (r *Recorder) UpdateNoteField(ctx context.Context, field remote.Field, value any, ids []string) error {
	return r.record(ctx, Call{Op: "updateNoteField", Field: field, Value: value, IDs: ids})
}

func (r *Recorder) UpdateOrder(ctx context.Context, initialIndex, endIndex int) error {
	return r.record(ctx, Call{Op: "updateOrder", From: initialIndex, To: endIndex})
}

func (r *Recorder) DeleteNote(ctx context.Context, id string) error {
	return r.record(ctx, Call{Op: "deleteNote", IDs: []string{id}})
}

func (r *Recorder) AddLabel(ctx context.Context, noteID, labelID string) error {
	return r.record(ctx, Call{Op: "addLabel", IDs: []string{noteID}, Label: labelID})
}

func (r *Recorder) RemoveLabel(ctx context.Context, noteID, labelID string) error {
	return r.record(ctx, Call{Op: "removeLabel", IDs: []string{noteID}, Label: labelID})
}

func (r *Recorder) SyncOrder(ctx context.Context, order []string) error {
	return r.record(ctx, Call{Op: "syncOrder", Value: append([]string(nil), order...)})
}

func (r *Recorder) DeleteMedia(ctx context.Context, path string) error {
	return r.record(ctx, Call{Op: "deleteMedia", Value: path})
}
