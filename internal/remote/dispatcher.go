package remote

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/marcus/notegrid/internal/event"
	"github.com/marcus/notegrid/internal/note"
)

const (
	defaultCallTimeout = 10 * time.Second
	defaultMaxInFlight = 8
)

// Dispatcher issues remote calls without blocking the caller. Calls are not
// serialized against each other; two quick edits of one note may be in
// flight at once and the store of record applies them last-write-wins.
// Failures never roll back local state: they are logged and published as
// event.PersistFailed for the UI to surface.
type Dispatcher struct {
	store   Store
	bus     *event.Dispatcher
	logger  *slog.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	group  errgroup.Group
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithMaxInFlight bounds the number of calls running against the store.
func WithMaxInFlight(n int) Option {
	return func(disp *Dispatcher) {
		if n > 0 {
			disp.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// NewDispatcher creates a dispatcher for store. bus and logger may be nil.
func NewDispatcher(store Store, bus *event.Dispatcher, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		store:   store,
		bus:     bus,
		logger:  logger,
		timeout: defaultCallTimeout,
		ctx:     ctx,
		cancel:  cancel,
		sem:     semaphore.NewWeighted(defaultMaxInFlight),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Go runs call in the background under op's name.
func (d *Dispatcher) Go(op string, ids []string, call func(ctx context.Context) error) {
	d.publish(event.Event{Type: event.LoadingStart, Action: op, NoteIDs: ids})

	d.group.Go(func() error {
		err := d.run(call)
		d.publish(event.Event{Type: event.LoadingEnd, Action: op, NoteIDs: ids})
		if err != nil {
			d.logger.Error("remote: call failed", "op", op, "ids", ids, "error", err)
			d.publish(event.Event{Type: event.PersistFailed, Action: op, NoteIDs: ids, Err: err})
			return fmt.Errorf("%s: %w", op, err)
		}
		d.logger.Debug("remote: call done", "op", op, "ids", ids)
		return nil
	})
}

func (d *Dispatcher) run(call func(ctx context.Context) error) error {
	if err := d.sem.Acquire(d.ctx, 1); err != nil {
		return err
	}
	defer d.sem.Release(1)

	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()
	return call(ctx)
}

func (d *Dispatcher) publish(e event.Event) {
	if d.bus != nil {
		d.bus.Publish(e)
	}
}

// Wait blocks until every issued call has finished and returns the first
// failure, if any.
func (d *Dispatcher) Wait() error {
	return d.group.Wait()
}

// Shutdown waits for in-flight calls until ctx is done, then cancels the rest.
// It returns ctx's error when calls had to be cancelled and nil once every
// call has finished; individual failures were already published as
// event.PersistFailed.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

// CreateNote persists a new note.
func (d *Dispatcher) CreateNote(n note.Note) {
	d.Go("createNote", []string{n.ID}, func(ctx context.Context) error {
		return d.store.CreateNote(ctx, n)
	})
}

// UpdateNoteField persists one field on several notes.
func (d *Dispatcher) UpdateNoteField(field Field, value any, ids ...string) {
	d.Go("updateNoteField:"+string(field), ids, func(ctx context.Context) error {
		return d.store.UpdateNoteField(ctx, field, value, ids)
	})
}

// UpdateOrder persists a single move in the order.
func (d *Dispatcher) UpdateOrder(initialIndex, endIndex int) {
	d.Go("updateOrder", nil, func(ctx context.Context) error {
		return d.store.UpdateOrder(ctx, initialIndex, endIndex)
	})
}

// DeleteNote removes a note from the store of record.
func (d *Dispatcher) DeleteNote(id string) {
	d.Go("deleteNote", []string{id}, func(ctx context.Context) error {
		return d.store.DeleteNote(ctx, id)
	})
}

// AddLabel attaches a label remotely.
func (d *Dispatcher) AddLabel(noteID, labelID string) {
	d.Go("addLabel", []string{noteID}, func(ctx context.Context) error {
		return d.store.AddLabel(ctx, noteID, labelID)
	})
}

// RemoveLabel detaches a label remotely.
func (d *Dispatcher) RemoveLabel(noteID, labelID string) {
	d.Go("removeLabel", []string{noteID}, func(ctx context.Context) error {
		return d.store.RemoveLabel(ctx, noteID, labelID)
	})
}

// Change is one field write applied to a set of notes.
type Change struct {
	Field Field
	Value any
	IDs   []string
}

// UpdateFields persists several field writes and, when order is non-nil and
// the store supports it, the resulting order. Everything runs in one
// goroutine so the writes land in the given sequence.
func (d *Dispatcher) UpdateFields(op string, changes []Change, order []string) {
	var ids []string
	for _, c := range changes {
		for _, id := range c.IDs {
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	d.Go(op, ids, func(ctx context.Context) error {
		for _, c := range changes {
			if len(c.IDs) == 0 {
				continue
			}
			if err := d.store.UpdateNoteField(ctx, c.Field, c.Value, c.IDs); err != nil {
				return err
			}
		}
		if syncer, ok := d.store.(OrderSyncer); ok && order != nil {
			return syncer.SyncOrder(ctx, order)
		}
		return nil
	})
}

// DeleteMedia removes an uploaded file when the store owns media. Stores
// without media support make this a no-op.
func (d *Dispatcher) DeleteMedia(noteID, path string) {
	remover, ok := d.store.(MediaRemover)
	if !ok {
		return
	}
	d.Go("deleteMedia", []string{noteID}, func(ctx context.Context) error {
		return remover.DeleteMedia(ctx, path)
	})
}
