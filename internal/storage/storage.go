// Package storage is the sqlite-backed store of record for notes.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/marcus/notegrid/internal/labels"
	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/remote"
)

// Driver names accepted by Open.
const (
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

var (
	// ErrUnknownField is returned for a field the schema has no column for.
	ErrUnknownField = errors.New("unknown note field")
	// ErrBadValue is returned when a field value has the wrong type.
	ErrBadValue = errors.New("bad field value")
	// ErrNoSuchPosition is returned by UpdateOrder for an out-of-range index.
	ErrNoSuchPosition = errors.New("no note at position")
)

// Store handles SQLite operations for notes.
type Store struct {
	db        *sql.DB
	sessionID string
	mediaRoot string // directory holding media/...; empty for in-memory databases
}

var (
	_ remote.Store        = (*Store)(nil)
	_ remote.OrderSyncer  = (*Store)(nil)
	_ remote.MediaRemover = (*Store)(nil)
)

// Open opens (creating if needed) the database at dbPath with the given
// driver. sessionID tags action log entries; empty falls back to "notegrid".
func Open(driver, dbPath, sessionID string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn(driver, dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: writers queue in the pool instead of failing with
	// SQLITE_BUSY, and an in-memory database is not split across connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if sessionID == "" {
		sessionID = "notegrid"
	}
	store := &Store{db: db, sessionID: sessionID}
	if dbPath != ":memory:" {
		store.mediaRoot = filepath.Dir(dbPath)
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func dsn(driver, dbPath string) string {
	if driver == DriverPure {
		return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	return dbPath + "?_busy_timeout=5000&_journal_mode=WAL"
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initSchema creates the tables and indexes if they don't exist.
// Positions are kept contiguous from 0; position 0 is the front of the order.
func (s *Store) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT 'Default',
    background TEXT NOT NULL DEFAULT 'DefaultBg',
    pinned INTEGER NOT NULL DEFAULT 0,
    archived INTEGER NOT NULL DEFAULT 0,
    trashed INTEGER NOT NULL DEFAULT 0,
    images TEXT NOT NULL DEFAULT '[]',
    checklist TEXT NOT NULL DEFAULT '[]',
    position INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_position ON notes(position);
CREATE TABLE IF NOT EXISTS labels (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS note_labels (
    note_id TEXT NOT NULL,
    label_id TEXT NOT NULL,
    PRIMARY KEY (note_id, label_id)
);
CREATE TABLE IF NOT EXISTS action_log (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    action_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    data TEXT NOT NULL,
    timestamp TEXT NOT NULL
);
`
	_, err := s.db.Exec(schema)
	return err
}

// CreateNote inserts n at the front of the order.
func (s *Store) CreateNote(ctx context.Context, n note.Note) error {
	images, err := json.Marshal(nonNil(n.Images))
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	checklist, err := json.Marshal(nonNil(n.ChecklistItems))
	if err != nil {
		return fmt.Errorf("marshal checklist: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE notes SET position = position + 1`); err != nil {
			return fmt.Errorf("shift positions: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notes (id, title, content, color, background, pinned, archived, trashed,
			                   images, checklist, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		`, n.ID, n.Title, n.Content, n.Color, n.Background,
			boolToInt(n.IsPinned), boolToInt(n.IsArchived), boolToInt(n.IsTrash),
			string(images), string(checklist),
			formatTime(n.CreatedAt), formatTime(n.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		for _, labelID := range n.Labels {
			if err := addLabelTx(ctx, tx, n.ID, labelID); err != nil {
				return err
			}
		}
		return s.logAction(ctx, tx, "create", n.ID, n)
	})
}

// UpdateNoteField sets one field on every note in ids.
func (s *Store) UpdateNoteField(ctx context.Context, field remote.Field, value any, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	column, arg, err := columnValue(field, value)
	if err != nil {
		return err
	}

	args := []any{arg, formatTime(time.Now())}
	for _, id := range ids {
		args = append(args, id)
	}
	query := fmt.Sprintf(`UPDATE notes SET %s = ?, updated_at = ? WHERE id IN (%s)`,
		column, placeholders(len(ids)))

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update %s: %w", field, err)
		}
		for _, id := range ids {
			if err := s.logAction(ctx, tx, "update:"+string(field), id, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateOrder moves the note at initialIndex to endIndex, shifting the notes
// in between by one.
func (s *Store) UpdateOrder(ctx context.Context, initialIndex, endIndex int) error {
	if initialIndex == endIndex {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, `SELECT id FROM notes WHERE position = ?`, initialIndex).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %d", ErrNoSuchPosition, initialIndex)
		}
		if err != nil {
			return fmt.Errorf("query position: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count); err != nil {
			return fmt.Errorf("count notes: %w", err)
		}
		if endIndex < 0 || endIndex >= count {
			return fmt.Errorf("%w: %d", ErrNoSuchPosition, endIndex)
		}

		if initialIndex < endIndex {
			_, err = tx.ExecContext(ctx, `UPDATE notes SET position = position - 1 WHERE position > ? AND position <= ?`, initialIndex, endIndex)
		} else {
			_, err = tx.ExecContext(ctx, `UPDATE notes SET position = position + 1 WHERE position >= ? AND position < ?`, endIndex, initialIndex)
		}
		if err != nil {
			return fmt.Errorf("shift positions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE notes SET position = ? WHERE id = ?`, endIndex, id); err != nil {
			return fmt.Errorf("move note: %w", err)
		}
		return s.logAction(ctx, tx, "reorder", id, map[string]int{"from": initialIndex, "to": endIndex})
	})
}

// SyncOrder rewrites every position to match order. Ids missing from the
// database are skipped.
func (s *Store) SyncOrder(ctx context.Context, order []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE notes SET position = ? WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()
		for i, id := range order {
			if _, err := stmt.ExecContext(ctx, i, id); err != nil {
				return fmt.Errorf("set position of %s: %w", id, err)
			}
		}
		return nil
	})
}

// DeleteNote removes a note permanently and closes the gap in positions.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var pos int
		err := tx.QueryRowContext(ctx, `SELECT position FROM notes WHERE id = ?`, id).Scan(&pos)
		if errors.Is(err, sql.ErrNoRows) {
			return nil // already gone
		}
		if err != nil {
			return fmt.Errorf("query note: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete note: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM note_labels WHERE note_id = ?`, id); err != nil {
			return fmt.Errorf("delete note labels: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE notes SET position = position - 1 WHERE position > ?`, pos); err != nil {
			return fmt.Errorf("shift positions: %w", err)
		}
		return s.logAction(ctx, tx, "delete", id, nil)
	})
}

// AddLabel attaches labelID to a note.
func (s *Store) AddLabel(ctx context.Context, noteID, labelID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := addLabelTx(ctx, tx, noteID, labelID); err != nil {
			return err
		}
		return s.logAction(ctx, tx, "label:add", noteID, labelID)
	})
}

// RemoveLabel detaches labelID from a note.
func (s *Store) RemoveLabel(ctx context.Context, noteID, labelID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM note_labels WHERE note_id = ? AND label_id = ?`, noteID, labelID); err != nil {
			return fmt.Errorf("remove label: %w", err)
		}
		return s.logAction(ctx, tx, "label:remove", noteID, labelID)
	})
}

func addLabelTx(ctx context.Context, tx *sql.Tx, noteID, labelID string) error {
	_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO note_labels (note_id, label_id) VALUES (?, ?)`, noteID, labelID)
	if err != nil {
		return fmt.Errorf("add label: %w", err)
	}
	return nil
}

// DeleteMedia removes an uploaded file under the media directory. Missing
// files are not an error.
func (s *Store) DeleteMedia(ctx context.Context, path string) error {
	if s.mediaRoot == "" {
		return nil
	}
	rel := filepath.Clean(filepath.FromSlash(path))
	if !strings.HasPrefix(rel, "media"+string(filepath.Separator)) {
		return fmt.Errorf("media path outside media dir: %s", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.mediaRoot, rel))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove media: %w", err)
	}
	return nil
}

// CreateLabel registers a label.
func (s *Store) CreateLabel(ctx context.Context, l labels.Label) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO labels (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`, l.ID, l.Name)
	if err != nil {
		return fmt.Errorf("insert label: %w", err)
	}
	return nil
}

// ListLabels returns every registered label.
func (s *Store) ListLabels(ctx context.Context) ([]labels.Label, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM labels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()

	var out []labels.Label
	for rows.Next() {
		var l labels.Label
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LoadState reads every note in position order.
func (s *Store) LoadState(ctx context.Context) (note.State, error) {
	notes, err := s.queryNotes(ctx)
	if err != nil {
		return note.State{}, err
	}
	memberships, err := s.queryMemberships(ctx)
	if err != nil {
		return note.State{}, err
	}
	for i := range notes {
		notes[i].Labels = memberships[notes[i].ID]
	}
	return note.NewState(notes)
}

func (s *Store) queryNotes(ctx context.Context) ([]note.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, color, background, pinned, archived, trashed,
		       images, checklist, created_at, updated_at
		FROM notes ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []note.Note
	for rows.Next() {
		var n note.Note
		var pinned, archived, trashed int
		var images, checklist, createdAt, updatedAt string

		err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Color, &n.Background,
			&pinned, &archived, &trashed, &images, &checklist, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}

		n.IsPinned = pinned == 1
		n.IsArchived = archived == 1
		n.IsTrash = trashed == 1
		if err := json.Unmarshal([]byte(images), &n.Images); err != nil {
			return nil, fmt.Errorf("decode images of %s: %w", n.ID, err)
		}
		if err := json.Unmarshal([]byte(checklist), &n.ChecklistItems); err != nil {
			return nil, fmt.Errorf("decode checklist of %s: %w", n.ID, err)
		}
		n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		n.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *Store) queryMemberships(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT note_id, label_id FROM note_labels ORDER BY note_id, label_id`)
	if err != nil {
		return nil, fmt.Errorf("query note labels: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var noteID, labelID string
		if err := rows.Scan(&noteID, &labelID); err != nil {
			return nil, fmt.Errorf("scan note label: %w", err)
		}
		out[noteID] = append(out[noteID], labelID)
	}
	return out, rows.Err()
}

// withTx runs fn in a transaction, committing on success.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// logAction writes an entry to the action_log table.
func (s *Store) logAction(ctx context.Context, tx *sql.Tx, actionType, entityID string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal action data: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO action_log (id, session_id, action_type, entity_id, data, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, "al-"+uuid.NewString(), s.sessionID, actionType, entityID, string(b), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("insert action log: %w", err)
	}
	return nil
}

// columnValue maps a field and its value to a column and a driver value.
func columnValue(field remote.Field, value any) (string, any, error) {
	switch field {
	case remote.FieldPinned, remote.FieldArchived, remote.FieldTrash:
		b, ok := value.(bool)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s wants bool, got %T", ErrBadValue, field, value)
		}
		column := map[remote.Field]string{
			remote.FieldPinned:   "pinned",
			remote.FieldArchived: "archived",
			remote.FieldTrash:    "trashed",
		}[field]
		return column, boolToInt(b), nil

	case remote.FieldColor, remote.FieldBackground, remote.FieldTitle, remote.FieldContent:
		str, ok := value.(string)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s wants string, got %T", ErrBadValue, field, value)
		}
		return string(field), str, nil

	case remote.FieldImages:
		imgs, ok := value.([]note.Image)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s wants []note.Image, got %T", ErrBadValue, field, value)
		}
		b, err := json.Marshal(nonNil(imgs))
		return "images", string(b), err

	case remote.FieldChecklist:
		items, ok := value.([]note.ChecklistItem)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s wants []note.ChecklistItem, got %T", ErrBadValue, field, value)
		}
		b, err := json.Marshal(nonNil(items))
		return "checklist", string(b), err
	}
	return "", nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// boolToInt converts a bool to an int for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
