package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Views the note list can show.
const (
	ViewNotes    = "notes" // pinned and active
	ViewArchive  = "archive"
	ViewTrash    = "trash"
	defaultView  = ViewNotes
	stateFile    = "state.json"
	stateDirName = "notegrid"
)

// State holds persistent user preferences.
type State struct {
	View string `json:"view"`

	// Cursor remembers the focused note per view.
	Cursor map[string]string `json:"cursor,omitempty"`

	PreviewHidden bool `json:"previewHidden,omitempty"`
}

var (
	current *State
	mu      sync.RWMutex
	path    string
)

// Init loads state from the default location.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return InitWithDir(filepath.Join(home, ".config", stateDirName))
}

// InitWithDir loads state from a specified directory.
// This is primarily for testing to avoid reading real user state.
func InitWithDir(dir string) error {
	path = filepath.Join(dir, stateFile)
	return Load()
}

// Load reads state from disk.
func Load() error {
	mu.Lock()
	defer mu.Unlock()

	current = &State{View: defaultView}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no state file yet, use defaults
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, current); err != nil {
		return err
	}
	if !validView(current.View) {
		current.View = defaultView
	}
	return nil
}

// Save writes state to disk.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil || path == "" {
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func validView(v string) bool {
	switch v {
	case ViewNotes, ViewArchive, ViewTrash:
		return true
	}
	return false
}

// GetView returns the saved view.
func GetView() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return defaultView
	}
	return current.View
}

// SetView saves the view. Unknown views are ignored.
func SetView(view string) error {
	if !validView(view) {
		return nil
	}
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.View = view
	mu.Unlock()
	return Save()
}

// GetCursor returns the note last focused in view, or "".
func GetCursor(view string) string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return ""
	}
	return current.Cursor[view]
}

// SetCursor remembers the focused note for view. It does not write to disk;
// the cursor moves too often for that and is saved with the next Save.
func SetCursor(view, id string) {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = &State{View: defaultView}
	}
	if current.Cursor == nil {
		current.Cursor = make(map[string]string)
	}
	if id == "" {
		delete(current.Cursor, view)
		return
	}
	current.Cursor[view] = id
}

// GetPreviewHidden reports whether the preview pane was closed.
func GetPreviewHidden() bool {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return false
	}
	return current.PreviewHidden
}

// SetPreviewHidden saves the preview pane visibility.
func SetPreviewHidden(hidden bool) error {
	mu.Lock()
	if current == nil {
		current = &State{View: defaultView}
	}
	current.PreviewHidden = hidden
	mu.Unlock()
	return Save()
}
