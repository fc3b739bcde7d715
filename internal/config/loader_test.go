package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("got driver %q, want %q", cfg.Storage.Driver, DriverSQLite)
	}
	if cfg.Undo.Window != 6*time.Second || cfg.Undo.WindowNoUndo != 4*time.Second {
		t.Errorf("got undo windows %v/%v, want 6s/4s", cfg.Undo.Window, cfg.Undo.WindowNoUndo)
	}
	if cfg.Drag.Threshold != 5 || cfg.Drag.EdgeBand != 80 {
		t.Errorf("got drag threshold %d band %d, want 5 and 80", cfg.Drag.Threshold, cfg.Drag.EdgeBand)
	}
	if cfg.Drag.SwapInterval != 150*time.Millisecond {
		t.Errorf("got swap interval %v, want 150ms", cfg.Drag.SwapInterval)
	}
	if cfg.Session.UserID == "" {
		t.Error("session user should never be empty")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.json")
	if err != nil {
		t.Errorf("should not error on missing file: %v", err)
	}
	if cfg == nil {
		t.Fatal("should return default config")
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".local/share/notegrid/notes.db"); cfg.Storage.Path != want {
		t.Errorf("got storage path %q, want %q", cfg.Storage.Path, want)
	}
}

func TestLoadFrom_ValidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := []byte(`{
		"storage": {"driver": "sqlite3", "path": "~/notes.db"},
		"undo": {"window": "10s"},
		"drag": {"threshold": 8, "swapInterval": "200ms"},
		"session": {"userId": "ada"},
		"keymap": {"overrides": {"x": "trash"}},
		"ui": {"showFooter": false}
	}`)

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Storage.Driver != DriverSQLite3 {
		t.Errorf("got driver %q, want sqlite3", cfg.Storage.Driver)
	}
	home, _ := os.UserHomeDir()
	if cfg.Storage.Path != filepath.Join(home, "notes.db") {
		t.Errorf("storage path not expanded: %q", cfg.Storage.Path)
	}
	if cfg.Undo.Window != 10*time.Second {
		t.Errorf("got undo window %v, want 10s", cfg.Undo.Window)
	}
	if cfg.Drag.Threshold != 8 || cfg.Drag.SwapInterval != 200*time.Millisecond {
		t.Errorf("drag not merged: %+v", cfg.Drag)
	}
	if cfg.Session.UserID != "ada" {
		t.Errorf("got user %q, want ada", cfg.Session.UserID)
	}
	if cfg.Keymap.Overrides["x"] != "trash" {
		t.Errorf("override missing: %v", cfg.Keymap.Overrides)
	}
	if cfg.UI.ShowFooter {
		t.Error("showFooter should be false")
	}
	// Default values should still be present
	if cfg.Undo.WindowNoUndo != 4*time.Second {
		t.Errorf("got windowNoUndo %v, want default 4s", cfg.Undo.WindowNoUndo)
	}
	if !cfg.UI.Preview {
		t.Error("preview should still be enabled (default)")
	}
	if cfg.Drag.EdgeBand != 80 {
		t.Errorf("got edge band %d, want default 80", cfg.Drag.EdgeBand)
	}
}

func TestLoadFrom_BadDurationKeepsDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"drag": {"settle": "soon"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Drag.Settle != 250*time.Millisecond {
		t.Errorf("got settle %v, want 250ms", cfg.Drag.Settle)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte(`{invalid`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("should error on invalid JSON")
	}
}

func TestLoadFrom_UnknownDriver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"storage": {"driver": "postgres"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("should reject an unknown storage driver")
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input  string
		expect string
	}{
		{"~/.local/share/notegrid", filepath.Join(home, ".local/share/notegrid")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tc := range tests {
		got := ExpandPath(tc.input)
		if got != tc.expect {
			t.Errorf("ExpandPath(%q) = %q, want %q", tc.input, got, tc.expect)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Undo.Window = -1
	cfg.Drag.Threshold = 0
	cfg.Drag.HysteresisScale = -3
	cfg.UI.FrameInterval = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}

	// Bad values should be corrected
	if cfg.Undo.Window != 6*time.Second {
		t.Errorf("got %v, want 6s after validation", cfg.Undo.Window)
	}
	if cfg.Drag.Threshold != 5 {
		t.Errorf("got threshold %d, want 5 after validation", cfg.Drag.Threshold)
	}
	if cfg.Drag.HysteresisScale != 400 {
		t.Errorf("got hysteresis scale %v, want 400 after validation", cfg.Drag.HysteresisScale)
	}
	if cfg.UI.FrameInterval != 16*time.Millisecond {
		t.Errorf("got frame interval %v, want 16ms after validation", cfg.UI.FrameInterval)
	}
}
