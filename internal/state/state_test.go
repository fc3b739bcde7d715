package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// withTempState points the package at a temp dir and restores it afterwards.
func withTempState(t *testing.T) string {
	t.Helper()
	originalPath := path
	originalCurrent := current
	t.Cleanup(func() {
		path = originalPath
		current = originalCurrent
	})

	dir := t.TempDir()
	if err := InitWithDir(dir); err != nil {
		t.Fatalf("InitWithDir() failed: %v", err)
	}
	return dir
}

func TestInit(t *testing.T) {
	withTempState(t)

	if current == nil {
		t.Fatal("current state should be initialized")
	}
	if current.View != ViewNotes {
		t.Errorf("default View = %q, want %q", current.View, ViewNotes)
	}
}

func TestLoad_ExistingFile(t *testing.T) {
	dir := withTempState(t)

	content := []byte(`{"view": "trash", "cursor": {"trash": "n1"}, "previewHidden": true}`)
	if err := os.WriteFile(filepath.Join(dir, "state.json"), content, 0644); err != nil {
		t.Fatal(err)
	}
	if err := Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if got := GetView(); got != ViewTrash {
		t.Errorf("GetView() = %q, want trash", got)
	}
	if got := GetCursor(ViewTrash); got != "n1" {
		t.Errorf("GetCursor(trash) = %q, want n1", got)
	}
	if !GetPreviewHidden() {
		t.Error("GetPreviewHidden() = false, want true")
	}
}

func TestLoad_UnknownViewFallsBack(t *testing.T) {
	dir := withTempState(t)

	if err := os.WriteFile(filepath.Join(dir, "state.json"), []byte(`{"view": "calendar"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Load(); err != nil {
		t.Fatal(err)
	}
	if got := GetView(); got != ViewNotes {
		t.Errorf("GetView() = %q, want notes", got)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := withTempState(t)

	if err := os.WriteFile(filepath.Join(dir, "state.json"), []byte(`{nope`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Load(); err == nil {
		t.Error("Load() should fail on invalid JSON")
	}
}

func TestSetView_Persists(t *testing.T) {
	dir := withTempState(t)

	if err := SetView(ViewArchive); err != nil {
		t.Fatalf("SetView() failed: %v", err)
	}
	if err := SetView("bogus"); err != nil {
		t.Fatalf("SetView(bogus) failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	var saved State
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	if saved.View != ViewArchive {
		t.Errorf("saved View = %q, want archive", saved.View)
	}
}

func TestCursor_SavedWithNextSave(t *testing.T) {
	dir := withTempState(t)

	SetCursor(ViewNotes, "n7")
	if _, err := os.Stat(filepath.Join(dir, "state.json")); !os.IsNotExist(err) {
		t.Error("SetCursor should not write to disk")
	}
	if err := Save(); err != nil {
		t.Fatal(err)
	}
	if err := Load(); err != nil {
		t.Fatal(err)
	}
	if got := GetCursor(ViewNotes); got != "n7" {
		t.Errorf("GetCursor(notes) = %q after reload, want n7", got)
	}

	SetCursor(ViewNotes, "")
	if got := GetCursor(ViewNotes); got != "" {
		t.Errorf("GetCursor(notes) = %q after clear, want empty", got)
	}
}

func TestPreviewHidden(t *testing.T) {
	withTempState(t)

	if GetPreviewHidden() {
		t.Error("preview should be visible by default")
	}
	if err := SetPreviewHidden(true); err != nil {
		t.Fatal(err)
	}
	if err := Load(); err != nil {
		t.Fatal(err)
	}
	if !GetPreviewHidden() {
		t.Error("preview hidden flag did not persist")
	}
}

func TestConcurrentAccess(t *testing.T) {
	withTempState(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				SetCursor(ViewNotes, "n")
			} else {
				_ = GetCursor(ViewNotes)
				_ = GetView()
			}
		}(i)
	}
	wg.Wait()
}
