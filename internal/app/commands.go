package app

import (
	"fmt"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/notegrid/internal/keymap"
	"github.com/marcus/notegrid/internal/msg"
	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/state"
	"github.com/marcus/notegrid/internal/ui"
)

// runCommand executes a list-context command.
func (m *Model) runCommand(command string) tea.Cmd {
	switch command {
	case keymap.CmdQuit:
		m.requestQuit()
		return nil
	case keymap.CmdUndo:
		m.coord.Undo()
		return nil
	case keymap.CmdCursorDown:
		m.setCursor(m.cursorIdx + 1)
		return nil
	case keymap.CmdCursorUp:
		m.setCursor(m.cursorIdx - 1)
		return nil
	case keymap.CmdCursorTop:
		m.setCursor(0)
		return nil
	case keymap.CmdCursorBottom:
		m.setCursor(len(m.grid.ids()) - 1)
		return nil
	case keymap.CmdViewNotes:
		m.setView(state.ViewNotes)
		return nil
	case keymap.CmdViewArchive:
		m.setView(state.ViewArchive)
		return nil
	case keymap.CmdViewTrash:
		m.setView(state.ViewTrash)
		return nil
	case keymap.CmdTogglePreview:
		m.showPreview = !m.showPreview
		if err := state.SetPreviewHidden(!m.showPreview); err != nil {
			m.logger.Warn("app: save preview state", "error", err)
		}
		return nil
	case keymap.CmdToggleFooter:
		m.showFooter = !m.showFooter
		return nil
	case keymap.CmdHelp:
		m.showHelp = true
		return nil
	case keymap.CmdClearSelection:
		m.sel.Clear()
		return nil
	case keymap.CmdNew:
		if m.view != state.ViewNotes {
			return nil
		}
		return m.openEditor("")
	case keymap.CmdEmptyTrash:
		return m.confirmEmptyTrash()
	}

	// Everything below acts on the focused note or the selection.
	n, ok := m.cursorNote()
	if !ok {
		return nil
	}
	var err error
	switch command {
	case keymap.CmdEdit:
		if n.IsTrash {
			return nil
		}
		return m.openEditor(n.ID)
	case keymap.CmdSelect:
		m.sel.Toggle(m.store.State(), n.ID)
	case keymap.CmdPin:
		err = m.togglePin(n)
	case keymap.CmdArchive:
		err = m.toggleArchive(n)
	case keymap.CmdTrash:
		if n.IsTrash {
			return nil
		}
		err = m.coord.Trash(n.ID)
	case keymap.CmdRestore:
		if !n.IsTrash {
			return nil
		}
		err = m.coord.Restore(n.ID)
	case keymap.CmdDeleteForever:
		if !n.IsTrash {
			return nil
		}
		d := ui.NewConfirmDialog("Delete forever?", fmt.Sprintf("%q will be deleted. This cannot be undone.", titleOf(n)))
		d.ConfirmLabel = " Delete "
		d.Danger = true
		m.openDialog(confirmDeleteForever, d)
	case keymap.CmdColor:
		err = m.cycleColor(n)
	case keymap.CmdBackground:
		err = m.cycleBackground(n)
	case keymap.CmdLabel:
		return m.openPrompt(n.ID)
	case keymap.CmdAddImage:
		_, err = m.coord.AddImage(n.ID)
	case keymap.CmdRemoveImage:
		if len(n.Images) == 0 {
			return nil
		}
		err = m.coord.RemoveImage(n.ID, n.Images[len(n.Images)-1].ID)
	case keymap.CmdMoveUp, keymap.CmdMoveDown:
		err = m.moveBy(n, command == keymap.CmdMoveDown)
	case keymap.CmdYank:
		return m.yank(n)
	}
	if err != nil {
		m.logger.Error("app: command failed", "command", command, "id", n.ID, "error", err)
		return msg.ShowError(command, err, toastWindow)
	}
	m.sel.Prune(m.store.State())
	return nil
}

func (m *Model) togglePin(n note.Note) error {
	if m.sel.Len() > 0 {
		entries := m.sel.Take()
		pinned := slices.ContainsFunc(entries, func(e note.Entry) bool { return !e.IsPinned })
		return m.coord.BatchPin(entries, pinned)
	}
	if n.IsPinned {
		return m.coord.Unpin(n.ID)
	}
	return m.coord.Pin(n.ID)
}

func (m *Model) toggleArchive(n note.Note) error {
	if n.IsTrash {
		return nil
	}
	if m.sel.Len() > 0 {
		return m.coord.BatchArchive(m.sel.Take(), m.view != state.ViewArchive)
	}
	if n.IsArchived {
		return m.coord.Unarchive(n.ID)
	}
	return m.coord.Archive(n.ID)
}

func (m *Model) cycleColor(n note.Note) error {
	next := cycle(note.Colors, n.Color)
	if m.sel.Len() > 0 {
		return m.coord.BatchColor(m.sel.Take(), next)
	}
	return m.coord.SetColor(n.ID, next)
}

func (m *Model) cycleBackground(n note.Note) error {
	next := cycle(note.Backgrounds, n.Background)
	if m.sel.Len() > 0 {
		return m.coord.BatchBackground(m.sel.Take(), next)
	}
	return m.coord.SetBackground(n.ID, next)
}

// cycle returns the token after cur, wrapping. Unknown tokens start over.
func cycle(tokens []string, cur string) string {
	i := slices.Index(tokens, cur)
	return tokens[(i+1)%len(tokens)]
}

// moveBy swaps the note with its neighbor in the view.
func (m *Model) moveBy(n note.Note, down bool) error {
	ids := m.grid.ids()
	i := slices.Index(ids, n.ID)
	j := i - 1
	if down {
		j = i + 1
	}
	if i < 0 || j < 0 || j >= len(ids) {
		return nil
	}
	target := m.store.State().IndexOf(ids[j])
	moved, err := m.coord.Move(n.ID, target)
	if err != nil || !moved {
		return err
	}
	m.cursorIdx = j
	return nil
}

func (m *Model) confirmEmptyTrash() tea.Cmd {
	count := len(m.store.State().InSection(note.SectionTrash))
	if count == 0 {
		return msg.ShowToast("Trash is empty", toastWindow)
	}
	d := ui.NewConfirmDialog("Empty trash?", fmt.Sprintf("%d notes will be deleted forever.", count))
	d.ConfirmLabel = " Empty "
	d.Danger = true
	m.openDialog(confirmEmptyTrash, d)
	return nil
}

// yank copies the note as markdown to the system clipboard.
func (m *Model) yank(n note.Note) tea.Cmd {
	if err := clipboard.WriteAll(noteMarkdown(n, m.labels)); err != nil {
		return msg.ShowError("Copy failed", err, toastWindow)
	}
	return msg.ShowToast("Copied to clipboard", 2*time.Second)
}

func titleOf(n note.Note) string {
	if n.Title == "" {
		return "Untitled"
	}
	return n.Title
}
