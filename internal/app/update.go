package app

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/notegrid/internal/config"
	"github.com/marcus/notegrid/internal/event"
	"github.com/marcus/notegrid/internal/keymap"
	"github.com/marcus/notegrid/internal/mouse"
	"github.com/marcus/notegrid/internal/msg"
	"github.com/marcus/notegrid/internal/state"
	"github.com/marcus/notegrid/internal/ui"
)

// Hit region ids outside the note cards.
const (
	regionCard     = "card"
	regionTab      = "tab"
	regionUndo     = "toast-undo"
	regionTabWidth = 14
)

// Update handles all messages.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		m.help.Width = message.Width
		m.resizeEditor()

	case frameMsg:
		m.frame(time.Time(message))
		cmds = append(cmds, m.frameTick())

	case busMsg:
		cmds = append(cmds, m.handleEvent(event.Event(message)), m.waitForEvent())

	case msg.ToastMsg:
		m.showToast(message.Message, message.IsError, message.Duration)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(message))

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(message))
	}

	if m.ready {
		m.relayout()
	}
	if m.quitting {
		return m, tea.Quit
	}
	return m, tea.Batch(cmds...)
}

// frame advances the undo slot and the drag engine to now.
func (m *Model) frame(now time.Time) {
	m.coord.Tick(now)
	if m.toast != "" && !now.Before(m.toastExpiry) {
		m.toast = ""
	}
	if !m.drag.Active() {
		return
	}
	res := m.drag.Frame(now)
	if res.ScrollBy != 0 && m.grid.scrollUnits(res.ScrollBy) {
		m.drag.Invalidate()
	}
	if res.Swapped {
		m.relayout()
	}
}

func (m *Model) handleEvent(e event.Event) tea.Cmd {
	switch e.Type {
	case event.PersistFailed:
		m.logger.Warn("app: persist failed", "op", e.Action, "ids", e.NoteIDs, "error", e.Err)
		return msg.ShowError(fmt.Sprintf("Couldn't save (%s)", e.Action), e.Err, toastWindow)
	case event.ConfigReloaded:
		if cfg, ok := e.Data.(*config.Config); ok {
			m.applyConfig(cfg)
		}
	}
	return nil
}

// applyConfig takes the hot-reloadable parts of a new configuration.
func (m *Model) applyConfig(cfg *config.Config) {
	m.cfg = cfg
	m.drag.SetConfig(dragConfig(cfg))
	m.grid.cellW, m.grid.cellH = cfg.UI.CellWidth, cfg.UI.CellHeight
	m.keymap.ApplyOverrides(cfg.Keymap.Overrides)
	m.showFooter = cfg.UI.ShowFooter
	m.logger.Info("app: config reloaded")
}

func (m *Model) handleKey(k tea.KeyMsg) tea.Cmd {
	ctx := m.context()
	command, ok := m.keymap.Lookup(k.String(), ctx)

	switch m.activeModal() {
	case ModalConfirm:
		if ok {
			return m.confirmCommand(command)
		}
		return nil
	case ModalEditor:
		if ok && command != keymap.CmdUndo {
			return m.editorCommand(command)
		}
		return m.updateEditor(k)
	case ModalPrompt:
		if ok && command != keymap.CmdUndo {
			return m.promptCommand(command)
		}
		return m.updatePrompt(k)
	case ModalHelp:
		m.showHelp = false
		return nil
	}

	if !ok {
		return nil
	}
	return m.runCommand(command)
}

func (m *Model) confirmCommand(command string) tea.Cmd {
	switch command {
	case keymap.CmdConfirm:
		return m.closeDialog(ui.ResultConfirm)
	case keymap.CmdCancel:
		return m.closeDialog(ui.ResultCancel)
	case keymap.CmdSwitchButton:
		m.dialog.SwitchFocus()
	case keymap.CmdQuit:
		m.quit()
	}
	return nil
}

func (m *Model) openDialog(kind confirmKind, d *ui.ConfirmDialog) {
	m.dialog = d
	m.dialogKind = kind
}

// closeDialog resolves the open dialog.
func (m *Model) closeDialog(res ui.Result) tea.Cmd {
	kind := m.dialogKind
	m.dialog = nil
	if res != ui.ResultConfirm {
		return nil
	}
	switch kind {
	case confirmDeleteForever:
		if err := m.coord.DeleteForever(m.cursorID); err != nil {
			return msg.ShowError("Delete", err, toastWindow)
		}
	case confirmEmptyTrash:
		if _, err := m.coord.EmptyTrash(); err != nil {
			return msg.ShowError("Empty trash", err, toastWindow)
		}
	case confirmQuit:
		m.quit()
	}
	return nil
}

// requestQuit quits, asking first while a pending change would be lost.
func (m *Model) requestQuit() {
	if m.undo.UnloadBlocked() {
		d := ui.NewConfirmDialog("Quit now?", "A change is still pending. Quitting now finalizes it and it can no longer be undone.")
		d.ConfirmLabel = " Quit "
		m.openDialog(confirmQuit, d)
		return
	}
	m.quit()
}

// quit closes the undo slot so pending finalizers run, then saves UI state.
func (m *Model) quit() {
	m.undo.Close()
	state.SetCursor(m.view, m.cursorID)
	if err := state.Save(); err != nil {
		m.logger.Warn("app: save state", "error", err)
	}
	m.quitting = true
}

func (m *Model) handleMouse(mm tea.MouseMsg) tea.Cmd {
	action := m.mouse.HandleMouse(mm)

	if m.dialog != nil {
		if action.Type == mouse.ActionClick && action.Region != nil {
			if res := m.dialog.Click(action.Region.ID); res != ui.ResultNone {
				return m.closeDialog(res)
			}
		}
		return nil
	}
	if m.activeModal() != ModalNone {
		return nil
	}

	switch action.Type {
	case mouse.ActionScrollUp, mouse.ActionScrollDown:
		m.grid.scrollRows(action.Delta)
		m.drag.Invalidate()

	case mouse.ActionClick, mouse.ActionDoubleClick:
		r := action.Region
		if r == nil {
			return nil
		}
		switch r.ID {
		case regionUndo:
			m.coord.Undo()
		case regionTab:
			m.setView(r.Data.(string))
		case regionCard:
			id := r.Data.(string)
			m.focus(id)
			if action.Type == mouse.ActionDoubleClick {
				m.drag.PointerUp(m.now())
				return m.openEditor(id)
			}
			if m.view != state.ViewTrash {
				px, py := m.grid.pointer(action.X, action.Y)
				if m.drag.PointerDown(id, px, py) {
					m.mouse.StartDrag(action.X, action.Y, id, 0)
				}
			}
		}

	case mouse.ActionDrag:
		m.drag.PointerMove(m.grid.pointer(action.X, action.Y))

	case mouse.ActionDragEnd:
		m.drag.PointerMove(m.grid.pointer(action.X, action.Y))
		m.drag.Frame(m.now())
		m.drag.PointerUp(m.now())
	}
	return nil
}

// focus moves the cursor to id when it is laid out.
func (m *Model) focus(id string) {
	for i, v := range m.grid.ids() {
		if v == id {
			m.setCursor(i)
			return
		}
	}
}

// registerHits rebuilds the hit map from the current layout. Later regions
// sit on top of earlier ones.
func (m *Model) registerHits() {
	hits := m.mouse.HitMap
	hits.Clear()

	for i, v := range []string{state.ViewNotes, state.ViewArchive, state.ViewTrash} {
		hits.AddRect(regionTab, 1+i*regionTabWidth, 0, regionTabWidth, 1, v)
	}

	for _, id := range m.grid.ids() {
		r, _ := m.grid.cellRect(id)
		top := max(r.Y, m.grid.top)
		bottom := min(r.Bottom(), m.grid.top+m.grid.height)
		if bottom <= top {
			continue
		}
		hits.AddRect(regionCard, r.X, top, r.W, bottom-top, id)
	}

	if rect, ok := m.undoButtonRect(); ok {
		hits.Add(regionUndo, rect, nil)
	}

	if m.dialog != nil {
		m.dialogX, m.dialogY = ui.CenterOffset(m.dialog.View(), m.width, m.height)
		m.dialog.Register(hits, m.dialogX, m.dialogY)
	}
}

// labelByName finds a label by case-insensitive name.
func (m *Model) labelByName(name string) (string, bool) {
	for _, l := range m.labels.List() {
		if strings.EqualFold(l.Name, name) {
			return l.ID, true
		}
	}
	return "", false
}
