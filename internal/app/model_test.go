package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/notegrid/internal/config"
	"github.com/marcus/notegrid/internal/coordinator"
	"github.com/marcus/notegrid/internal/event"
	"github.com/marcus/notegrid/internal/keymap"
	"github.com/marcus/notegrid/internal/labels"
	"github.com/marcus/notegrid/internal/msg"
	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/remote"
	"github.com/marcus/notegrid/internal/remote/remotetest"
	"github.com/marcus/notegrid/internal/state"
	"github.com/marcus/notegrid/internal/undo"
)

type harness struct {
	t      *testing.T
	m      Model
	store  *note.Store
	rec    *remotetest.Recorder
	remote *remote.Dispatcher
	labels *labels.Registry
	now    time.Time
}

func newHarness(t *testing.T, notes ...note.Note) *harness {
	t.Helper()
	require.NoError(t, state.InitWithDir(t.TempDir()))

	st, err := note.NewState(notes)
	require.NoError(t, err)
	store, err := note.NewStore(st, nil)
	require.NoError(t, err)

	h := &harness{
		t:      t,
		store:  store,
		rec:    &remotetest.Recorder{},
		labels: labels.NewRegistry(labels.Label{ID: "l1", Name: "work"}),
		now:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	h.labels.Recount(st)
	h.remote = remote.NewDispatcher(h.rec, nil, nil)

	seq := 0
	newID := func() string {
		seq++
		return fmt.Sprintf("gen-%d", seq)
	}
	clock := func() time.Time { return h.now }
	u := undo.New()
	coord := coordinator.New(coordinator.Config{
		Store:  store,
		Undo:   u,
		Remote: h.remote,
		Labels: h.labels,
		UserID: "u1",
		Now:    clock,
		NewID:  newID,
	})

	cfg := config.Default()
	cfg.UI.Preview = false
	h.m = New(Options{
		Config: cfg,
		Store:  store,
		Coord:  coord,
		Undo:   u,
		Labels: h.labels,
		NewID:  newID,
		Now:    clock,
	})
	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

// send feeds messages through Update. Returned commands are dropped.
func (h *harness) send(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, message := range msgs {
		var next tea.Model
		next, cmd = h.m.Update(message)
		h.m = next.(Model)
	}
	return cmd
}

func (h *harness) keys(keys ...string) {
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *harness) press(x, y int) {
	h.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func (h *harness) order() []string {
	return h.store.State().Order
}

func (h *harness) get(id string) note.Note {
	h.t.Helper()
	n, ok := h.store.State().Get(id)
	require.True(h.t, ok, "note %s missing", id)
	return n
}

func (h *harness) ops() []string {
	h.t.Helper()
	require.NoError(h.t, h.remote.Wait())
	return h.rec.Ops()
}

func abc() []note.Note {
	return []note.Note{{ID: "A", Title: "alpha"}, {ID: "B", Title: "bravo"}, {ID: "C", Title: "charlie"}}
}

func TestPinAndUndoKeys(t *testing.T) {
	h := newHarness(t, abc()...)
	assert.Equal(t, "A", h.m.cursorID)

	h.keys("j", "p")
	assert.True(t, h.get("B").IsPinned)
	assert.Equal(t, []string{"B", "A", "C"}, h.order())
	assert.Equal(t, "B", h.m.cursorID, "cursor follows the pinned note")
	assert.Equal(t, rowHeader, h.m.grid.rows[0].kind)

	h.keys("u")
	assert.False(t, h.get("B").IsPinned)
	assert.Equal(t, []string{"A", "B", "C"}, h.order())
	assert.Contains(t, h.ops(), "updateNoteField")
}

func TestViewSwitchingKeepsCursorPerView(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("j", "a")
	require.True(t, h.get("B").IsArchived)

	h.keys("2")
	assert.Equal(t, state.ViewArchive, h.m.view)
	assert.Equal(t, []string{"B"}, h.m.grid.ids())
	assert.Equal(t, "B", h.m.cursorID)

	h.keys("3")
	assert.Equal(t, state.ViewTrash, h.m.view)
	assert.Empty(t, h.m.grid.ids())
	assert.Contains(t, h.m.View(), "Trash is empty.")

	h.keys("1")
	assert.Equal(t, state.ViewNotes, h.m.view)
	assert.Equal(t, []string{"A", "C"}, h.m.grid.ids())
	assert.Equal(t, state.ViewNotes, state.GetView())
}

func TestBatchArchiveFromSelection(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys(" ", "j", " ")
	assert.Equal(t, 2, h.m.sel.Len())
	assert.Contains(t, h.m.View(), "2 selected")

	h.keys("a")
	assert.True(t, h.get("A").IsArchived)
	assert.True(t, h.get("B").IsArchived)
	assert.False(t, h.get("C").IsArchived)
	assert.Equal(t, 0, h.m.sel.Len(), "batch consumes the selection")
	assert.Equal(t, []string{"C"}, h.m.grid.ids())

	h.keys("u")
	assert.False(t, h.get("A").IsArchived)
	assert.False(t, h.get("B").IsArchived)
	assert.Equal(t, []string{"A", "B", "C"}, h.order())
}

func TestClearSelection(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys(" ", "j", " ", "esc")
	assert.Equal(t, 0, h.m.sel.Len())
}

func TestDeleteForeverAsksFirst(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("d", "3")
	require.Equal(t, []string{"A"}, h.m.grid.ids())

	h.keys("D")
	require.Equal(t, ModalConfirm, h.m.activeModal())
	h.keys("esc")
	assert.Equal(t, ModalNone, h.m.activeModal())
	h.get("A")

	h.keys("D", "enter")
	_, ok := h.store.State().Get("A")
	assert.False(t, ok)
	assert.Contains(t, h.ops(), "deleteNote")
}

func TestEmptyTrashDialog(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("d", "d", "3")
	require.Len(t, h.m.grid.ids(), 2)

	h.keys("E")
	require.NotNil(t, h.m.dialog)
	assert.True(t, h.m.dialog.Danger)
	assert.Contains(t, h.m.View(), "Empty trash?")

	h.keys("enter")
	assert.Nil(t, h.m.dialog)
	assert.Equal(t, []string{"C"}, h.order())
	assert.Empty(t, h.m.grid.ids())
}

func TestEmptyTrashWhenEmptyShowsToast(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("3")
	cmd := h.m.runCommand(keymap.CmdEmptyTrash)
	require.NotNil(t, cmd)
	toast, ok := cmd().(msg.ToastMsg)
	require.True(t, ok)
	assert.Equal(t, "Trash is empty", toast.Message)
	assert.Nil(t, h.m.dialog)
}

func TestQuitBlockedWhileImageRemovalPending(t *testing.T) {
	h := newHarness(t, note.Note{ID: "A", Images: []note.Image{{ID: "i1", URL: "media/u1/A/i1"}}})

	h.keys("I")
	assert.Empty(t, h.get("A").Images)
	require.True(t, h.m.undo.UnloadBlocked())

	h.keys("q")
	require.Equal(t, ModalConfirm, h.m.activeModal())
	assert.False(t, h.m.quitting)
	h.keys("esc")
	assert.False(t, h.m.quitting)
	assert.NotContains(t, h.ops(), "deleteMedia")

	h.keys("q")
	cmd := h.send(keyMsg("enter"))
	assert.True(t, h.m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Contains(t, h.ops(), "deleteMedia", "quitting finalizes the pending removal")
}

func TestQuitWithoutPendingChange(t *testing.T) {
	h := newHarness(t, abc()...)
	cmd := h.send(keyMsg("q"))
	assert.True(t, h.m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEditorCreatesNote(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("n")
	require.Equal(t, ModalEditor, h.m.activeModal())

	h.keys("Groceries", "tab")
	h.m.editContent.SetValue("for the week\n[ ] milk\n[x] eggs")
	h.keys("ctrl+s")
	require.Equal(t, ModalNone, h.m.activeModal())

	require.Equal(t, 4, h.store.State().Len())
	n := h.get(h.m.cursorID)
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "for the week", n.Content)
	require.Len(t, n.ChecklistItems, 2)
	assert.Equal(t, "milk", n.ChecklistItems[0].Content)
	assert.True(t, n.ChecklistItems[1].IsCompleted)
	assert.Contains(t, h.ops(), "createNote")
}

func TestEditorEmptyNewNoteIsDiscarded(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("n", "ctrl+s")
	assert.Equal(t, 3, h.store.State().Len())
}

func TestEditorEditsExistingNote(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("enter")
	require.Equal(t, ModalEditor, h.m.activeModal())
	assert.Equal(t, "alpha", h.m.editTitle.Value())

	h.m.editTitle.SetValue("alpha two")
	h.keys("ctrl+s")
	assert.Equal(t, "alpha two", h.get("A").Title)
}

func TestEditorCancel(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("enter")
	h.m.editTitle.SetValue("changed")
	h.keys("esc")
	assert.Equal(t, ModalNone, h.m.activeModal())
	assert.Equal(t, "alpha", h.get("A").Title)
}

func TestLabelPromptCreatesAndToggles(t *testing.T) {
	h := newHarness(t, abc()...)
	var created []labels.Label
	h.m.createLabel = func(l labels.Label) error {
		created = append(created, l)
		return nil
	}

	h.keys("l")
	require.Equal(t, ModalPrompt, h.m.activeModal())
	h.keys("errands", "enter")
	require.Len(t, created, 1)
	assert.Equal(t, "errands", created[0].Name)
	assert.Equal(t, []string{created[0].ID}, h.get("A").Labels)
	assert.Equal(t, "errands", h.labels.Name(created[0].ID))

	h.keys("l", "WORK", "enter")
	assert.True(t, h.get("A").HasLabel("l1"), "names match case-insensitively")

	h.keys("l", "work", "enter")
	assert.False(t, h.get("A").HasLabel("l1"))
	assert.Len(t, created, 1)
}

func TestLabelPromptCreateFailure(t *testing.T) {
	h := newHarness(t, abc()...)
	h.m.createLabel = func(labels.Label) error { return errors.New("offline") }

	h.keys("l", "errands")
	cmd := h.send(keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.Empty(t, h.get("A").Labels)
	assert.Len(t, h.labels.List(), 1)
}

func TestColorAndBackgroundCycle(t *testing.T) {
	h := newHarness(t, abc()...)
	before := h.get("A")
	h.keys("c")
	assert.Equal(t, cycle(note.Colors, before.Color), h.get("A").Color)
	h.keys("b")
	assert.Equal(t, cycle(note.Backgrounds, before.Background), h.get("A").Background)
}

func TestMoveKeysReorder(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("J")
	assert.Equal(t, []string{"B", "A", "C"}, h.order())
	assert.Equal(t, "A", h.m.cursorID)
	assert.Equal(t, 1, h.m.cursorIdx)

	h.keys("K", "K")
	assert.Equal(t, []string{"A", "B", "C"}, h.order())
}

func TestMouseDragReorders(t *testing.T) {
	h := newHarness(t, abc()...)
	a, ok := h.m.grid.cellRect("A")
	require.True(t, ok)
	c, ok := h.m.grid.cellRect("C")
	require.True(t, ok)
	x := a.X + 2
	overC := c.Y + c.H/2

	h.press(x, a.Y+1)
	h.send(tea.MouseMsg{X: x, Y: overC, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	require.True(t, h.m.drag.Active())

	h.send(frameMsg(h.now))
	assert.Equal(t, []string{"B", "C", "A"}, h.order(), "swap happens during the drag")

	h.send(tea.MouseMsg{X: x, Y: overC, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	require.NoError(t, h.remote.Wait())

	var moves []remotetest.Call
	for _, call := range h.rec.Calls() {
		if call.Op == "updateOrder" {
			moves = append(moves, call)
		}
	}
	require.Len(t, moves, 1, "one commit per drag")
	assert.Equal(t, 0, moves[0].From)
	assert.Equal(t, 2, moves[0].To)

	h.now = h.now.Add(time.Second)
	h.send(frameMsg(h.now))
	assert.False(t, h.m.drag.Active(), "settle window ends")
}

func TestMouseDragDisabledInTrash(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("d", "d", "3")
	r, ok := h.m.grid.cellRect(h.m.grid.ids()[0])
	require.True(t, ok)
	h.press(r.X+2, r.Y+1)
	assert.False(t, h.m.drag.Active())
}

func TestTabClickSwitchesView(t *testing.T) {
	h := newHarness(t, abc()...)
	h.press(1+regionTabWidth+2, 0)
	assert.Equal(t, state.ViewArchive, h.m.view)
}

func TestUndoButtonClick(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("p")
	require.True(t, h.get("A").IsPinned)

	rect, ok := h.m.undoButtonRect()
	require.True(t, ok)
	assert.Contains(t, h.m.View(), "Undo")

	h.press(rect.X+1, rect.Y)
	assert.False(t, h.get("A").IsPinned)
	assert.False(t, h.m.undo.Active())
}

func TestUndoExpiresOnFrame(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("p")
	require.True(t, h.m.undo.Active())

	h.now = h.now.Add(time.Minute)
	h.send(frameMsg(h.now))
	assert.False(t, h.m.undo.Active())

	h.keys("u")
	assert.True(t, h.get("A").IsPinned, "expired slot cannot undo")
}

func TestPersistFailedShowsErrorToast(t *testing.T) {
	h := newHarness(t, abc()...)
	cmd := h.m.handleEvent(event.Event{
		Type:   event.PersistFailed,
		Action: "updateOrder",
		Err:    errors.New("network down"),
	})
	require.NotNil(t, cmd)
	h.send(cmd())

	assert.True(t, h.m.toastIsError)
	assert.Equal(t, "Couldn't save (updateOrder): network down", h.m.toast)
	box, undoX, ok := h.m.renderToast()
	require.True(t, ok)
	assert.Equal(t, -1, undoX)
	assert.Contains(t, box, "network down")
}

func TestConfigReloadApplies(t *testing.T) {
	h := newHarness(t, abc()...)
	cfg := config.Default()
	cfg.UI.ShowFooter = false
	cfg.Keymap.Overrides = map[string]string{"x": "trash"}

	h.m.handleEvent(event.Event{Type: event.ConfigReloaded, Data: cfg})
	assert.False(t, h.m.showFooter)

	h.keys("x")
	assert.True(t, h.get("A").IsTrash)
}

func TestSubscribeBridgesBus(t *testing.T) {
	h := newHarness(t, abc()...)
	bus := event.New()
	unsubscribe := h.m.Subscribe(bus)
	defer unsubscribe()

	bus.Publish(event.Event{Type: event.LoadingStart})
	assert.EqualValues(t, 1, h.m.loading.Load())
	assert.Contains(t, h.m.View(), "saving")
	bus.Publish(event.Event{Type: event.LoadingEnd})
	assert.EqualValues(t, 0, h.m.loading.Load())

	bus.Publish(event.Event{Type: event.PersistFailed, Action: "deleteNote"})
	select {
	case e := <-h.m.events:
		assert.Equal(t, "deleteNote", e.Action)
	default:
		t.Fatal("event not forwarded")
	}
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	h := newHarness(t, abc()...)
	h.keys("?")
	assert.Equal(t, ModalHelp, h.m.activeModal())
	assert.Contains(t, h.m.View(), "Keys")
	h.keys("j")
	assert.Equal(t, ModalNone, h.m.activeModal())
	assert.Equal(t, "A", h.m.cursorID)
}

func TestSmallTerminal(t *testing.T) {
	h := newHarness(t, abc()...)
	h.send(tea.WindowSizeMsg{Width: 20, Height: 5})
	assert.Contains(t, h.m.View(), "Terminal too small")
}

func TestCursorScrollsIntoView(t *testing.T) {
	var notes []note.Note
	for i := range 20 {
		notes = append(notes, note.Note{ID: fmt.Sprintf("n%02d", i)})
	}
	h := newHarness(t, notes...)
	h.keys("G")
	assert.Equal(t, "n19", h.m.cursorID)
	r, ok := h.m.grid.cellRect("n19")
	require.True(t, ok)
	assert.LessOrEqual(t, r.Bottom(), h.m.grid.top+h.m.grid.height)
	assert.Positive(t, h.m.grid.scroll)

	h.keys("g")
	assert.Equal(t, 0, h.m.grid.scroll)
}

func TestParseBodyKeepsItemIDs(t *testing.T) {
	existing := []note.ChecklistItem{{ID: "i1", Content: "old"}, {ID: "i2", Content: "old2"}}
	content, items := parseBody("intro\n\n[ ] one\n[X] two\n[ ] three\n", existing)

	assert.Equal(t, "intro", content)
	require.Len(t, items, 3)
	assert.Equal(t, "i1", items[0].ID)
	assert.Equal(t, "i2", items[1].ID)
	assert.Empty(t, items[2].ID)
	assert.True(t, items[1].IsCompleted)
	assert.Equal(t, "two", items[1].Content)
}

func TestFormatBodyRoundTrips(t *testing.T) {
	n := note.Note{
		Content:        "intro",
		ChecklistItems: []note.ChecklistItem{{ID: "i1", Content: "one"}, {ID: "i2", Content: "two", IsCompleted: true}},
	}
	text := formatBody(n)
	assert.Equal(t, "intro\n[ ] one\n[x] two", text)

	content, items := parseBody(text, n.ChecklistItems)
	assert.Equal(t, n.Content, content)
	assert.Equal(t, n.ChecklistItems, items)
}

func TestCycle(t *testing.T) {
	tokens := []string{"a", "b", "c"}
	assert.Equal(t, "b", cycle(tokens, "a"))
	assert.Equal(t, "a", cycle(tokens, "c"))
	assert.Equal(t, "a", cycle(tokens, "unknown"))
}

func TestCardLines(t *testing.T) {
	reg := labels.NewRegistry(labels.Label{ID: "l1", Name: "work"})
	n := note.Note{
		Title:    "A fairly long title for a card",
		IsPinned: true,
		Content:  "one\n\ntwo\nthree\nfour",
		ChecklistItems: []note.ChecklistItem{
			{Content: "a"}, {Content: "b", IsCompleted: true}, {Content: "c"}, {Content: "d"},
		},
		Labels: []string{"l1"},
		Images: []note.Image{{ID: "i1"}},
	}
	lines := cardLines(n, 20, reg)

	assert.True(t, strings.HasPrefix(lines[0], "★ "))
	assert.True(t, strings.HasSuffix(lines[0], "…"))
	assert.Equal(t, "one", lines[1])
	assert.True(t, strings.HasSuffix(lines[3], "…"), "extra content is elided")
	assert.Equal(t, "☑ b", lines[5])
	assert.Equal(t, "+1 more", lines[7])
	assert.Equal(t, "#work ▣ 1", lines[8])
	assert.Len(t, lines, 9)
}

func TestCardLinesUntitled(t *testing.T) {
	lines := cardLines(note.Note{}, 20, labels.NewRegistry())
	assert.Equal(t, []string{"Untitled"}, lines)
}

func TestGridScrollUnitsKeepsRemainder(t *testing.T) {
	g := newGrid(8, 16)
	g.total, g.height = 100, 10

	assert.False(t, g.scrollUnits(10))
	assert.Equal(t, 0, g.scroll)
	assert.True(t, g.scrollUnits(10), "remainders accumulate")
	assert.Equal(t, 1, g.scroll)

	assert.True(t, g.scrollUnits(-1000))
	assert.Equal(t, 0, g.scroll)
	assert.Zero(t, g.scrollFrac)
}

func TestSectionsForNotesView(t *testing.T) {
	st, err := note.NewState([]note.Note{{ID: "A"}, {ID: "B", IsPinned: true}, {ID: "C", IsArchived: true}})
	require.NoError(t, err)

	groups := sectionsFor(st, state.ViewNotes)
	require.Len(t, groups, 2)
	assert.Equal(t, "PINNED", groups[0].title)
	assert.Equal(t, "OTHERS", groups[1].title)

	groups = sectionsFor(st, state.ViewArchive)
	require.Len(t, groups, 1)
	assert.Equal(t, "C", groups[0].notes[0].ID)
	assert.True(t, slices.ContainsFunc(sectionsFor(st, state.ViewTrash), func(g group) bool { return len(g.notes) == 0 }))
}

func TestNoteMarkdown(t *testing.T) {
	reg := labels.NewRegistry(labels.Label{ID: "l1", Name: "work"})
	n := note.Note{
		Title:          "Plan",
		Content:        "body",
		ChecklistItems: []note.ChecklistItem{{Content: "x", IsCompleted: true}},
		Labels:         []string{"l1"},
	}
	out := noteMarkdown(n, reg)
	assert.Contains(t, out, "# Plan")
	assert.Contains(t, out, "- [x] x")
	assert.Contains(t, out, "`#work`")
}
