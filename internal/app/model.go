package app

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/marcus/notegrid/internal/config"
	"github.com/marcus/notegrid/internal/coordinator"
	"github.com/marcus/notegrid/internal/dnd"
	"github.com/marcus/notegrid/internal/event"
	"github.com/marcus/notegrid/internal/keymap"
	"github.com/marcus/notegrid/internal/labels"
	"github.com/marcus/notegrid/internal/mouse"
	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/selection"
	"github.com/marcus/notegrid/internal/state"
	"github.com/marcus/notegrid/internal/ui"
	"github.com/marcus/notegrid/internal/undo"
)

const (
	headerHeight = 2 // header line + spacing
	footerHeight = 1
	idleTick     = 100 * time.Millisecond
	toastWindow  = 3 * time.Second
	eventBuffer  = 64
)

// ModalKind identifies an app-level modal. Lower values take input first.
type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalConfirm
	ModalEditor
	ModalPrompt
	ModalHelp
)

// confirmKind says what a confirm dialog will do when accepted.
type confirmKind int

const (
	confirmDeleteForever confirmKind = iota
	confirmEmptyTrash
	confirmQuit
)

// Options wires the model to the engine. Store, Coord, Undo and Labels are
// required.
type Options struct {
	Config *config.Config
	Store  *note.Store
	Coord  *coordinator.Coordinator
	Undo   *undo.Controller
	Labels *labels.Registry
	Keymap *keymap.Registry
	Logger *slog.Logger

	// CreateLabel persists a label typed into the label prompt. May be nil.
	CreateLabel func(labels.Label) error
	// NewID generates label ids.
	NewID func() string
	// Now defaults to time.Now.
	Now func() time.Time
}

// frameMsg drives undo expiry and the drag engine.
type frameMsg time.Time

// busMsg carries an event bus event into the update loop.
type busMsg event.Event

// Model is the root Bubble Tea model.
type Model struct {
	cfg    *config.Config
	store  *note.Store
	coord  *coordinator.Coordinator
	undo   *undo.Controller
	labels *labels.Registry
	keymap *keymap.Registry
	logger *slog.Logger
	sel    *selection.Controller
	drag   *dnd.Engine
	grid   *grid
	mouse  *mouse.Handler

	createLabel func(labels.Label) error
	newID       func() string
	now         func() time.Time

	events  chan event.Event
	loading *atomic.Int64

	// UI state
	width, height int
	ready         bool
	view          string
	cursorID      string
	cursorIdx     int
	showFooter    bool
	showPreview   bool
	showHelp      bool
	help          help.Model

	// Confirm dialog
	dialog     *ui.ConfirmDialog
	dialogKind confirmKind
	dialogX    int
	dialogY    int

	// Note editor; editID is empty for a new note.
	editing      bool
	editID       string
	editTitle    textinput.Model
	editContent  textarea.Model
	editOnTitle  bool
	prompting    bool
	promptInput  textinput.Model
	promptTarget []string

	// Toasts without undo
	toast        string
	toastIsError bool
	toastExpiry  time.Time

	// Markdown preview cache
	renderer      *glamour.TermRenderer
	rendererWidth int
	previewKey    string
	previewText   string

	quitting bool
}

// New creates the root model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	km := opts.Keymap
	if km == nil {
		km = keymap.NewRegistry()
		keymap.RegisterDefaults(km)
		km.ApplyOverrides(cfg.Keymap.Overrides)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		cfg:         cfg,
		store:       opts.Store,
		coord:       opts.Coord,
		undo:        opts.Undo,
		labels:      opts.Labels,
		keymap:      km,
		logger:      logger,
		sel:         selection.New(),
		grid:        newGrid(cfg.UI.CellWidth, cfg.UI.CellHeight),
		mouse:       mouse.NewHandler(),
		createLabel: opts.CreateLabel,
		newID:       opts.NewID,
		now:         now,
		events:      make(chan event.Event, eventBuffer),
		loading:     new(atomic.Int64),
		view:        state.GetView(),
		cursorID:    state.GetCursor(state.GetView()),
		showFooter:  cfg.UI.ShowFooter,
		showPreview: cfg.UI.Preview && !state.GetPreviewHidden(),
		help:        help.New(),
	}
	m.drag = dnd.New(dragConfig(cfg), m.store, m.grid, m.coord.Reorder, logger)
	return m
}

func dragConfig(cfg *config.Config) dnd.Config {
	return dnd.Config{
		Threshold:       cfg.Drag.Threshold,
		EdgeBand:        cfg.Drag.EdgeBand,
		MaxScrollSpeed:  cfg.Drag.MaxScrollSpeed,
		SwapInterval:    cfg.Drag.SwapInterval,
		Settle:          cfg.Drag.Settle,
		HysteresisScale: cfg.Drag.HysteresisScale,
	}
}

// Subscribe forwards the bus events the UI cares about into the model. The
// handlers never block; events beyond the buffer are dropped.
func (m Model) Subscribe(bus *event.Dispatcher) (unsubscribe func()) {
	loading := m.loading
	events := m.events
	logger := m.logger
	forward := func(e event.Event) {
		select {
		case events <- e:
		default:
			logger.Warn("app: event dropped", "type", e.Type, "action", e.Action)
		}
	}
	unsubs := []func(){
		bus.Subscribe(event.LoadingStart, func(event.Event) { loading.Add(1) }),
		bus.Subscribe(event.LoadingEnd, func(event.Event) { loading.Add(-1) }),
		bus.Subscribe(event.PersistFailed, forward),
		bus.Subscribe(event.ConfigReloaded, forward),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Init starts the frame clock and the bus listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.frameTick(), m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return busMsg(<-events)
	}
}

// frameTick schedules the next frame. Frames run at the configured rate while
// a drag is live and slow down otherwise.
func (m Model) frameTick() tea.Cmd {
	d := idleTick
	if m.drag.Active() {
		d = m.cfg.UI.FrameInterval
	}
	return tea.Tick(d, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// activeModal returns the highest-priority open modal.
func (m *Model) activeModal() ModalKind {
	switch {
	case m.dialog != nil:
		return ModalConfirm
	case m.editing:
		return ModalEditor
	case m.prompting:
		return ModalPrompt
	case m.showHelp:
		return ModalHelp
	default:
		return ModalNone
	}
}

// context returns the keymap context for the active modal.
func (m *Model) context() string {
	switch m.activeModal() {
	case ModalConfirm:
		return keymap.ContextConfirm
	case ModalEditor:
		return keymap.ContextEditor
	case ModalPrompt:
		return keymap.ContextPrompt
	default:
		return keymap.ContextList
	}
}

// contentHeight is the number of rows available to the note list.
func (m *Model) contentHeight() int {
	h := m.height - headerHeight
	if m.showFooter {
		h -= footerHeight
	}
	return max(0, h)
}

// listWidth is the width of the note list; the rest goes to the preview.
func (m *Model) listWidth() int {
	if !m.showPreview || m.width < 60 {
		return m.width
	}
	return m.width * 11 / 20
}

// relayout rebuilds the grid and hit regions from the current state.
func (m *Model) relayout() {
	m.grid.build(m.store.State(), m.view, m.labels, 0, headerHeight, m.listWidth(), m.contentHeight())
	m.syncCursor()
	m.registerHits()
	m.refreshPreview()
}

// syncCursor keeps the cursor on the same note, or on the same position when
// that note left the view.
func (m *Model) syncCursor() {
	ids := m.grid.ids()
	if len(ids) == 0 {
		m.cursorID, m.cursorIdx = "", 0
		return
	}
	for i, id := range ids {
		if id == m.cursorID {
			m.cursorIdx = i
			return
		}
	}
	m.cursorIdx = min(max(m.cursorIdx, 0), len(ids)-1)
	m.cursorID = ids[m.cursorIdx]
}

func (m *Model) setCursor(i int) {
	ids := m.grid.ids()
	if len(ids) == 0 {
		return
	}
	m.cursorIdx = min(max(i, 0), len(ids)-1)
	m.cursorID = ids[m.cursorIdx]
	m.grid.ensureVisible(m.cursorID)
	state.SetCursor(m.view, m.cursorID)
}

// cursorNote returns the focused note.
func (m *Model) cursorNote() (note.Note, bool) {
	if m.cursorID == "" {
		return note.Note{}, false
	}
	return m.store.State().Get(m.cursorID)
}

// showToast shows a message with no undo control.
func (m *Model) showToast(text string, isError bool, d time.Duration) {
	m.toast = text
	m.toastIsError = isError
	m.toastExpiry = m.now().Add(d)
}

func (m *Model) setView(view string) {
	if view == m.view {
		return
	}
	state.SetCursor(m.view, m.cursorID)
	m.view = view
	m.cursorID = state.GetCursor(view)
	m.cursorIdx = 0
	m.grid.scroll = 0
	m.sel.Clear()
	if err := state.SetView(view); err != nil {
		m.logger.Warn("app: save view", "error", err)
	}
}
