package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/notegrid/internal/mouse"
	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/state"
	"github.com/marcus/notegrid/internal/styles"
	"github.com/marcus/notegrid/internal/ui"
)

const (
	minWidth    = 40
	minHeight   = 10
	toastMargin = 1
)

// View renders the entire application UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.width < minWidth || m.height < minHeight {
		text := fmt.Sprintf("Terminal too small (%dx%d)\nMinimum: %dx%d", m.width, m.height, minWidth, minHeight)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styles.Muted.Render(text))
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderContent())
	if m.showFooter {
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}
	out := b.String()

	if toast, _, ok := m.renderToast(); ok {
		out = ui.OverlayCorner(out, toast, m.width, m.height, toastMargin)
	}

	switch m.activeModal() {
	case ModalConfirm:
		return ui.OverlayModal(out, m.dialog.View(), m.width, m.height)
	case ModalEditor:
		return ui.OverlayModal(out, m.renderEditor(), m.width, m.height)
	case ModalPrompt:
		return ui.OverlayModal(out, m.renderPrompt(), m.width, m.height)
	case ModalHelp:
		return ui.OverlayModal(out, m.renderHelp(), m.width, m.height)
	}
	return out
}

func (m Model) renderHeader() string {
	st := m.store.State()
	tabs := []struct {
		view, label string
		count       int
	}{
		{state.ViewNotes, "Notes", len(st.InSection(note.SectionPinned)) + len(st.InSection(note.SectionActive))},
		{state.ViewArchive, "Archive", len(st.InSection(note.SectionArchived))},
		{state.ViewTrash, "Trash", len(st.InSection(note.SectionTrash))},
	}

	parts := []string{" "}
	for _, t := range tabs {
		style := styles.BarChip
		if t.view == m.view {
			style = styles.BarChipActive
		}
		parts = append(parts, style.Width(regionTabWidth).Render(fmt.Sprintf("%s %d", t.label, t.count)))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	var right []string
	if n := m.sel.Len(); n > 0 {
		right = append(right, styles.BarText.Render(fmt.Sprintf("%d selected", n)))
	}
	if m.loading.Load() > 0 {
		frames := spinner.Dot.Frames
		i := int(m.now().UnixNano()/int64(spinner.Dot.FPS)) % len(frames)
		right = append(right, styles.BarText.Render(frames[i]+" saving"))
	}
	right = append(right, styles.Logo.Render("notegrid "))
	rightStr := strings.Join(right, "  ")

	gap := max(1, m.width-ansi.StringWidth(left)-ansi.StringWidth(rightStr))
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + rightStr)
}

func (m Model) renderContent() string {
	h := m.contentHeight()
	list := m.renderList()
	if m.listWidth() == m.width {
		return list
	}
	pw := max(0, m.width-m.listWidth()-1)
	preview := lipgloss.NewStyle().Width(pw).Height(h).MaxHeight(h).Render(m.previewText)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", preview)
}

// renderList draws the visible slice of the laid out rows.
func (m Model) renderList() string {
	g := m.grid
	h := m.contentHeight()
	if len(g.rows) == 0 {
		empty := "No notes yet. Press n to create one."
		switch m.view {
		case state.ViewArchive:
			empty = "No archived notes."
		case state.ViewTrash:
			empty = "Trash is empty."
		}
		return lipgloss.Place(g.width, h, lipgloss.Center, lipgloss.Center, styles.Muted.Render(empty))
	}

	dragged := ""
	if s, ok := m.drag.Session(); ok {
		dragged = s.DraggedID
	}

	st := m.store.State()
	var lines []string
	for _, r := range g.rows {
		if r.kind == rowHeader {
			lines = append(lines, styles.Subtle.Bold(true).Render(" "+r.text))
			continue
		}
		n, _ := st.Get(r.noteID)
		focused := r.noteID == m.cursorID || r.noteID == dragged
		card := styles.Card(n.Color, g.width-2, focused, m.sel.Has(r.noteID)).Render(strings.Join(r.lines, "\n"))
		lines = append(lines, strings.Split(card, "\n")...)
	}

	start := min(g.scroll, len(lines))
	end := min(start+h, len(lines))
	visible := lines[start:end]
	for len(visible) < h {
		visible = append(visible, "")
	}
	return lipgloss.NewStyle().Width(g.width).Render(strings.Join(visible, "\n"))
}

// refreshPreview re-renders the markdown preview when the focused note or
// the pane width changed.
func (m *Model) refreshPreview() {
	pw := m.width - m.listWidth() - 1
	if pw <= 0 {
		m.previewText = ""
		return
	}
	n, ok := m.cursorNote()
	if !ok {
		m.previewKey, m.previewText = "", ""
		return
	}
	k := fmt.Sprintf("%s/%d/%d/%d", n.ID, n.UpdatedAt.UnixNano(), pw, len(n.Labels)+len(n.Images))
	if k == m.previewKey {
		return
	}
	m.previewKey = k

	if m.renderer == nil || m.rendererWidth != pw {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(styles.MarkdownTheme),
			glamour.WithWordWrap(pw-2),
		)
		if err != nil {
			m.logger.Warn("app: markdown renderer", "error", err)
		}
		m.renderer, m.rendererWidth = r, pw
	}

	text := noteMarkdown(n, m.labels)
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			text = out
		}
	}
	m.previewText = text
}

func (m Model) renderFooter() string {
	return styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keymap.HelpBindings(m.context())))
}

// renderToast returns the notification box and the offset of its undo
// button, when anything is showing.
func (m Model) renderToast() (box string, undoX int, ok bool) {
	now := m.now()
	if m.toast != "" && (m.toastIsError || !m.undo.Active()) {
		style := styles.ToastSuccess
		if m.toastIsError {
			style = styles.ToastError
		}
		return style.Render(m.toast), -1, true
	}
	v, ok := m.undo.Current(now)
	if !ok {
		return "", -1, false
	}
	if !v.HasUndo {
		return styles.ToastSuccess.Render(v.Message), -1, true
	}
	// Padding(0, 1): one cell before the message.
	undoX = 1 + ansi.StringWidth(v.Message) + 2
	return styles.ToastSuccess.Render(v.Message + "  " + styles.ToastUndo.Render("Undo")), undoX, true
}

// undoButtonRect locates the undo control of the visible notification.
func (m *Model) undoButtonRect() (mouse.Rect, bool) {
	box, undoX, ok := m.renderToast()
	if !ok || undoX < 0 {
		return mouse.Rect{}, false
	}
	w := ansi.StringWidth(box)
	x := max(0, m.width-w-toastMargin)
	y := max(0, m.height-1-toastMargin)
	return mouse.Rect{X: x + undoX, Y: y, W: 4, H: 1}, true
}

func (m Model) renderEditor() string {
	heading := "Edit note"
	if m.editID == "" {
		heading = "New note"
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitle.Render(heading),
		m.editTitle.View(),
		"",
		m.editContent.View(),
		"",
		styles.Muted.Render("ctrl+s save · tab switch field · esc cancel"),
	)
	return styles.ModalBox.Render(body)
}

func (m Model) renderPrompt() string {
	var names []string
	for _, l := range m.labels.List() {
		names = append(names, fmt.Sprintf("%s (%d)", l.Name, m.labels.Count(l.ID)))
	}
	hint := "New names create a label."
	if len(names) > 0 {
		hint = "Labels: " + strings.Join(names, ", ")
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitle.Render("Toggle label"),
		m.promptInput.View(),
		"",
		styles.Muted.Width(40).Render(hint),
	)
	return styles.ModalBox.Render(body)
}

func (m Model) renderHelp() string {
	bindings := m.keymap.HelpBindings(m.context())
	var columns [][]key.Binding
	for i := 0; i < len(bindings); i += 8 {
		columns = append(columns, bindings[i:min(i+8, len(bindings))])
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitle.Render("Keys"),
		m.help.FullHelpView(columns),
		"",
		styles.Muted.Render("drag a card to reorder · double-click to edit · any key closes"),
	)
	return styles.ModalBox.Render(body)
}
