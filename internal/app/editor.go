package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/notegrid/internal/keymap"
	"github.com/marcus/notegrid/internal/labels"
	"github.com/marcus/notegrid/internal/msg"
	"github.com/marcus/notegrid/internal/note"
)

const (
	itemOpen = "[ ] "
	itemDone = "[x] "
)

// openEditor opens the editor on id, or on a new note when id is empty.
func (m *Model) openEditor(id string) tea.Cmd {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200

	body := textarea.New()
	body.Placeholder = "Take a note…  ([ ] starts a checklist item)"
	body.ShowLineNumbers = false

	if id != "" {
		n, ok := m.store.State().Get(id)
		if !ok {
			return nil
		}
		title.SetValue(n.Title)
		body.SetValue(formatBody(n))
	}

	m.editing = true
	m.editID = id
	m.editTitle = title
	m.editContent = body
	m.editOnTitle = true
	m.resizeEditor()
	return m.editTitle.Focus()
}

func (m *Model) resizeEditor() {
	if !m.editing {
		return
	}
	w := max(20, min(m.width-10, 80))
	m.editTitle.Width = w - 2
	m.editContent.SetWidth(w)
	m.editContent.SetHeight(max(3, min(m.height-12, 16)))
}

func (m *Model) editorCommand(command string) tea.Cmd {
	switch command {
	case keymap.CmdCancel:
		m.editing = false
	case keymap.CmdNextField:
		m.editOnTitle = !m.editOnTitle
		if m.editOnTitle {
			m.editContent.Blur()
			return m.editTitle.Focus()
		}
		m.editTitle.Blur()
		return m.editContent.Focus()
	case keymap.CmdSave:
		return m.saveEditor()
	case keymap.CmdQuit:
		m.editing = false
		m.requestQuit()
	}
	return nil
}

func (m *Model) updateEditor(k tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	if m.editOnTitle {
		m.editTitle, cmd = m.editTitle.Update(k)
	} else {
		m.editContent, cmd = m.editContent.Update(k)
	}
	return cmd
}

// saveEditor creates or edits the note and closes the editor.
func (m *Model) saveEditor() tea.Cmd {
	m.editing = false
	title := strings.TrimSpace(m.editTitle.Value())

	if m.editID == "" {
		content, items := parseBody(m.editContent.Value(), nil)
		if title == "" && content == "" && len(items) == 0 {
			return nil
		}
		n, err := m.coord.Create(title, content, items)
		if err != nil {
			return msg.ShowError("Create", err, toastWindow)
		}
		m.cursorID = n.ID
		return nil
	}

	n, ok := m.store.State().Get(m.editID)
	if !ok {
		return nil
	}
	content, items := parseBody(m.editContent.Value(), n.ChecklistItems)
	if _, err := m.coord.Edit(n.ID, title, content, items); err != nil {
		return msg.ShowError("Save", err, toastWindow)
	}
	return nil
}

// formatBody renders content followed by the checklist as editable text.
func formatBody(n note.Note) string {
	var b strings.Builder
	b.WriteString(n.Content)
	for i, it := range n.ChecklistItems {
		if i > 0 || n.Content != "" {
			b.WriteString("\n")
		}
		if it.IsCompleted {
			b.WriteString(itemDone)
		} else {
			b.WriteString(itemOpen)
		}
		b.WriteString(it.Content)
	}
	return b.String()
}

// parseBody splits editor text into content and checklist items. Items keep
// the id of the existing item at the same position.
func parseBody(text string, existing []note.ChecklistItem) (string, []note.ChecklistItem) {
	var content []string
	var items []note.ChecklistItem
	for _, line := range strings.Split(text, "\n") {
		var it note.ChecklistItem
		switch {
		case strings.HasPrefix(line, itemOpen):
			it.Content = strings.TrimPrefix(line, itemOpen)
		case strings.HasPrefix(strings.ToLower(line), itemDone):
			it.Content = line[len(itemDone):]
			it.IsCompleted = true
		default:
			content = append(content, line)
			continue
		}
		if i := len(items); i < len(existing) {
			it.ID = existing[i].ID
		}
		items = append(items, it)
	}
	return strings.TrimRight(strings.Join(content, "\n"), "\n"), items
}

// openPrompt asks for a label name to toggle on id.
func (m *Model) openPrompt(id string) tea.Cmd {
	in := textinput.New()
	in.Placeholder = "Label name"
	in.CharLimit = 40
	in.Width = 30
	names := make([]string, 0)
	for _, l := range m.labels.List() {
		names = append(names, l.Name)
	}
	in.ShowSuggestions = true
	in.SetSuggestions(names)

	m.prompting = true
	m.promptInput = in
	m.promptTarget = []string{id}
	return m.promptInput.Focus()
}

func (m *Model) promptCommand(command string) tea.Cmd {
	switch command {
	case keymap.CmdCancel:
		m.prompting = false
	case keymap.CmdConfirm:
		m.prompting = false
		return m.toggleLabel(strings.TrimSpace(m.promptInput.Value()))
	case keymap.CmdQuit:
		m.prompting = false
		m.requestQuit()
	}
	return nil
}

func (m *Model) updatePrompt(k tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(k)
	return cmd
}

// toggleLabel attaches the named label to the prompt target, or detaches it
// when already attached. Unknown names create a new label.
func (m *Model) toggleLabel(name string) tea.Cmd {
	if name == "" {
		return nil
	}
	labelID, ok := m.labelByName(name)
	if !ok {
		if m.newID == nil {
			return nil
		}
		l := labels.Label{ID: m.newID(), Name: name}
		if m.createLabel != nil {
			if err := m.createLabel(l); err != nil {
				return msg.ShowError("Create label", err, toastWindow)
			}
		}
		m.labels.Add(l)
		labelID = l.ID
	}

	for _, id := range m.promptTarget {
		n, ok := m.store.State().Get(id)
		if !ok {
			continue
		}
		var err error
		if n.HasLabel(labelID) {
			err = m.coord.RemoveLabel(id, labelID)
		} else {
			err = m.coord.AddLabel(id, labelID)
		}
		if err != nil {
			return msg.ShowError("Label", err, toastWindow)
		}
	}
	return nil
}

// noteMarkdown renders a note as markdown for preview and copying.
func noteMarkdown(n note.Note, reg *labels.Registry) string {
	var b strings.Builder
	b.WriteString("# " + titleOf(n) + "\n\n")
	if n.Content != "" {
		b.WriteString(n.Content + "\n\n")
	}
	for _, it := range n.ChecklistItems {
		if it.IsCompleted {
			b.WriteString("- [x] " + it.Content + "\n")
		} else {
			b.WriteString("- [ ] " + it.Content + "\n")
		}
	}
	if len(n.ChecklistItems) > 0 {
		b.WriteString("\n")
	}
	for _, img := range n.Images {
		b.WriteString("![image](" + img.URL + ")\n")
	}
	if len(n.Labels) > 0 {
		tags := make([]string, len(n.Labels))
		for i, id := range n.Labels {
			tags[i] = "`#" + reg.Name(id) + "`"
		}
		b.WriteString("\n" + strings.Join(tags, " ") + "\n")
	}
	return b.String()
}
