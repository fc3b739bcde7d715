package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/notegrid/internal/mouse"
	"github.com/marcus/notegrid/internal/styles"
)

// Dialog widths.
const (
	ModalWidthSmall  = 40
	ModalWidthMedium = 50
	ModalWidthLarge  = 70
)

// Hit region ids for the dialog buttons.
const (
	RegionConfirm = "dialog-confirm"
	RegionCancel  = "dialog-cancel"
)

// Result is the outcome of feeding input to a dialog.
type Result int

const (
	ResultNone Result = iota
	ResultConfirm
	ResultCancel
)

// ConfirmDialog is a reusable confirmation modal with two buttons.
type ConfirmDialog struct {
	Title        string
	Message      string
	ConfirmLabel string // e.g., " Confirm ", " Delete ", " Yes "
	CancelLabel  string // e.g., " Cancel ", " No "
	Danger       bool   // red confirm button and border
	Width        int    // Modal width (default 50)

	focus int // 0=confirm, 1=cancel
}

// NewConfirmDialog creates a dialog with sensible defaults.
func NewConfirmDialog(title, message string) *ConfirmDialog {
	return &ConfirmDialog{
		Title:        title,
		Message:      message,
		ConfirmLabel: " Confirm ",
		CancelLabel:  " Cancel ",
		Width:        ModalWidthMedium,
	}
}

// Focused reports which button has focus: 0 confirm, 1 cancel.
func (d *ConfirmDialog) Focused() int { return d.focus }

// SwitchFocus moves focus to the other button.
func (d *ConfirmDialog) SwitchFocus() { d.focus = 1 - d.focus }

// Activate returns the result of pressing the focused button.
func (d *ConfirmDialog) Activate() Result {
	if d.focus == 0 {
		return ResultConfirm
	}
	return ResultCancel
}

// Click maps a clicked region id to a result.
func (d *ConfirmDialog) Click(regionID string) Result {
	switch regionID {
	case RegionConfirm:
		return ResultConfirm
	case RegionCancel:
		return ResultCancel
	}
	return ResultNone
}

// View renders the dialog box.
func (d *ConfirmDialog) View() string {
	border := styles.Primary
	confirm, confirmFocused := styles.Button, styles.ButtonFocused
	if d.Danger {
		border = styles.Error
		confirm, confirmFocused = styles.ButtonDanger, styles.ButtonDangerFocused
	}

	confirmBtn := confirm.Render(d.ConfirmLabel)
	cancelBtn := styles.Button.Render(d.CancelLabel)
	if d.focus == 0 {
		confirmBtn = confirmFocused.Render(d.ConfirmLabel)
	} else {
		cancelBtn = styles.ButtonFocused.Render(d.CancelLabel)
	}

	inner := max(10, d.Width-6) // border and padding
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitle.Render(d.Title),
		lipgloss.NewStyle().Width(inner).Render(d.Message),
		"",
		confirmBtn+"  "+cancelBtn,
	)
	return styles.ModalBox.BorderForeground(border).Width(d.Width - 2).Render(body)
}

// Register adds the button regions of a dialog drawn at (x, y) to hits.
func (d *ConfirmDialog) Register(hits *mouse.HitMap, x, y int) {
	confirm, cancel := d.buttonRects()
	if !confirm.Empty() {
		hits.Add(RegionConfirm, mouse.Rect{X: x + confirm.X, Y: y + confirm.Y, W: confirm.W, H: confirm.H}, nil)
	}
	if !cancel.Empty() {
		hits.Add(RegionCancel, mouse.Rect{X: x + cancel.X, Y: y + cancel.Y, W: cancel.W, H: cancel.H}, nil)
	}
}

// buttonRects locates both buttons in the rendered dialog. Buttons are
// padded by two cells on each side.
func (d *ConfirmDialog) buttonRects() (confirm, cancel mouse.Rect) {
	lines := strings.Split(d.View(), "\n")
	for row, line := range lines {
		plain := ansi.Strip(line)
		ci := strings.Index(plain, d.ConfirmLabel)
		xi := strings.LastIndex(plain, d.CancelLabel)
		if ci < 0 || xi < 0 || xi <= ci {
			continue
		}
		confirm = mouse.Rect{
			X: ansi.StringWidth(plain[:ci]) - 2, Y: row,
			W: ansi.StringWidth(d.ConfirmLabel) + 4, H: 1,
		}
		cancel = mouse.Rect{
			X: ansi.StringWidth(plain[:xi]) - 2, Y: row,
			W: ansi.StringWidth(d.CancelLabel) + 4, H: 1,
		}
		return confirm, cancel
	}
	return mouse.Rect{}, mouse.Rect{}
}
