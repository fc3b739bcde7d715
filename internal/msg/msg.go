// Package msg holds bubbletea messages shared between UI components.
package msg

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ToastMsg displays a temporary message that has no undo control.
type ToastMsg struct {
	Message  string
	Duration time.Duration
	IsError  bool // true for error toasts (red), false for success (green)
}

// ShowToast returns a command to show a toast message.
func ShowToast(message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{
			Message:  message,
			Duration: duration,
		}
	}
}

// ShowError returns a command to show err as an error toast.
func ShowError(prefix string, err error, duration time.Duration) tea.Cmd {
	if err == nil {
		return nil
	}
	text := err.Error()
	if prefix != "" {
		text = prefix + ": " + text
	}
	return func() tea.Msg {
		return ToastMsg{
			Message:  text,
			Duration: duration,
			IsError:  true,
		}
	}
}
