// Package styles holds the board's lipgloss palette and the styles built on it.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Primary = lipgloss.Color("#7C3AED")
	Accent  = lipgloss.Color("#F59E0B")
	Success = lipgloss.Color("#10B981")
	Error   = lipgloss.Color("#EF4444")

	TextPrimary   = lipgloss.Color("#F9FAFB")
	TextSecondary = lipgloss.Color("#9CA3AF")
	TextMuted     = lipgloss.Color("#6B7280")
	TextSubtle    = lipgloss.Color("#4B5563")

	// Panel is the bar and modal fill; Raised sits one step above it.
	Panel  = lipgloss.Color("#1F2937")
	Raised = lipgloss.Color("#374151")

	BorderNormal = Raised
	BorderActive = Primary

	dangerText  = lipgloss.Color("#FCA5A5")
	dangerFill  = lipgloss.Color("#7F1D1D")
	dangerFocus = lipgloss.Color("#DC2626")

	// MarkdownTheme is the glamour style used for note previews.
	MarkdownTheme = "dark"
)

var (
	Muted  = lipgloss.NewStyle().Foreground(TextMuted)
	Subtle = lipgloss.NewStyle().Foreground(TextSubtle)
	Logo   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
)

// Header and footer bars. BarChip is a view tab.
var (
	Header = lipgloss.NewStyle().Background(Panel)
	Footer = lipgloss.NewStyle().Foreground(TextMuted).Background(Panel)

	BarText       = lipgloss.NewStyle().Foreground(TextMuted)
	BarChip       = lipgloss.NewStyle().Foreground(TextMuted).Background(Raised).Padding(0, 1)
	BarChipActive = BarChip.Foreground(TextPrimary).Background(Primary).Bold(true)
)

// Notification slot. ToastUndo is the clickable undo link.
var (
	ToastSuccess = lipgloss.NewStyle().
			Background(Success).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Padding(0, 1)
	ToastError = ToastSuccess.Background(Error).Foreground(lipgloss.Color("#FFFFFF"))
	ToastUndo  = lipgloss.NewStyle().Foreground(Accent).Bold(true).Underline(true)
)

// Dialogs, the editor and the label prompt.
var (
	ModalBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Background(Panel).
			Padding(1, 2)
	ModalTitle = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true).MarginBottom(1)

	Button              = lipgloss.NewStyle().Foreground(TextSecondary).Background(Raised).Padding(0, 2)
	ButtonFocused       = Button.Foreground(TextPrimary).Background(Primary).Bold(true)
	ButtonDanger        = Button.Foreground(dangerText).Background(dangerFill)
	ButtonDangerFocused = Button.Foreground(lipgloss.Color("#FFFFFF")).Background(dangerFocus).Bold(true)
)
