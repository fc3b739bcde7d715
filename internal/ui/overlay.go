// Package ui provides shared UI components and helpers for the TUI.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DimStyle applies a dim gray color to background content behind modals.
// SGR 2 (faint) doesn't combine reliably with existing colors, so the
// background is stripped and recolored instead.
var DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

// maxLineWidth returns the maximum visual width of the given lines.
func maxLineWidth(lines []string) int {
	maxWidth := 0
	for _, line := range lines {
		w := ansi.StringWidth(line)
		if w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// dimLine strips ANSI codes and applies dim gray styling.
func dimLine(s string) string {
	return DimStyle.Render(ansi.Strip(s))
}

// compositeRow overlays fgLine onto bgLine at column startX. With dim set the
// background around it is stripped and dimmed; otherwise it keeps its styling.
func compositeRow(bgLine, fgLine string, startX, fgWidth int, dim bool) string {
	var result strings.Builder

	bg := bgLine
	if dim {
		bg = ansi.Strip(bgLine)
	}
	bgWidth := ansi.StringWidth(bg)
	paint := func(s string) string {
		if dim {
			return DimStyle.Render(s)
		}
		return s
	}

	if startX > 0 {
		left := ansi.Truncate(bg, startX, "")
		leftWidth := ansi.StringWidth(left)
		result.WriteString(paint(left))
		if leftWidth < startX {
			result.WriteString(strings.Repeat(" ", startX-leftWidth))
		}
	}

	result.WriteString(fgLine)

	rightStart := startX + fgWidth
	if bgWidth > rightStart {
		result.WriteString(paint(ansi.Cut(bg, rightStart, bgWidth)))
	}
	return result.String()
}

// CenterOffset returns where OverlayModal puts the top-left corner of fg.
func CenterOffset(fg string, width, height int) (x, y int) {
	lines := strings.Split(fg, "\n")
	x = max(0, (width-maxLineWidth(lines))/2)
	y = max(0, (height-len(lines))/2)
	return x, y
}

// Place draws fg over background with its top-left corner at (x, y). The
// result always has exactly height lines.
func Place(background, fg string, x, y, height int, dim bool) string {
	bgLines := strings.Split(background, "\n")
	fgLines := strings.Split(fg, "\n")
	fgWidth := maxLineWidth(fgLines)

	result := make([]string, 0, height)
	for row := 0; row < height; row++ {
		bgLine := ""
		if row < len(bgLines) {
			bgLine = bgLines[row]
		}

		fgRow := row - y
		switch {
		case fgRow >= 0 && fgRow < len(fgLines):
			result = append(result, compositeRow(bgLine, fgLines[fgRow], x, fgWidth, dim))
		case dim:
			result = append(result, dimLine(bgLine))
		default:
			result = append(result, bgLine)
		}
	}
	return strings.Join(result, "\n")
}

// OverlayModal composites a modal centered on top of a dimmed background.
func OverlayModal(background, modal string, width, height int) string {
	x, y := CenterOffset(modal, width, height)
	return Place(background, modal, x, y, height, true)
}

// OverlayCorner draws fg in the bottom-right corner, margin cells in from the
// edges, without dimming the background.
func OverlayCorner(background, fg string, width, height, margin int) string {
	lines := strings.Split(fg, "\n")
	x := max(0, width-maxLineWidth(lines)-margin)
	y := max(0, height-len(lines)-margin)
	return Place(background, fg, x, y, height, false)
}
