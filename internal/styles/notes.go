package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/marcus/notegrid/internal/note"
)

// noteColors maps color tokens to card fills. Default uses the panel color.
var noteColors = map[string]string{
	note.ColorDefault: "#1F2937",
	note.ColorCoral:   "#FAAFA8",
	note.ColorPeach:   "#F39F76",
	note.ColorSand:    "#FFF8B8",
	note.ColorMint:    "#E2F6D3",
	note.ColorSage:    "#B4DDD3",
	note.ColorFog:     "#D4E4ED",
	note.ColorStorm:   "#AECCDC",
	note.ColorDusk:    "#D3BFDB",
	note.ColorBlossom: "#F6E2DD",
	note.ColorClay:    "#E9E3D4",
	note.ColorChalk:   "#EFEFF1",
}

// backgroundGlyphs marks a card's background theme in its corner.
var backgroundGlyphs = map[string]string{
	note.BackgroundGroceries: "🛒",
	note.BackgroundFood:      "🍜",
	note.BackgroundMusic:     "♫",
	note.BackgroundRecipes:   "🍳",
	note.BackgroundNotes:     "✎",
	note.BackgroundPlaces:    "⌂",
	note.BackgroundTravel:    "✈",
	note.BackgroundVideo:     "▶",
	note.BackgroundCelebrate: "✦",
}

// Card text is one of these two, whichever contrasts more with the fill.
var (
	darkText  = lipgloss.Color("#111827")
	lightText = TextPrimary
)

// NoteFill returns the card fill for a color token. Unknown tokens get the
// default fill.
func NoteFill(token string) lipgloss.Color {
	hex, ok := noteColors[token]
	if !ok {
		hex = noteColors[note.ColorDefault]
	}
	return lipgloss.Color(hex)
}

// NoteText returns a readable text color for a card of the given token.
func NoteText(token string) lipgloss.Color {
	fill := NoteFill(token)
	if contrast(darkText, fill) >= contrast(lightText, fill) {
		return darkText
	}
	return lightText
}

// BackgroundGlyph returns the marker for a background token, or "".
func BackgroundGlyph(token string) string {
	return backgroundGlyphs[token]
}

// Card returns the style of a note card.
func Card(token string, width int, focused, selected bool) lipgloss.Style {
	border := BorderNormal
	switch {
	case focused:
		border = BorderActive
	case selected:
		border = Accent
	}
	s := lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Background(NoteFill(token)).
		Foreground(NoteText(token)).
		Padding(0, 1)
	if selected {
		s = s.BorderStyle(lipgloss.ThickBorder())
	}
	return s
}

// contrast is the WCAG contrast ratio of two hex colors, from 1 to 21.
// Unparseable colors count as black.
func contrast(a, b lipgloss.Color) float64 {
	la, lb := luminance(a), luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

func luminance(c lipgloss.Color) float64 {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return 0
	}
	r, g, b := col.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
