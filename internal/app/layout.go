package app

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/marcus/notegrid/internal/labels"
	"github.com/marcus/notegrid/internal/mouse"
	"github.com/marcus/notegrid/internal/note"
	"github.com/marcus/notegrid/internal/state"
	"github.com/marcus/notegrid/internal/styles"
)

const (
	maxContentLines   = 3
	maxChecklistLines = 3
)

type rowKind int

const (
	rowHeader rowKind = iota
	rowCard
)

// row is one laid out element of the note list, in list coordinates.
type row struct {
	kind   rowKind
	noteID string
	text   string   // section header text
	lines  []string // card body
	y, h   int
}

// grid is the note list geometry. It implements dnd.Layout, converting cells
// to layout units with cellW and cellH.
type grid struct {
	rows  []row
	index map[string]int // note id -> row
	total int

	x, top, width, height int

	scroll     int
	scrollFrac float64

	cellW, cellH int
}

func newGrid(cellW, cellH int) *grid {
	return &grid{index: make(map[string]int), cellW: cellW, cellH: cellH}
}

// group is a run of cards under an optional header.
type group struct {
	title string
	notes []note.Note
}

// sectionsFor returns the notes shown by a view, grouped under headers.
func sectionsFor(st note.State, view string) []group {
	switch view {
	case state.ViewArchive:
		return []group{{"", st.InSection(note.SectionArchived)}}
	case state.ViewTrash:
		return []group{{"", st.InSection(note.SectionTrash)}}
	}
	pinned := st.InSection(note.SectionPinned)
	active := st.InSection(note.SectionActive)
	if len(pinned) == 0 {
		return []group{{"", active}}
	}
	groups := []group{{"PINNED", pinned}}
	if len(active) > 0 {
		groups = append(groups, group{"OTHERS", active})
	}
	return groups
}

// build lays out st for view inside the given screen area.
func (g *grid) build(st note.State, view string, reg *labels.Registry, x, top, width, height int) {
	g.x, g.top, g.width, g.height = x, top, width, height
	g.rows = g.rows[:0]
	clear(g.index)

	inner := max(1, width-4) // border and padding
	y := 0
	for _, sec := range sectionsFor(st, view) {
		if sec.title != "" {
			g.rows = append(g.rows, row{kind: rowHeader, text: sec.title, y: y, h: 1})
			y++
		}
		for _, n := range sec.notes {
			lines := cardLines(n, inner, reg)
			h := len(lines) + 2
			g.index[n.ID] = len(g.rows)
			g.rows = append(g.rows, row{kind: rowCard, noteID: n.ID, lines: lines, y: y, h: h})
			y += h
		}
	}
	g.total = y
	g.clampScroll()
}

// ids returns the laid out note ids in display order.
func (g *grid) ids() []string {
	out := make([]string, 0, len(g.index))
	for _, r := range g.rows {
		if r.kind == rowCard {
			out = append(out, r.noteID)
		}
	}
	return out
}

func (g *grid) maxScroll() int {
	return max(0, g.total-g.height)
}

func (g *grid) clampScroll() {
	g.scroll = min(max(g.scroll, 0), g.maxScroll())
}

// scrollRows moves the list by n rows.
func (g *grid) scrollRows(n int) {
	g.scroll += n
	g.clampScroll()
}

// scrollUnits moves the list by a distance in layout units, keeping the
// fractional remainder for the next call. It reports whether the list moved.
func (g *grid) scrollUnits(units float64) bool {
	before := g.scroll
	g.scrollFrac += units / float64(g.cellH)
	whole := int(g.scrollFrac)
	g.scrollFrac -= float64(whole)
	g.scroll += whole
	g.clampScroll()
	// Drop a remainder that points past either end.
	if (g.scroll == 0 && g.scrollFrac < 0) || (g.scroll == g.maxScroll() && g.scrollFrac > 0) {
		g.scrollFrac = 0
	}
	return g.scroll != before
}

// ensureVisible scrolls the least amount that shows all of id's card.
func (g *grid) ensureVisible(id string) {
	i, ok := g.index[id]
	if !ok {
		return
	}
	r := g.rows[i]
	if r.y < g.scroll {
		g.scroll = r.y
		if i > 0 && g.rows[i-1].kind == rowHeader {
			g.scroll = g.rows[i-1].y
		}
	} else if r.y+r.h > g.scroll+g.height {
		g.scroll = r.y + r.h - g.height
	}
	g.clampScroll()
}

// cellRect returns the on-screen cell rectangle of id's card.
func (g *grid) cellRect(id string) (mouse.Rect, bool) {
	i, ok := g.index[id]
	if !ok {
		return mouse.Rect{}, false
	}
	r := g.rows[i]
	return mouse.Rect{X: g.x, Y: g.top + r.y - g.scroll, W: g.width, H: r.h}, true
}

// Rect implements dnd.Layout.
func (g *grid) Rect(id string) (mouse.Rect, bool) {
	c, ok := g.cellRect(id)
	if !ok {
		return mouse.Rect{}, false
	}
	return g.units(c), true
}

// Viewport implements dnd.Layout.
func (g *grid) Viewport() mouse.Rect {
	return g.units(mouse.Rect{X: g.x, Y: g.top, W: g.width, H: g.height})
}

func (g *grid) units(c mouse.Rect) mouse.Rect {
	return mouse.Rect{X: c.X * g.cellW, Y: c.Y * g.cellH, W: c.W * g.cellW, H: c.H * g.cellH}
}

// pointer converts a cell to the layout point at its center.
func (g *grid) pointer(x, y int) (int, int) {
	return x*g.cellW + g.cellW/2, y*g.cellH + g.cellH/2
}

// cardLines renders the plain text body of a card.
func cardLines(n note.Note, width int, reg *labels.Registry) []string {
	var lines []string

	title := n.Title
	if title == "" {
		title = "Untitled"
	}
	if g := styles.BackgroundGlyph(n.Background); g != "" {
		title = g + " " + title
	}
	if n.IsPinned {
		title = "★ " + title
	}
	lines = append(lines, runewidth.Truncate(title, width, "…"))

	shown := 0
	for _, l := range strings.Split(n.Content, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if shown == maxContentLines {
			lines[len(lines)-1] = runewidth.Truncate(lines[len(lines)-1]+" …", width, "…")
			break
		}
		lines = append(lines, runewidth.Truncate(l, width, "…"))
		shown++
	}

	for i, item := range n.ChecklistItems {
		if i == maxChecklistLines {
			lines = append(lines, fmt.Sprintf("+%d more", len(n.ChecklistItems)-i))
			break
		}
		box := "☐ "
		if item.IsCompleted {
			box = "☑ "
		}
		lines = append(lines, runewidth.Truncate(box+item.Content, width, "…"))
	}

	var meta []string
	for _, id := range n.Labels {
		meta = append(meta, "#"+reg.Name(id))
	}
	if len(n.Images) > 0 {
		meta = append(meta, fmt.Sprintf("▣ %d", len(n.Images)))
	}
	if len(meta) > 0 {
		lines = append(lines, runewidth.Truncate(strings.Join(meta, " "), width, "…"))
	}
	return lines
}
