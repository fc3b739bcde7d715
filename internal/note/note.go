// Package note holds the note model and the note store: a map of notes plus
// the ordered id sequence, mutated only through the pure Reduce function.
package note

import (
	"slices"
	"time"
)

// Color tokens.
const (
	ColorDefault = "Default"
	ColorCoral   = "Coral"
	ColorPeach   = "Peach"
	ColorSand    = "Sand"
	ColorMint    = "Mint"
	ColorSage    = "Sage"
	ColorFog     = "Fog"
	ColorStorm   = "Storm"
	ColorDusk    = "Dusk"
	ColorBlossom = "Blossom"
	ColorClay    = "Clay"
	ColorChalk   = "Chalk"
)

// Colors lists the color tokens in palette order.
var Colors = []string{
	ColorDefault, ColorCoral, ColorPeach, ColorSand, ColorMint, ColorSage,
	ColorFog, ColorStorm, ColorDusk, ColorBlossom, ColorClay, ColorChalk,
}

// Background tokens.
const (
	BackgroundDefault   = "DefaultBg"
	BackgroundGroceries = "Groceries"
	BackgroundFood      = "Food"
	BackgroundMusic     = "Music"
	BackgroundRecipes   = "Recipes"
	BackgroundNotes     = "Notes"
	BackgroundPlaces    = "Places"
	BackgroundTravel    = "Travel"
	BackgroundVideo     = "Video"
	BackgroundCelebrate = "Celebration"
)

// Backgrounds lists the background tokens in palette order.
var Backgrounds = []string{
	BackgroundDefault, BackgroundGroceries, BackgroundFood, BackgroundMusic,
	BackgroundRecipes, BackgroundNotes, BackgroundPlaces, BackgroundTravel,
	BackgroundVideo, BackgroundCelebrate,
}

// Image is an attachment reference.
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ChecklistItem is a single checklist row.
type ChecklistItem struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"isCompleted"`
}

// Note represents a single note.
type Note struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	Color          string          `json:"color"`
	Background     string          `json:"background"`
	IsPinned       bool            `json:"isPinned"`
	IsArchived     bool            `json:"isArchived"`
	IsTrash        bool            `json:"isTrash"`
	Labels         []string        `json:"labels"`
	Images         []Image         `json:"images"`
	ChecklistItems []ChecklistItem `json:"checklistItems"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy so the slices can be changed independently.
func (n Note) Clone() Note {
	n.Labels = slices.Clone(n.Labels)
	n.Images = slices.Clone(n.Images)
	n.ChecklistItems = slices.Clone(n.ChecklistItems)
	return n
}

// HasLabel reports whether labelID is attached to the note.
func (n Note) HasLabel(labelID string) bool {
	return slices.Contains(n.Labels, labelID)
}

// ImageIndex returns the position of the image with the given id, or -1.
func (n Note) ImageIndex(imageID string) int {
	return slices.IndexFunc(n.Images, func(img Image) bool { return img.ID == imageID })
}

// Section is the display grouping a note belongs to.
type Section int

const (
	SectionActive Section = iota
	SectionPinned
	SectionArchived
	SectionTrash
)

// String returns the display name for the section.
func (s Section) String() string {
	switch s {
	case SectionPinned:
		return "Pinned"
	case SectionArchived:
		return "Archived"
	case SectionTrash:
		return "Trash"
	default:
		return "Active"
	}
}

// Section returns the grouping the note is displayed in.
// Trash wins over archived since both flags may be set at once.
func (n Note) Section() Section {
	switch {
	case n.IsTrash:
		return SectionTrash
	case n.IsArchived:
		return SectionArchived
	case n.IsPinned:
		return SectionPinned
	default:
		return SectionActive
	}
}

// Flags is the section-defining flag triple of a note.
type Flags struct {
	Pinned   bool
	Archived bool
	Trash    bool
}

// Flags returns the note's current flag triple.
func (n Note) Flags() Flags {
	return Flags{Pinned: n.IsPinned, Archived: n.IsArchived, Trash: n.IsTrash}
}

// Entry is a selection entry: a note id with the order index and flags
// captured when the note was selected. Batch actions consume entries.
type Entry struct {
	ID         string
	Index      int
	IsPinned   bool
	IsArchived bool
}
