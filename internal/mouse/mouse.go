// Package mouse provides hit testing and click/drag/wheel classification for
// bubbletea mouse messages.
package mouse

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	doubleClickWindow = 400 * time.Millisecond
	scrollStep        = 3
)

// Rect is a screen rectangle in cells. X/Y is the top-left corner; the right
// and bottom edges are exclusive.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Bottom is the first row below r.
func (r Rect) Bottom() int { return r.Y + r.H }

// Right is the first column right of r.
func (r Rect) Right() int { return r.X + r.W }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Region is a named, hit-testable area with optional payload.
type Region struct {
	ID   string
	Rect Rect
	Data any
}

// HitMap holds the regions drawn in the last render.
type HitMap struct {
	regions []Region
}

// NewHitMap returns an empty hit map.
func NewHitMap() *HitMap {
	return &HitMap{}
}

// Add registers a region. Later regions are on top of earlier ones.
func (h *HitMap) Add(id string, rect Rect, data any) {
	h.regions = append(h.regions, Region{ID: id, Rect: rect, Data: data})
}

// AddRect registers a region from its coordinates.
func (h *HitMap) AddRect(id string, x, y, w, h2 int, data any) {
	h.Add(id, Rect{X: x, Y: y, W: w, H: h2}, data)
}

// Test returns the top-most region containing (x, y), or nil.
func (h *HitMap) Test(x, y int) *Region {
	for i := len(h.regions) - 1; i >= 0; i-- {
		if h.regions[i].Rect.Contains(x, y) {
			r := h.regions[i]
			return &r
		}
	}
	return nil
}

// Find returns the top-most region registered under id.
func (h *HitMap) Find(id string) (Region, bool) {
	for i := len(h.regions) - 1; i >= 0; i-- {
		if h.regions[i].ID == id {
			return h.regions[i], true
		}
	}
	return Region{}, false
}

// Clear drops every region.
func (h *HitMap) Clear() {
	h.regions = h.regions[:0]
}

// Regions returns a copy of the registered regions in insertion order.
func (h *HitMap) Regions() []Region {
	out := make([]Region, len(h.regions))
	copy(out, h.regions)
	return out
}

// ActionType classifies a mouse message.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionDoubleClick
	ActionScrollUp
	ActionScrollDown
	ActionScrollLeft
	ActionScrollRight
	ActionDrag
	ActionDragEnd
	ActionHover
)

// MouseAction is the classified result of HandleMouse.
type MouseAction struct {
	Type   ActionType
	Region *Region
	X, Y   int
	// Delta is the scroll amount for wheel actions.
	Delta int
	// DragDX/DragDY are the offsets from the drag start.
	DragDX, DragDY int
}

// ClickResult is returned by HandleClick.
type ClickResult struct {
	Region        *Region
	IsDoubleClick bool
}

// Handler tracks click timing and drag state on top of a HitMap.
type Handler struct {
	HitMap *HitMap

	lastClickID   string
	lastClickTime time.Time

	dragging       bool
	dragRegion     string
	dragStartX     int
	dragStartY     int
	dragStartValue int
}

// NewHandler returns a handler with an empty hit map.
func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap()}
}

// HandleClick hit tests a press and detects double clicks on the same region.
func (h *Handler) HandleClick(x, y int) ClickResult {
	region := h.HitMap.Test(x, y)
	if region == nil {
		h.lastClickID = ""
		return ClickResult{}
	}

	now := time.Now()
	double := region.ID == h.lastClickID && now.Sub(h.lastClickTime) < doubleClickWindow
	if double {
		// A third click starts a new pair.
		h.lastClickID = ""
	} else {
		h.lastClickID = region.ID
		h.lastClickTime = now
	}
	return ClickResult{Region: region, IsDoubleClick: double}
}

// StartDrag begins tracking a drag from (x, y). startValue is an arbitrary
// caller value captured at drag start, such as an index or a width.
func (h *Handler) StartDrag(x, y int, region string, startValue int) {
	h.dragging = true
	h.dragRegion = region
	h.dragStartX = x
	h.dragStartY = y
	h.dragStartValue = startValue
}

// IsDragging reports whether a drag is in progress.
func (h *Handler) IsDragging() bool { return h.dragging }

// DragRegion is the region id the drag started on.
func (h *Handler) DragRegion() string { return h.dragRegion }

// DragStartValue is the value passed to StartDrag.
func (h *Handler) DragStartValue() int { return h.dragStartValue }

// DragDelta returns the offset of (x, y) from the drag start.
func (h *Handler) DragDelta(x, y int) (int, int) {
	return x - h.dragStartX, y - h.dragStartY
}

// EndDrag stops drag tracking.
func (h *Handler) EndDrag() {
	h.dragging = false
	h.dragRegion = ""
	h.dragStartValue = 0
}

// Clear drops the hit map regions. Drag state survives a re-render.
func (h *Handler) Clear() {
	h.HitMap.Clear()
}

// HandleMouse classifies a bubbletea mouse message.
func (h *Handler) HandleMouse(msg tea.MouseMsg) MouseAction {
	action := MouseAction{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			action.Region = h.HitMap.Test(msg.X, msg.Y)
			if msg.Shift {
				action.Type = ActionScrollLeft
				action.Delta = -scrollStep
			} else {
				action.Type = ActionScrollUp
				action.Delta = -scrollStep
			}
		case tea.MouseButtonWheelDown:
			action.Region = h.HitMap.Test(msg.X, msg.Y)
			if msg.Shift {
				action.Type = ActionScrollRight
				action.Delta = scrollStep
			} else {
				action.Type = ActionScrollDown
				action.Delta = scrollStep
			}
		case tea.MouseButtonWheelLeft:
			// Natural scrolling reports the wheel direction inverted.
			action.Region = h.HitMap.Test(msg.X, msg.Y)
			action.Type = ActionScrollRight
			action.Delta = scrollStep
		case tea.MouseButtonWheelRight:
			action.Region = h.HitMap.Test(msg.X, msg.Y)
			action.Type = ActionScrollLeft
			action.Delta = -scrollStep
		case tea.MouseButtonLeft:
			click := h.HandleClick(msg.X, msg.Y)
			if click.Region == nil {
				return action
			}
			action.Region = click.Region
			action.Type = ActionClick
			if click.IsDoubleClick {
				action.Type = ActionDoubleClick
			}
		}

	case tea.MouseActionMotion:
		if h.dragging {
			action.Type = ActionDrag
			action.DragDX, action.DragDY = h.DragDelta(msg.X, msg.Y)
			return action
		}
		action.Type = ActionHover
		action.Region = h.HitMap.Test(msg.X, msg.Y)

	case tea.MouseActionRelease:
		if h.dragging {
			action.Type = ActionDragEnd
			action.DragDX, action.DragDY = h.DragDelta(msg.X, msg.Y)
			h.EndDrag()
		}
	}
	return action
}
