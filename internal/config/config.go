package config

import (
	"fmt"
	"os"
	"time"
)

// Storage drivers.
const (
	DriverSQLite  = "sqlite"  // pure Go
	DriverSQLite3 = "sqlite3" // cgo
)

// Config is the root configuration structure.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Undo    UndoConfig    `json:"undo"`
	Drag    DragConfig    `json:"drag"`
	Session SessionConfig `json:"session"`
	Keymap  KeymapConfig  `json:"keymap"`
	UI      UIConfig      `json:"ui"`
}

// StorageConfig selects the note database.
type StorageConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"` // supports ~ expansion
}

// UndoConfig sets how long notifications stay up.
type UndoConfig struct {
	Window       time.Duration `json:"window"`       // with an undo control
	WindowNoUndo time.Duration `json:"windowNoUndo"` // without one
}

// DragConfig tunes drag reordering. Distances are in layout units; see
// UIConfig.CellWidth and CellHeight.
type DragConfig struct {
	Threshold       int           `json:"threshold"`
	EdgeBand        int           `json:"edgeBand"`
	MaxScrollSpeed  float64       `json:"maxScrollSpeed"` // units per second
	SwapInterval    time.Duration `json:"swapInterval"`
	Settle          time.Duration `json:"settle"`
	HysteresisScale float64       `json:"hysteresisScale"`
}

// SessionConfig identifies the acting user.
type SessionConfig struct {
	UserID string `json:"userId"`
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowFooter    bool          `json:"showFooter"`
	Preview       bool          `json:"preview"`
	FrameInterval time.Duration `json:"frameInterval"`
	// CellWidth and CellHeight convert terminal cells to layout units.
	CellWidth  int `json:"cellWidth"`
	CellHeight int `json:"cellHeight"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "~/.local/share/notegrid/notes.db",
		},
		Undo: UndoConfig{
			Window:       6 * time.Second,
			WindowNoUndo: 4 * time.Second,
		},
		Drag: DragConfig{
			Threshold:       5,
			EdgeBand:        80,
			MaxScrollSpeed:  480,
			SwapInterval:    150 * time.Millisecond,
			Settle:          250 * time.Millisecond,
			HysteresisScale: 400,
		},
		Session: SessionConfig{
			UserID: defaultUserID(),
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		UI: UIConfig{
			ShowFooter:    true,
			Preview:       true,
			FrameInterval: 16 * time.Millisecond,
			CellWidth:     8,
			CellHeight:    16,
		},
	}
}

func defaultUserID() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

// Validate resets out-of-range values to their defaults and rejects settings
// that cannot be repaired.
func (c *Config) Validate() error {
	def := Default()

	switch c.Storage.Driver {
	case DriverSQLite, DriverSQLite3:
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}

	if c.Undo.Window <= 0 {
		c.Undo.Window = def.Undo.Window
	}
	if c.Undo.WindowNoUndo <= 0 {
		c.Undo.WindowNoUndo = def.Undo.WindowNoUndo
	}

	if c.Drag.Threshold <= 0 {
		c.Drag.Threshold = def.Drag.Threshold
	}
	if c.Drag.EdgeBand < 0 {
		c.Drag.EdgeBand = def.Drag.EdgeBand
	}
	if c.Drag.MaxScrollSpeed <= 0 {
		c.Drag.MaxScrollSpeed = def.Drag.MaxScrollSpeed
	}
	if c.Drag.SwapInterval <= 0 {
		c.Drag.SwapInterval = def.Drag.SwapInterval
	}
	if c.Drag.Settle <= 0 {
		c.Drag.Settle = def.Drag.Settle
	}
	if c.Drag.HysteresisScale <= 0 {
		c.Drag.HysteresisScale = def.Drag.HysteresisScale
	}

	if c.Session.UserID == "" {
		c.Session.UserID = def.Session.UserID
	}

	if c.UI.FrameInterval <= 0 {
		c.UI.FrameInterval = def.UI.FrameInterval
	}
	if c.UI.CellWidth <= 0 {
		c.UI.CellWidth = def.UI.CellWidth
	}
	if c.UI.CellHeight <= 0 {
		c.UI.CellHeight = def.UI.CellHeight
	}
	return nil
}
