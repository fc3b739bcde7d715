package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	configDir  = ".config/notegrid"
	configFile = "config.json"
)

var (
	testPathMu     sync.RWMutex
	testConfigPath string
)

// rawConfig is the JSON-unmarshaling intermediary. Pointers and string
// durations distinguish "unset" from zero values.
type rawConfig struct {
	Storage rawStorageConfig `json:"storage"`
	Undo    rawUndoConfig    `json:"undo"`
	Drag    rawDragConfig    `json:"drag"`
	Session SessionConfig    `json:"session"`
	Keymap  KeymapConfig     `json:"keymap"`
	UI      rawUIConfig      `json:"ui"`
}

type rawStorageConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
}

type rawUndoConfig struct {
	Window       string `json:"window"`
	WindowNoUndo string `json:"windowNoUndo"`
}

type rawDragConfig struct {
	Threshold       *int     `json:"threshold"`
	EdgeBand        *int     `json:"edgeBand"`
	MaxScrollSpeed  *float64 `json:"maxScrollSpeed"`
	SwapInterval    string   `json:"swapInterval"`
	Settle          string   `json:"settle"`
	HysteresisScale *float64 `json:"hysteresisScale"`
}

type rawUIConfig struct {
	ShowFooter    *bool  `json:"showFooter"`
	Preview       *bool  `json:"preview"`
	FrameInterval string `json:"frameInterval"`
	CellWidth     *int   `json:"cellWidth"`
	CellHeight    *int   `json:"cellHeight"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses ~/.config/notegrid/config.json
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ConfigPath()
		if path == "" {
			return finish(cfg) // Return defaults on error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return finish(cfg) // Return defaults if no config file
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Merge raw config into defaults
	mergeConfig(cfg, &raw)
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) {
	// Storage
	if raw.Storage.Driver != "" {
		cfg.Storage.Driver = raw.Storage.Driver
	}
	if raw.Storage.Path != "" {
		cfg.Storage.Path = raw.Storage.Path
	}

	// Undo
	mergeDuration(&cfg.Undo.Window, raw.Undo.Window)
	mergeDuration(&cfg.Undo.WindowNoUndo, raw.Undo.WindowNoUndo)

	// Drag
	if raw.Drag.Threshold != nil {
		cfg.Drag.Threshold = *raw.Drag.Threshold
	}
	if raw.Drag.EdgeBand != nil {
		cfg.Drag.EdgeBand = *raw.Drag.EdgeBand
	}
	if raw.Drag.MaxScrollSpeed != nil {
		cfg.Drag.MaxScrollSpeed = *raw.Drag.MaxScrollSpeed
	}
	mergeDuration(&cfg.Drag.SwapInterval, raw.Drag.SwapInterval)
	mergeDuration(&cfg.Drag.Settle, raw.Drag.Settle)
	if raw.Drag.HysteresisScale != nil {
		cfg.Drag.HysteresisScale = *raw.Drag.HysteresisScale
	}

	// Session
	if raw.Session.UserID != "" {
		cfg.Session.UserID = raw.Session.UserID
	}

	// Keymap
	for k, v := range raw.Keymap.Overrides {
		cfg.Keymap.Overrides[k] = v
	}

	// UI
	if raw.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *raw.UI.ShowFooter
	}
	if raw.UI.Preview != nil {
		cfg.UI.Preview = *raw.UI.Preview
	}
	mergeDuration(&cfg.UI.FrameInterval, raw.UI.FrameInterval)
	if raw.UI.CellWidth != nil {
		cfg.UI.CellWidth = *raw.UI.CellWidth
	}
	if raw.UI.CellHeight != nil {
		cfg.UI.CellHeight = *raw.UI.CellHeight
	}
}

// mergeDuration parses s into *dst, leaving dst alone when s is empty or bad.
func mergeDuration(dst *time.Duration, s string) {
	if s == "" {
		return
	}
	if d, err := time.ParseDuration(s); err == nil {
		*dst = d
	}
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	testPathMu.RLock()
	p := testConfigPath
	testPathMu.RUnlock()
	if p != "" {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}

// SetTestConfigPath redirects ConfigPath, for tests.
func SetTestConfigPath(path string) {
	testPathMu.Lock()
	testConfigPath = path
	testPathMu.Unlock()
}

// ResetTestConfigPath undoes SetTestConfigPath.
func ResetTestConfigPath() {
	SetTestConfigPath("")
}
