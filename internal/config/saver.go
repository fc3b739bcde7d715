package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	Storage StorageConfig  `json:"storage"`
	Undo    saveUndoConfig `json:"undo"`
	Drag    saveDragConfig `json:"drag"`
	Session SessionConfig  `json:"session"`
	Keymap  KeymapConfig   `json:"keymap"`
	UI      saveUIConfig   `json:"ui"`
}

type saveUndoConfig struct {
	Window       string `json:"window,omitempty"`
	WindowNoUndo string `json:"windowNoUndo,omitempty"`
}

type saveDragConfig struct {
	Threshold       int     `json:"threshold"`
	EdgeBand        int     `json:"edgeBand"`
	MaxScrollSpeed  float64 `json:"maxScrollSpeed"`
	SwapInterval    string  `json:"swapInterval,omitempty"`
	Settle          string  `json:"settle,omitempty"`
	HysteresisScale float64 `json:"hysteresisScale"`
}

type saveUIConfig struct {
	ShowFooter    *bool  `json:"showFooter,omitempty"`
	Preview       *bool  `json:"preview,omitempty"`
	FrameInterval string `json:"frameInterval,omitempty"`
	CellWidth     int    `json:"cellWidth"`
	CellHeight    int    `json:"cellHeight"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Storage: cfg.Storage,
		Undo: saveUndoConfig{
			Window:       cfg.Undo.Window.String(),
			WindowNoUndo: cfg.Undo.WindowNoUndo.String(),
		},
		Drag: saveDragConfig{
			Threshold:       cfg.Drag.Threshold,
			EdgeBand:        cfg.Drag.EdgeBand,
			MaxScrollSpeed:  cfg.Drag.MaxScrollSpeed,
			SwapInterval:    cfg.Drag.SwapInterval.String(),
			Settle:          cfg.Drag.Settle.String(),
			HysteresisScale: cfg.Drag.HysteresisScale,
		},
		Session: cfg.Session,
		Keymap:  cfg.Keymap,
		UI: saveUIConfig{
			ShowFooter:    &cfg.UI.ShowFooter,
			Preview:       &cfg.UI.Preview,
			FrameInterval: cfg.UI.FrameInterval.String(),
			CellWidth:     cfg.UI.CellWidth,
			CellHeight:    cfg.UI.CellHeight,
		},
	}
}

// Save writes the config to ~/.config/notegrid/config.json. Top-level keys
// it does not manage are kept as they are in the existing file.
func Save(cfg *Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("no config path")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	merged := make(map[string]json.RawMessage)
	if existing, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(existing, &merged); err != nil {
			return fmt.Errorf("parse existing config: %w", err)
		}
	}

	managed, err := json.Marshal(toSaveConfig(cfg))
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(managed, &fields); err != nil {
		return err
	}
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// SaveKeyOverride updates a single key binding override and saves.
func SaveKeyOverride(key, command string) error {
	cfg, err := LoadFrom(ConfigPath())
	if err != nil {
		return err
	}
	if command == "" {
		delete(cfg.Keymap.Overrides, key)
	} else {
		cfg.Keymap.Overrides[key] = command
	}
	return Save(cfg)
}
