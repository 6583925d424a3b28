package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go-pianoroll/classify"
	"go-pianoroll/layout"
)

// LayoutConfig controls the rendered grid
type LayoutConfig struct {
	MinOpacity float64 `json:"minOpacity"`
	Bars       int     `json:"bars,omitempty"` // 0 = whole song
	Labels     bool    `json:"labels"`
}

// ClassifyConfig tunes the role heuristics
type ClassifyConfig struct {
	PercussionChannel uint8 `json:"percussionChannel"`
	BassCeiling       uint8 `json:"bassCeiling"`
	ChordPolyphony    int   `json:"chordPolyphony"`
}

// OutputConfig says where documents go
type OutputConfig struct {
	Dir string `json:"dir,omitempty"` // empty = ~/.config/go-pianoroll/layouts
	PNG bool   `json:"png,omitempty"` // draw an image next to saved documents
}

// Config is the main configuration structure
type Config struct {
	Layout      LayoutConfig   `json:"layout"`
	Classify    ClassifyConfig `json:"classify"`
	Output      OutputConfig   `json:"output,omitempty"`
	MaxWorkers  int            `json:"maxWorkers,omitempty"` // 0 = GOMAXPROCS
	CatalogPath string         `json:"catalogPath,omitempty"`
	PalettePath string         `json:"palettePath,omitempty"` // GIMP .gpl, empty = built in
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cls := classify.DefaultOptions()
	return &Config{
		Layout: LayoutConfig{
			MinOpacity: layout.DefaultMinOpacity,
			Labels:     true,
		},
		Classify: ClassifyConfig{
			PercussionChannel: cls.PercussionChannel,
			BassCeiling:       cls.BassCeiling,
			ChordPolyphony:    cls.ChordPolyphony,
		},
	}
}

// LayoutOptions converts the layout section for the layout engine
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		Bars:       c.Layout.Bars,
		MinOpacity: c.Layout.MinOpacity,
		Labels:     c.Layout.Labels,
	}
}

// ClassifyOptions converts the classify section for the classifier
func (c *Config) ClassifyOptions() classify.Options {
	return classify.Options{
		PercussionChannel: c.Classify.PercussionChannel,
		BassCeiling:       c.Classify.BassCeiling,
		ChordPolyphony:    c.Classify.ChordPolyphony,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianoroll"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// OutputDir returns where layout documents are saved
func (c *Config) OutputDir() (string, error) {
	if c.Output.Dir != "" {
		return c.Output.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "layouts"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config from path. Keys missing from the file keep their
// default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
