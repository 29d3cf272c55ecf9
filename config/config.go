package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// OutputConfig selects the MIDI output port notes are sent to
type OutputConfig struct {
	PortName  string `json:"portName,omitempty"`
	PortIndex int    `json:"portIndex"` // -1 = unset
	Channel   uint8  `json:"channel,omitempty"`
}

// InputConfig selects a MIDI keyboard to practise with
type InputConfig struct {
	PortName string `json:"portName,omitempty"`
}

// TrainerConfig tunes the walk-throughs
type TrainerConfig struct {
	HoldMs     int `json:"holdMs"`
	Velocity   int `json:"velocity"`
	ArpeggioMs int `json:"arpeggioMs"`
}

type PlaybackConfig struct {
	PollMs int `json:"pollMs"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // built-in name or .gpl path
}

// Config is the main configuration structure
type Config struct {
	Output      OutputConfig   `json:"output"`
	Input       InputConfig    `json:"input,omitempty"`
	Trainer     TrainerConfig  `json:"trainer"`
	Playback    PlaybackConfig `json:"playback"`
	UI          UIConfig       `json:"ui,omitempty"`
	CatalogPath string         `json:"catalogPath,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{PortIndex: -1},
		Trainer: TrainerConfig{
			HoldMs:     500,
			Velocity:   64,
			ArpeggioMs: 300,
		},
		Playback: PlaybackConfig{PollMs: 10},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "maestro"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file. Fields missing from the file keep their
// defaults.
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
	cfg.clamp()
	return cfg, nil
}

// clamp pulls hand-edited values back into range
func (c *Config) clamp() {
	d := DefaultConfig()
	if c.Trainer.HoldMs <= 0 {
		c.Trainer.HoldMs = d.Trainer.HoldMs
	}
	if c.Trainer.ArpeggioMs <= 0 {
		c.Trainer.ArpeggioMs = d.Trainer.ArpeggioMs
	}
	if c.Trainer.Velocity < 0 || c.Trainer.Velocity > 127 {
		c.Trainer.Velocity = d.Trainer.Velocity
	}
	if c.Playback.PollMs <= 0 {
		c.Playback.PollMs = d.Playback.PollMs
	}
	c.Output.Channel &= 0x0F
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

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

// SetOutput records the preferred output port. Name wins over index when
// both are known, since indexes shift when devices are plugged in.
func (c *Config) SetOutput(index int, name string) {
	c.Output.PortIndex = index
	c.Output.PortName = name
}
