// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Drill DrillConfig `toml:"drill"`
	MIDI  MIDIConfig  `toml:"midi"`
}

// DrillConfig maps drill-related settings. Nil fields are unset.
type DrillConfig struct {
	Scale        *string  `toml:"scale"`
	Window       *int     `toml:"window"`
	Dampening    *float64 `toml:"dampening"`
	WeightFloor  *float64 `toml:"weight-floor"`
	ReportEvery  *int     `toml:"report-every"`
	Seed         *int64   `toml:"seed"`
	ShowNote     *bool    `toml:"show-note"`
	NoteDuration *string  `toml:"note-duration"`
}

// MIDIConfig maps MIDI port settings.
type MIDIConfig struct {
	In       *string `toml:"in"`
	Out      *string `toml:"out"`
	Channel  *int    `toml:"channel"`
	Velocity *int    `toml:"velocity"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
