// Package config handles application configuration and setup
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/profile"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// LoadProfile returns the default hardware profile overlaid with the values
// of the JSON file at path. An empty path returns the default profile.
func LoadProfile(path string) (profile.Profile, error) {
	prof := profile.Default()
	if path == "" {
		return prof, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &prof); err != nil {
		return profile.Profile{}, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if err := overlayPeripherals(data, &prof); err != nil {
		return profile.Profile{}, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if err := prof.Validate(); err != nil {
		return profile.Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return prof, nil
}

// overlayPeripherals decodes every peripheral cost entry onto its default
// cost, decoding into the profile map would reset fields that the file does
// not set.
func overlayPeripherals(data []byte, prof *profile.Profile) error {
	var overlay struct {
		Peripherals map[peripheral.Kind]json.RawMessage `json:"peripherals"`
	}
	if err := json.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("decoding peripherals: %w", err)
	}

	defaults := profile.Default().Peripherals
	if prof.Peripherals == nil {
		prof.Peripherals = make(map[peripheral.Kind]profile.PeripheralCost, len(overlay.Peripherals))
	}
	for kind, raw := range overlay.Peripherals {
		cost := defaults[kind]
		if err := json.Unmarshal(raw, &cost); err != nil {
			return fmt.Errorf("decoding %s cost: %w", kind, err)
		}
		prof.Peripherals[kind] = cost
	}
	return nil
}
