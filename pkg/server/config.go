package server

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config are the tunables of a matchmaking Server. Populated from CLI flag
// defaults and optionally overlaid with a TOML file, so an operator can
// check a config into source control instead of a long flag line.
type Config struct {
	Port       int
	Timeout    time.Duration
	MaxGames   int
	NumPlayers int
}

// fileConfig mirrors Config for TOML decoding; durations aren't natively
// supported by BurntSushi/toml, so TimeoutSeconds is decoded as a float and
// converted.
type fileConfig struct {
	Port           int     `toml:"port"`
	TimeoutSeconds float64 `toml:"timeout_seconds"`
	MaxGames       int     `toml:"max_games"`
	NumPlayers     int     `toml:"num_players"`
}

// LoadConfigFile overlays the contents of a TOML config file onto a base
// Config. Zero-valued fields in the file are left untouched, so the file can
// override only the settings an operator cares about.
func LoadConfigFile(path string, base Config) (Config, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return base, fmt.Errorf("load config %v: %w", path, err)
	}

	cfg := base
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if fc.TimeoutSeconds != 0 {
		cfg.Timeout = time.Duration(fc.TimeoutSeconds * float64(time.Second))
	}
	if fc.MaxGames != 0 {
		cfg.MaxGames = fc.MaxGames
	}
	if fc.NumPlayers != 0 {
		cfg.NumPlayers = fc.NumPlayers
	}
	return cfg, nil
}
