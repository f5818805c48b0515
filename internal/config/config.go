// Package config loads console configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Arnav139/bigads-console/pkg/domain"
)

// Config is everything the console reads from the environment.
type Config struct {
	// BackendURL is the BigAds API base URL.
	BackendURL string `env:"BIGADS_BACKEND_URL" envDefault:"http://localhost:4000"`
	// Home is where the session file and debug log live; defaults to
	// ~/.bigads when unset.
	Home string `env:"BIGADS_HOME"`
	// Token overrides the persisted session's bearer token for this run
	// without writing it to disk.
	Token string `env:"BIGADS_TOKEN"`
	// FallbackFireToken pre-authorizes credential-captured fires when no
	// session exists. Test fixture only; leave unset in real use.
	FallbackFireToken string `env:"BIGADS_FALLBACK_FIRE_TOKEN"`
	// Debug enables request logging to the debug log file.
	Debug bool `env:"BIGADS_DEBUG"`

	PolygonExplorerURL  string `env:"BIGADS_POLYGON_EXPLORER" envDefault:"https://polygonscan.com/tx/"`
	DiamanteExplorerURL string `env:"BIGADS_DIAMANTE_EXPLORER" envDefault:"https://explorer.diamante.io/tx/"`
}

// Load parses the environment. A .env in the working directory is applied
// first when present; a missing one is not an error.
func Load() (Config, error) {
	godotenv.Load() //nolint:errcheck // .env is optional

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.Home = filepath.Join(home, ".bigads")
	}
	return cfg, nil
}

// SessionPath is where the persisted session lives.
func (c Config) SessionPath() string {
	return filepath.Join(c.Home, "session.json")
}

// LogPath is where debug logs are written; the TUI owns stdout.
func (c Config) LogPath() string {
	return filepath.Join(c.Home, "debug.log")
}

// ExplorerTxURL returns the block-explorer page for a transaction, or "" for
// an unknown chain.
func (c Config) ExplorerTxURL(chain domain.Chain, hash string) string {
	switch chain {
	case domain.ChainPolygon:
		return c.PolygonExplorerURL + hash
	case domain.ChainDiamante:
		return c.DiamanteExplorerURL + hash
	default:
		return ""
	}
}
