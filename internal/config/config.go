// Package config defines service configuration and its loader.
//
// Values are layered: defaults from New, an optional YAML file named by
// BREEDGRADE_CONFIG, then BREEDGRADE_* environment variables. A .env file is
// read into the environment before the layers are applied.
package config

import (
	"context"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver picks the evaluation store: memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is passed to the SQL driver. Empty uses the driver default.
	StoreDSN string `koanf:"store_dsn"`

	// ListLimit is the page size of GET /api/evaluations without ?limit.
	ListLimit int `koanf:"list_limit"`

	// MaxListLimit caps GET /api/evaluations?limit.
	MaxListLimit int `koanf:"max_list_limit"`

	// CORSOrigins is a comma separated list of allowed origins.
	CORSOrigins string `koanf:"cors_origins"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":8001",
		StoreDriver:  "memory",
		ListLimit:    50,
		MaxListLimit: 500,
		CORSOrigins:  "*",
	}
}

// AllowedOrigins splits CORSOrigins, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
