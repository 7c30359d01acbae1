package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix   = "BREEDGRADE_"
	envConfig   = envPrefix + "CONFIG"
	envDotFile  = envPrefix + "ENV_FILE"
	defaultDotf = ".env"
)

var knownDrivers = map[string]bool{"memory": true, "sqlite": true, "postgres": true} //nolint:gochecknoglobals // lookup table

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if BREEDGRADE_CONFIG is set
//  3. env (prefix BREEDGRADE_), including values from .env
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New(ctx)
	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	// BREEDGRADE_LIST_LIMIT -> list_limit; underscores are kept to match the flat koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if !knownDrivers[c.StoreDriver] {
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.MaxListLimit < 1 {
		return fmt.Errorf("%w: max_list_limit must be positive, got %d", ErrInvalidConfig, c.MaxListLimit)
	}
	if c.ListLimit < 1 || c.ListLimit > c.MaxListLimit {
		return fmt.Errorf("%w: list_limit must be within 1..%d, got %d", ErrInvalidConfig, c.MaxListLimit, c.ListLimit)
	}
	return nil
}

// loadDotEnv reads BREEDGRADE_ENV_FILE (default .env) into the process
// environment. A missing file is not an error; existing variables win.
func loadDotEnv() error {
	path := os.Getenv(envDotFile)
	if path == "" {
		path = defaultDotf
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}
