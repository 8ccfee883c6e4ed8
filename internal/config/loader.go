package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if LUNCHES_CONFIG is set
//  3. env (prefix LUNCHES_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("LUNCHES_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: LUNCHES_ADDR, LUNCHES_STORE_BACKEND, ...
	// Map env keys like LUNCHES_NOTIFY_WORKERS -> notify_workers (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("LUNCHES_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "lunches_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreBackend {
	case "memory", "mongo":
	default:
		return fmt.Errorf("%w: store_backend must be memory or mongo, got %q",
			ErrInvalidConfig, c.StoreBackend)
	}
	if c.StoreBackend == "mongo" && c.MongoURI == "" {
		return fmt.Errorf("%w: mongo_uri must be set for the mongo backend", ErrInvalidConfig)
	}
	if c.NotifyQueueSize <= 0 {
		return fmt.Errorf("%w: notify_queue_size must be positive", ErrInvalidConfig)
	}
	if c.NotifyWorkers <= 0 {
		return fmt.Errorf("%w: notify_workers must be positive", ErrInvalidConfig)
	}
	return nil
}
