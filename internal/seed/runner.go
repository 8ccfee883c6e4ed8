package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/quadra2003/networking-lunches/pkg/logger"
)

// Run generates signups and submits them to the configured service.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Count <= 0 {
		return nil, errors.New("count must be positive")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Cycle == "" {
		return nil, errors.New("cycle must be set")
	}

	log := logger.Get().Named("seed")
	log.Info(ctx, "generating signups",
		logger.Int("count", cfg.Count),
		logger.String("cycle", cfg.Cycle),
		logger.Any("seed", cfg.Seed))

	signups := Generate(cfg.Count, cfg.Cycle, cfg.Seed)

	stats, err := submit(ctx, cfg, signups)
	if err != nil {
		return stats, fmt.Errorf("seeding run failed: %w", err)
	}
	return stats, nil
}
