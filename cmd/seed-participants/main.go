package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/quadra2003/networking-lunches/internal/seed"
	"github.com/quadra2003/networking-lunches/pkg/logger"
)

// Default configuration constants.
const (
	defaultCount      = 200
	defaultSeed       = 1
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		count   = flag.Int("count", defaultCount, "Number of participants to generate and submit")
		cycle   = flag.String("cycle", "", "Cycle tag for every signup, e.g. 2026-q3")
		workers = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent submitters")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		rngSeed = flag.Int64("seed", defaultSeed, "Random seed; reruns with the same seed submit identical signups")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *cycle == "" {
		os.Stderr.WriteString("missing -cycle; e.g. -cycle 2026-q3\n")
		flag.Usage()
		return
	}

	if err := logger.Init("text"); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL: *baseURL,
		Count:   *count,
		Cycle:   *cycle,
		Workers: *workers,
		Timeout: *timeout,
		Seed:    *rngSeed,
		Verbose: *verbose,
	}

	stats, err := seed.Run(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("seeding failed: " + err.Error() + "\n")
		return
	}
	fmt.Printf("submitted %d signups: %d accepted, %d duplicate, %d failed\n",
		stats.Submitted, stats.Successful, stats.Duplicate, stats.Failed)
}
