// Package seed generates and submits synthetic lunch signups against a
// running service, for load testing and demo data.
package seed

import "time"

// Config controls a seeding run.
type Config struct {
	// BaseURL of the service, e.g. http://localhost:9080.
	BaseURL string

	// Count is the number of participants to generate and submit.
	Count int

	// Cycle tags every generated signup, e.g. "2026-q3".
	Cycle string

	// Workers is the number of concurrent submitters.
	Workers int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Seed fixes the random source so runs are reproducible.
	Seed int64

	// Verbose enables per-batch progress logging.
	Verbose bool
}

// Stats accumulates submission results.
type Stats struct {
	Submitted  int
	Successful int
	Duplicate  int
	Failed     int
}
