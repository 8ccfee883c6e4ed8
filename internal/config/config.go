// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with compiled defaults.
// - Load(ctx) layers defaults, an optional YAML file, and LUNCHES_* env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreBackend selects participant/group persistence: memory or mongo.
	StoreBackend string `koanf:"store_backend"`

	// MongoURI and MongoDatabase apply when StoreBackend is mongo.
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`

	// SnapshotPath persists the memory store between restarts when set.
	SnapshotPath string `koanf:"snapshot_path"`

	// NotifyQueueSize bounds the in-memory invitation queue.
	NotifyQueueSize int `koanf:"notify_queue_size"`

	// NotifyWorkers sets the number of invitation delivery workers.
	NotifyWorkers int `koanf:"notify_workers"`

	// DedupeSize sets the size of the submission deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config with compiled defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		StoreBackend:    "memory",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "lunches",
		SnapshotPath:    "",
		NotifyQueueSize: 10_000,
		NotifyWorkers:   runtime.NumCPU(),
		DedupeSize:      100_000,
	}
}
