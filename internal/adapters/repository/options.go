// Package repository defines the document store contract and its
// in-memory and Mongo-backed implementations.
package repository

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithSnapshotPath enables JSON snapshot persistence. The file is read
// on open and rewritten after every mutation, so a single-node
// deployment survives restarts.
func WithSnapshotPath(path string) Option {
	return func(s *MemStore) {
		s.snapshotPath = path
	}
}
