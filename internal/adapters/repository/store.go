// Package repository defines the document store contract and its
// in-memory and Mongo-backed implementations.
package repository

import (
	"context"

	"github.com/quadra2003/networking-lunches/internal/domain/model"
)

// Store provides keyed access to participant and group documents.
// Listing order is insertion order, which keeps matching runs
// deterministic for a given submission history.
type Store interface {
	// CreateParticipant persists a new participant and returns its
	// allocated id.
	CreateParticipant(ctx context.Context, p *model.Participant) (string, error)

	// Participant returns one record by id, or ErrNotFound.
	Participant(ctx context.Context, id string) (*model.Participant, error)

	// ParticipantsByStatus lists a cycle's participants with the given
	// status, in insertion order.
	ParticipantsByStatus(ctx context.Context, cycle string, status model.Status) ([]*model.Participant, error)

	// CreateGroup persists a new match group and returns its allocated id.
	CreateGroup(ctx context.Context, g *model.MatchGroup) (string, error)

	// Group returns one group by id, or ErrNotFound.
	Group(ctx context.Context, id string) (*model.MatchGroup, error)

	// GroupsByCycle lists a cycle's groups in insertion order.
	GroupsByCycle(ctx context.Context, cycle string) ([]*model.MatchGroup, error)

	// UpdateGroup replaces a stored group, or returns ErrNotFound.
	UpdateGroup(ctx context.Context, g *model.MatchGroup) error

	// MarkMatched batch-updates participants to matched, setting each
	// one's group back-reference. Missing ids fail the whole batch with
	// ErrNotFound.
	MarkMatched(ctx context.Context, groupByParticipant map[string]string) error

	// Counts reports the stored participant and group totals.
	Counts(ctx context.Context) (participants, groups int)

	// StatusCounts reports how many stored participants are pending and
	// how many are matched, across all cycles.
	StatusCounts(ctx context.Context) (pending, matched int)

	// Close releases store resources.
	Close(ctx context.Context) error
}
