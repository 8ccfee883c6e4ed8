package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quadra2003/networking-lunches/internal/domain/model"
	"github.com/quadra2003/networking-lunches/pkg/metrics"
)

const snapshotFilePermission = 0o600

// MemStore is a mutex-guarded in-memory Store. Maps give keyed access;
// the id slices preserve insertion order for listing. With a snapshot
// path configured, state is reloaded on open and rewritten after every
// mutation.
type MemStore struct {
	mu sync.RWMutex

	participants     map[string]*model.Participant
	participantOrder []string
	groups           map[string]*model.MatchGroup
	groupOrder       []string

	snapshotPath string
	closed       bool
}

// memSnapshot is the JSON shape written to the snapshot file.
type memSnapshot struct {
	Participants []*model.Participant `json:"participants"`
	Groups       []*model.MatchGroup  `json:"groups"`
}

// NewMemStore creates an in-memory store, loading the snapshot file if
// one is configured and present.
func NewMemStore(ctx context.Context, opts ...Option) (*MemStore, error) {
	s := &MemStore{
		participants: make(map[string]*model.Participant),
		groups:       make(map[string]*model.MatchGroup),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.snapshotPath != "" {
		if err := s.loadSnapshot(); err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
	}
	return s, nil
}

// CreateParticipant persists a new participant and returns its id.
func (s *MemStore) CreateParticipant(ctx context.Context, p *model.Participant) (string, error) {
	defer observe("create_participant", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	cp := *p
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	s.participants[cp.ID] = &cp
	s.participantOrder = append(s.participantOrder, cp.ID)
	return cp.ID, s.persistLocked()
}

// Participant returns one record by id.
func (s *MemStore) Participant(ctx context.Context, id string) (*model.Participant, error) {
	defer observe("get_participant", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	p, ok := s.participants[id]
	if !ok {
		return nil, fmt.Errorf("participant %s: %w", id, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// ParticipantsByStatus lists a cycle's participants with the given
// status in insertion order.
func (s *MemStore) ParticipantsByStatus(ctx context.Context, cycle string, status model.Status) ([]*model.Participant, error) {
	defer observe("list_participants", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var out []*model.Participant
	for _, id := range s.participantOrder {
		p := s.participants[id]
		if p.Cycle == cycle && p.Status == status {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CreateGroup persists a new match group and returns its id.
func (s *MemStore) CreateGroup(ctx context.Context, g *model.MatchGroup) (string, error) {
	defer observe("create_group", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}

	cg := *g
	if cg.ID == "" {
		cg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cg.CreatedAt = now
	cg.UpdatedAt = now

	s.groups[cg.ID] = &cg
	s.groupOrder = append(s.groupOrder, cg.ID)
	return cg.ID, s.persistLocked()
}

// Group returns one group by id.
func (s *MemStore) Group(ctx context.Context, id string) (*model.MatchGroup, error) {
	defer observe("get_group", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	cg := *g
	return &cg, nil
}

// GroupsByCycle lists a cycle's groups in insertion order.
func (s *MemStore) GroupsByCycle(ctx context.Context, cycle string) ([]*model.MatchGroup, error) {
	defer observe("list_groups", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var out []*model.MatchGroup
	for _, id := range s.groupOrder {
		g := s.groups[id]
		if g.Cycle == cycle {
			cg := *g
			out = append(out, &cg)
		}
	}
	return out, nil
}

// UpdateGroup replaces a stored group.
func (s *MemStore) UpdateGroup(ctx context.Context, g *model.MatchGroup) error {
	defer observe("update_group", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	old, ok := s.groups[g.ID]
	if !ok {
		return fmt.Errorf("group %s: %w", g.ID, ErrNotFound)
	}

	cg := *g
	cg.CreatedAt = old.CreatedAt
	cg.UpdatedAt = time.Now().UTC()
	s.groups[g.ID] = &cg
	return s.persistLocked()
}

// MarkMatched batch-updates participants to matched with their group
// back-references. The whole batch fails on the first missing id.
func (s *MemStore) MarkMatched(ctx context.Context, groupByParticipant map[string]string) error {
	defer observe("mark_matched", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for id := range groupByParticipant {
		if _, ok := s.participants[id]; !ok {
			return fmt.Errorf("participant %s: %w", id, ErrNotFound)
		}
	}

	now := time.Now().UTC()
	for id, groupID := range groupByParticipant {
		p := s.participants[id]
		p.Status = model.StatusMatched
		p.MatchGroupID = groupID
		p.UpdatedAt = now
	}
	return s.persistLocked()
}

// Counts reports stored totals.
func (s *MemStore) Counts(ctx context.Context) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants), len(s.groups)
}

// StatusCounts reports pending and matched participant totals.
func (s *MemStore) StatusCounts(ctx context.Context) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending, matched int
	for _, p := range s.participants {
		switch p.Status {
		case model.StatusPending:
			pending++
		case model.StatusMatched:
			matched++
		}
	}
	return pending, matched
}

// Close marks the store closed; a configured snapshot is written one
// last time.
func (s *MemStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	err := s.persistLocked()
	s.closed = true
	return err
}

// loadSnapshot restores state from the snapshot file. A missing file is
// a clean first start.
func (s *MemStore) loadSnapshot() error {
	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var snap memSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	for _, p := range snap.Participants {
		s.participants[p.ID] = p
		s.participantOrder = append(s.participantOrder, p.ID)
	}
	for _, g := range snap.Groups {
		s.groups[g.ID] = g
		s.groupOrder = append(s.groupOrder, g.ID)
	}
	return nil
}

// persistLocked rewrites the snapshot file. Must be called with s.mu
// held for writing.
func (s *MemStore) persistLocked() error {
	if s.snapshotPath == "" {
		return nil
	}

	snap := memSnapshot{}
	for _, id := range s.participantOrder {
		snap.Participants = append(snap.Participants, s.participants[id])
	}
	for _, id := range s.groupOrder {
		snap.Groups = append(snap.Groups, s.groups[id])
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(s.snapshotPath, data, snapshotFilePermission); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// observe records a store op latency metric.
func observe(op string, start time.Time) {
	metrics.RecordStoreOpLatency(op, float64(time.Since(start).Milliseconds()))
}
