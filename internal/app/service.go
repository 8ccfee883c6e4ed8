// Package app provides the core business service that implements the
// dependencies required by the HTTP API: preference intake, matching
// runs, group review and finalization, and notification fan-out.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	notifyqueue "github.com/quadra2003/networking-lunches/internal/adapters/mq/queue"
	workerpool "github.com/quadra2003/networking-lunches/internal/adapters/mq/worker"
	repository "github.com/quadra2003/networking-lunches/internal/adapters/repository"
	"github.com/quadra2003/networking-lunches/internal/domain/dedupe"
	"github.com/quadra2003/networking-lunches/internal/domain/matching"
	"github.com/quadra2003/networking-lunches/internal/domain/model"
	"github.com/quadra2003/networking-lunches/pkg/logger"
	"github.com/quadra2003/networking-lunches/pkg/metrics"
)

// RunSummary reports one successful matching run.
type RunSummary struct {
	Cycle    string   `json:"cycle"`
	GroupIDs []string `json:"group_ids"`
	Matched  int      `json:"matched"`
}

// FinalizeResult reports notification fan-out for one finalized group.
// Skipped lists members whose invitation was rejected by queue
// backpressure; the group stays finalized either way.
type FinalizeResult struct {
	GroupID  string   `json:"group_id"`
	Notified []string `json:"notified"`
	Skipped  []string `json:"skipped"`
}

// Service implements the API dependencies for the match service.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	notifyQ    notifyqueue.Queue
	sender     workerpool.Sender
	workerPool *workerpool.Pool

	// Run serialization: one matching run per cycle at a time.
	runMu    sync.Mutex
	inFlight map[string]bool

	// Finalize serialization: the read-check-update in FinalizeGroup
	// must not interleave across requests for the same group.
	finalizeMu sync.Mutex

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects a document store. Without one, Start builds an
// in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSender injects the notification sender. Defaults to the logging
// sender.
func WithSender(sender workerpool.Sender) Option {
	return func(s *Service) {
		if sender != nil {
			s.sender = sender
		}
	}
}

// WithWorkerCount sets the number of delivery workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the notification queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: 4,
		queueSize:   10000,
		dedupeSize:  50000,
		inFlight:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting match service...")

	if s.store == nil {
		store, err := repository.NewMemStore(ctx)
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "using in-memory store")
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.notifyQ = notifyqueue.NewInMemoryQueue(
		notifyqueue.WithCapacity(s.queueSize),
	)
	if s.sender == nil {
		s.sender = workerpool.NewLogSender(s.logger.Named("sender"))
	}

	s.workerPool = workerpool.NewPool(s.workerCount, s.notifyQ, s.sender)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "match service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping match service...")

	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}
	if s.store != nil {
		if err := s.store.Close(ctx); err != nil {
			s.logger.Error(ctx, "store close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "match service stopped")
}

// SubmitParticipant validates and persists one intake submission.
// submissionID, when present, is checked against the idempotency cache;
// duplicates are acknowledged without a second store write.
func (s *Service) SubmitParticipant(ctx context.Context, p *model.Participant, submissionID string) (string, bool, error) {
	if !s.isStarted() {
		return "", false, ErrNotStarted
	}

	if err := validateSubmission(p); err != nil {
		metrics.RecordSubmissionRejected()
		return "", false, err
	}

	if submissionID != "" && s.deduper.SeenAndRecord(ctx, submissionID) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission acknowledged",
			logger.String("submissionID", submissionID),
		)
		return "", true, nil
	}

	p.Status = model.StatusPending
	id, err := s.store.CreateParticipant(ctx, p)
	if err != nil {
		// Allow the client to retry the same submission id.
		if submissionID != "" {
			s.deduper.Unrecord(ctx, submissionID)
		}
		return "", false, fmt.Errorf("persist submission: %w", err)
	}

	metrics.RecordSubmissionAccepted()
	s.logger.Debug(ctx, "submission accepted",
		logger.String("participantID", id),
		logger.String("cycle", p.Cycle),
	)
	return id, false, nil
}

// RunCycle executes one matching run: plan in memory, then commit.
// The commit creates each planned group and finishes with one batched
// participant status update. A commit failure surfaces as *RunError
// carrying the groups already created; nothing is rolled back.
func (s *Service) RunCycle(ctx context.Context, cycle string) (*RunSummary, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}

	if !s.beginRun(cycle) {
		return nil, fmt.Errorf("cycle %s: %w", cycle, ErrRunInFlight)
	}
	defer s.endRun(cycle)

	start := time.Now()
	metrics.RecordRunStarted()

	pending, err := s.store.ParticipantsByStatus(ctx, cycle, model.StatusPending)
	if err != nil {
		metrics.RecordRunFailed()
		return nil, &RunError{Cycle: cycle, Err: err}
	}
	metrics.RecordParticipantsClassified(len(pending))

	planned, planStats, err := matching.Plan(pending, cycle)
	if err != nil {
		metrics.RecordRunFailed()
		return nil, fmt.Errorf("plan cycle %s: %w", cycle, err)
	}
	metrics.RecordBackfillAdditions(planStats.Backfilled)
	metrics.RecordGroupsDropped(planStats.Dropped)

	// Commit phase: one create per group to allocate ids.
	groupIDs := make([]string, 0, len(planned))
	for _, pg := range planned {
		id, err := s.store.CreateGroup(ctx, &model.MatchGroup{
			Cycle:     pg.Cycle,
			Slot:      pg.Slot,
			Location:  pg.Location,
			MemberIDs: pg.MemberIDs,
		})
		if err != nil {
			metrics.RecordRunFailed()
			return nil, &RunError{Cycle: cycle, Committed: groupIDs, Err: err}
		}
		groupIDs = append(groupIDs, id)
		metrics.RecordGroupBuilt(len(pg.MemberIDs))
	}

	// Batched status update; the back-reference is the most recently
	// assigned group for members that backfill placed twice.
	assignments := make(map[string]string)
	for participantID, groupIdx := range matching.LastAssigned(planned) {
		assignments[participantID] = groupIDs[groupIdx]
	}
	if len(assignments) > 0 {
		if err := s.store.MarkMatched(ctx, assignments); err != nil {
			metrics.RecordRunFailed()
			return nil, &RunError{Cycle: cycle, Committed: groupIDs, Err: err}
		}
	}

	metrics.RecordRunCompleted()
	metrics.RecordRunDuration(float64(time.Since(start).Milliseconds()))

	s.logger.Info(ctx, "matching run completed",
		logger.String("cycle", cycle),
		logger.Int("pending", len(pending)),
		logger.Int("groups", len(groupIDs)),
		logger.Int("matched", len(assignments)),
	)
	return &RunSummary{Cycle: cycle, GroupIDs: groupIDs, Matched: len(assignments)}, nil
}

// Group returns one match group by id.
func (s *Service) Group(ctx context.Context, id string) (*model.MatchGroup, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.store.Group(ctx, id)
}

// GroupsByCycle lists a cycle's groups.
func (s *Service) GroupsByCycle(ctx context.Context, cycle string) ([]*model.MatchGroup, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.store.GroupsByCycle(ctx, cycle)
}

// Participant returns one participant record by id.
func (s *Service) Participant(ctx context.Context, id string) (*model.Participant, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.store.Participant(ctx, id)
}

// FinalizeGroup marks a draft group final with its concrete meeting
// time and venue, then enqueues one invitation per member. Members hit
// by queue backpressure are reported in Skipped rather than failing the
// finalization.
func (s *Service) FinalizeGroup(ctx context.Context, groupID string, meetingTime time.Time, venue string) (*FinalizeResult, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}

	g, err := s.finalizeOnce(ctx, groupID, meetingTime, venue)
	if err != nil {
		return nil, err
	}

	result := &FinalizeResult{GroupID: groupID}
	for _, memberID := range g.MemberIDs {
		p, err := s.store.Participant(ctx, memberID)
		if err != nil {
			s.logger.Warn(ctx, "group member missing, invitation skipped",
				logger.String("groupID", groupID),
				logger.String("memberID", memberID),
				logger.Error(err),
			)
			result.Skipped = append(result.Skipped, memberID)
			continue
		}

		ok := s.notifyQ.Enqueue(ctx, notifyqueue.Job{
			GroupID:     g.ID,
			Cycle:       g.Cycle,
			Slot:        g.Slot,
			Location:    g.Location,
			MeetingTime: g.MeetingTime,
			Venue:       g.Venue,
			MemberID:    p.ID,
			MemberName:  p.Name,
			Email:       p.Email,
		})
		if !ok {
			result.Skipped = append(result.Skipped, memberID)
			continue
		}
		result.Notified = append(result.Notified, memberID)
	}

	s.logger.Info(ctx, "group finalized",
		logger.String("groupID", groupID),
		logger.Int("notified", len(result.Notified)),
		logger.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// finalizeOnce performs the read-check-update of one finalization
// under finalizeMu, so two concurrent requests for the same group
// cannot both pass the IsFinalized check and double-invite its
// members. It returns the finalized copy for the fan-out.
func (s *Service) finalizeOnce(ctx context.Context, groupID string, meetingTime time.Time, venue string) (*model.MatchGroup, error) {
	s.finalizeMu.Lock()
	defer s.finalizeMu.Unlock()

	g, err := s.store.Group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.IsFinalized {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrAlreadyFinalized)
	}

	g.IsFinalized = true
	g.MeetingTime = meetingTime
	g.Venue = venue
	if err := s.store.UpdateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("finalize group %s: %w", groupID, err)
	}
	return g, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		ctx := context.Background()
		participants, groups := s.store.Counts(ctx)
		pending, matched := s.store.StatusCounts(ctx)
		queueLen := s.notifyQ.Len(ctx)

		stats["participants"] = participants
		stats["pendingParticipants"] = pending
		stats["matchedParticipants"] = matched
		stats["groups"] = groups
		stats["queueLength"] = queueLen

		metrics.UpdatePendingParticipants(pending)
		metrics.UpdateMatchedParticipants(matched)
		metrics.UpdateTotalGroups(groups)
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}

// Size returns the current number of entries in the idempotency cache.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// beginRun claims the per-cycle run slot. Returns false when a run for
// the cycle is already in flight.
func (s *Service) beginRun(cycle string) bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.inFlight[cycle] {
		return false
	}
	s.inFlight[cycle] = true
	return true
}

func (s *Service) endRun(cycle string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	delete(s.inFlight, cycle)
}

// validateSubmission applies intake-level checks on top of the matching
// core's field validation.
func validateSubmission(p *model.Participant) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidSubmission)
	case strings.TrimSpace(p.Email) == "":
		return fmt.Errorf("%w: missing email", ErrInvalidSubmission)
	case strings.TrimSpace(p.Cycle) == "":
		return fmt.Errorf("%w: missing cycle", ErrInvalidSubmission)
	case len(p.Availability) == 0:
		return fmt.Errorf("%w: at least one availability slot required", ErrInvalidSubmission)
	}

	if p.Experience.Rank() < 0 {
		return fmt.Errorf("%w: unknown experience level %q", ErrInvalidSubmission, p.Experience)
	}
	for _, slot := range p.Availability {
		if _, err := model.ParseSlot(string(slot)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSubmission, err)
		}
	}

	// An empty location list is accepted: the bucketer silently skips
	// such participants per slot, which is a valid outcome rather than
	// an intake error.
	return nil
}
