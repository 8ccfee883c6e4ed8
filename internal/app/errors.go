package app

import (
	"errors"
	"fmt"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrRunInFlight       = errors.New("run already in flight for cycle")
	ErrAlreadyFinalized  = errors.New("group already finalized")
	ErrInvalidSubmission = errors.New("invalid submission")
)

// RunError reports a matching run that failed during the commit phase.
// Committed lists the group ids durably created before the failure;
// the store is not transactional, so those are left for admin review.
type RunError struct {
	Cycle     string
	Committed []string
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run for cycle %s failed after committing %d groups: %v",
		e.Cycle, len(e.Committed), e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
