package matching

import (
	"errors"
	"fmt"
)

// Sentinel kinds for matching errors.
var (
	ErrInvalidParticipant = errors.New("invalid participant")
)

// ValidationError reports a malformed field on one participant. The
// plan fails fast on the first one found rather than producing an
// undefined partition.
type ValidationError struct {
	ParticipantID string
	Field         string
	Reason        string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("participant %s: field %s: %s", e.ParticipantID, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidParticipant }
