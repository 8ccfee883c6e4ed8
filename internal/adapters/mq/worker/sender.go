package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/quadra2003/networking-lunches/internal/adapters/mq/queue"
	"github.com/quadra2003/networking-lunches/pkg/logger"
)

// LogSender renders each invitation into the log instead of dispatching
// email. Real dispatch is owned by an external system; this keeps the
// pipeline observable end to end without one.
type LogSender struct {
	logger logger.Logger
}

// NewLogSender creates a log-backed sender.
func NewLogSender(l logger.Logger) *LogSender {
	if l == nil {
		l = logger.Get().Named("sender")
	}
	return &LogSender{logger: l}
}

// Send logs the rendered invitation.
func (s *LogSender) Send(ctx context.Context, j queue.Job) error {
	s.logger.Info(ctx, "invitation",
		logger.String("to", j.Email),
		logger.String("memberID", j.MemberID),
		logger.String("groupID", j.GroupID),
		logger.String("body", renderInvitation(j)),
	)
	return nil
}

// renderInvitation builds the human-readable invitation text.
func renderInvitation(j queue.Job) string {
	when := "time to be announced"
	if !j.MeetingTime.IsZero() {
		when = j.MeetingTime.Format(time.RFC1123)
	}
	venue := j.Venue
	if venue == "" {
		venue = j.Location
	}
	return fmt.Sprintf("Hi %s, your %s networking lunch group is confirmed: %s at %s (%s).",
		j.MemberName, j.Cycle, when, venue, j.Slot)
}
