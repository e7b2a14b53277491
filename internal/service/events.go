package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Grading event types.
const (
	EventSubmissionGraded     = "submission.graded"
	EventSubmissionOverridden = "submission.overridden"
	EventSubmissionApproved   = "submission.approved"
	EventSubmissionReset      = "submission.reset"
)

// GradingEvent describes a workflow state change for downstream consumers
// (notification services, gradebook sync).
type GradingEvent struct {
	Type         string    `json:"type"`
	AssignmentID uint      `json:"assignment_id"`
	StudentID    string    `json:"student_id"`
	Score        *float64  `json:"score,omitempty"`
	Degraded     bool      `json:"degraded,omitempty"`
	At           time.Time `json:"at"`
}

// EventPublisher emits grading events. Publication is fire-and-forget; a
// failed publish never fails the workflow operation that triggered it.
type EventPublisher interface {
	Publish(ctx context.Context, event GradingEvent)
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher builds an EventPublisher backed by NATS. A nil connection
// yields a no-op publisher so callers do not need to branch.
func NewNATSPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) EventPublisher {
	subject := "grading.submissions"
	if subjectBase != "" {
		subject = subjectBase + ".grading.submissions"
	}

	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) Publish(_ context.Context, event GradingEvent) {
	if p.conn == nil {
		return
	}

	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("failed to encode grading event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish grading event")
	}
}
