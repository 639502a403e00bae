// Package events publishes broken-reference events for downstream tooling
// (forge issue creation, dashboards). Publishing is optional; the pipeline
// always works against the Publisher interface and defaults to a no-op.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docexpand/internal/report"
)

// BrokenReferenceEvent describes one fatal reference issue found in a run.
type BrokenReferenceEvent struct {
	RunID     string    `json:"run_id"`
	SourceDoc string    `json:"source_doc"`
	Target    string    `json:"target,omitempty"`
	Anchor    string    `json:"anchor,omitempty"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Line      int       `json:"line"`
	Timestamp time.Time `json:"timestamp"`
}

// FromIssue converts a reference issue into an event.
func FromIssue(runID string, issue report.Issue) BrokenReferenceEvent {
	return BrokenReferenceEvent{
		RunID:     runID,
		SourceDoc: issue.Doc,
		Target:    issue.Target,
		Anchor:    issue.Anchor,
		Kind:      string(issue.Kind),
		Message:   issue.Message,
		Line:      issue.Line,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher delivers broken-reference events.
type Publisher interface {
	Publish(ctx context.Context, ev BrokenReferenceEvent) error
	Close()
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BrokenReferenceEvent) error { return nil }
func (NoopPublisher) Close()                                             {}

// NATSPublisher publishes events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS and returns a publisher for the subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("docexpand"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS %s: %w", url, err)
	}

	slog.Info("NATS event publisher initialized", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Publish sends one event. Delivery is fire-and-forget; a failed publish is
// an error for the caller to log, never a reason to abort the run.
func (p *NATSPublisher) Publish(ctx context.Context, ev BrokenReferenceEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close flushes and closes the connection.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}
