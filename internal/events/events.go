// Package events announces state changes to other services over AMQP.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names an event; it is also the AMQP routing key.
type Type string

const (
	ReportSaved    Type = "report.saved"
	ReportDeleted  Type = "report.deleted"
	AccountDeleted Type = "account.deleted"
	AnalysisFailed Type = "analysis.failed"
)

// Event is the message body. Payloads carry ids, not data; consumers read
// the state they need from the API.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	AccountID  string    `json:"accountId,omitempty"`
	ReportID   string    `json:"reportId,omitempty"`
	FileName   string    `json:"fileName,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// New returns an event of type t stamped with a fresh id and the current
// time.
func New(t Type) Event {
	return Event{ID: uuid.NewString(), Type: t, OccurredAt: time.Now().UTC()}
}

// Publisher sends events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
