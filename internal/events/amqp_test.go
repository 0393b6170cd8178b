package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	deadline bool
	err      error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	_, f.deadline = ctx.Deadline()
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "finsight"}

	e := New(ReportSaved)
	e.AccountID = "a1"
	e.ReportID = "r1"

	if err := p.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if ch.exchange != "finsight" || ch.key != "report.saved" {
		t.Errorf("published to %s/%s", ch.exchange, ch.key)
	}
	if ch.msg.DeliveryMode != amqp.Persistent || ch.msg.ContentType != "application/json" {
		t.Errorf("message = %+v", ch.msg)
	}
	if !ch.deadline {
		t.Error("publish should run with a timeout")
	}

	var got Event
	if err := json.Unmarshal(ch.msg.Body, &got); err != nil {
		t.Fatalf("body: %v", err)
	}
	if got.ReportID != "r1" || got.Type != ReportSaved || got.ID != e.ID {
		t.Errorf("body = %+v", got)
	}
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	p := &AMQPPublisher{ch: &fakeChannel{err: errors.New("channel closed")}, exchange: "x"}
	if err := p.Publish(context.Background(), New(AccountDeleted)); err == nil {
		t.Error("expected error")
	}
}

func TestNew(t *testing.T) {
	a, b := New(ReportDeleted), New(ReportDeleted)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids = %q, %q", a.ID, b.ID)
	}
	if time.Since(a.OccurredAt) > time.Minute {
		t.Errorf("OccurredAt = %v", a.OccurredAt)
	}
}
