package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/platform/obs"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

func TestNewMessage(t *testing.T) {
	ctx := obs.WithRequestID(context.Background(), "req-42")
	now := time.Date(2026, 1, 17, 6, 0, 0, 0, time.FixedZone("GST", 4*3600))

	msg, err := newMessage(ctx, map[string]any{"week_start": "2026-01-17", "count": 3}, now)
	if err != nil {
		t.Fatalf("newMessage: %v", err)
	}

	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" {
		t.Fatalf("unexpected properties: %+v", msg)
	}
	if msg.CorrelationId != "req-42" {
		t.Fatalf("correlation id = %q", msg.CorrelationId)
	}
	if _, err := uuid.Parse(msg.MessageId); err != nil {
		t.Fatalf("message id %q is not a uuid: %v", msg.MessageId, err)
	}
	if msg.Timestamp.Location() != time.UTC || !msg.Timestamp.Equal(now) {
		t.Fatalf("timestamp = %v", msg.Timestamp)
	}

	var body map[string]any
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if body["week_start"] != "2026-01-17" {
		t.Fatalf("body = %v", body)
	}
}

func TestNewMessageRejectsUnencodablePayload(t *testing.T) {
	if _, err := newMessage(context.Background(), make(chan int), time.Now()); err == nil {
		t.Fatalf("expected encode error")
	}
}

func TestPublishWithoutConnection(t *testing.T) {
	p := &RabbitPublisher{exchange: "dispatch.events", log: logger.NewWithWriter("test", io.Discard)}

	if err := p.Publish(context.Background(), "assignments.created", map[string]int{"assignment_id": 1}); err == nil {
		t.Fatalf("expected error from unconnected publisher")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

type fakeConfirm struct {
	ack     bool
	release chan struct{}
}

func (c *fakeConfirm) WaitContext(ctx context.Context) (bool, error) {
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return c.ack, nil
}

type fakeSender struct {
	mu       sync.Mutex
	confirms []*fakeConfirm
	sent     []string
	sentCh   chan string
	isClosed bool
}

func (s *fakeSender) send(_ context.Context, _, routingKey string, _ amqp.Publishing) (confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sent) >= len(s.confirms) {
		return nil, errors.New("unexpected publish")
	}
	c := s.confirms[len(s.sent)]
	s.sent = append(s.sent, routingKey)
	if s.sentCh != nil {
		s.sentCh <- routingKey
	}
	return c, nil
}

func (s *fakeSender) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isClosed
}

func (s *fakeSender) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isClosed = true
	return nil
}

func newTestPublisher(out sender) *RabbitPublisher {
	return &RabbitPublisher{
		exchange:       "dispatch.events",
		log:            logger.NewWithWriter("test", io.Discard),
		confirmTimeout: 50 * time.Millisecond,
		out:            out,
	}
}

func TestPublishLateConfirmDoesNotSatisfyNextPublish(t *testing.T) {
	late := &fakeConfirm{ack: true, release: make(chan struct{})}
	nacked := &fakeConfirm{ack: false}
	p := newTestPublisher(&fakeSender{confirms: []*fakeConfirm{late, nacked}})
	ctx := context.Background()

	err := p.Publish(ctx, "assignments.created", map[string]int{"assignment_id": 1})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("first publish err = %v, want deadline exceeded", err)
	}

	// The first message's ack arrives after its wait gave up.
	close(late.release)

	if err := p.Publish(ctx, "assignments.created", map[string]int{"assignment_id": 2}); err == nil {
		t.Fatalf("second publish succeeded on a stale ack; broker nacked it")
	}
}

func TestPublishDoesNotHoldLockWhileWaiting(t *testing.T) {
	slow := &fakeConfirm{ack: true, release: make(chan struct{})}
	fast := &fakeConfirm{ack: true}
	out := &fakeSender{confirms: []*fakeConfirm{slow, fast}, sentCh: make(chan string, 2)}
	p := newTestPublisher(out)
	p.confirmTimeout = 2 * time.Second
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- p.Publish(ctx, "trips.slow", nil) }()
	<-out.sentCh

	if err := p.Publish(ctx, "trips.fast", nil); err != nil {
		t.Fatalf("second publish: %v", err)
	}

	close(slow.release)
	if err := <-done; err != nil {
		t.Fatalf("first publish: %v", err)
	}
}

func TestPublishRedialsClosedChannelWithBackoff(t *testing.T) {
	stale := &fakeSender{isClosed: true}
	fresh := &fakeSender{confirms: []*fakeConfirm{{ack: true}}}
	p := newTestPublisher(stale)

	dials := 0
	failDial := true
	p.dial = func(context.Context) (sender, error) {
		dials++
		if failDial {
			return nil, errors.New("connection refused")
		}
		return fresh, nil
	}
	ctx := context.Background()

	if err := p.Publish(ctx, "trips.updated", nil); err == nil {
		t.Fatalf("expected dial error")
	}
	if err := p.Publish(ctx, "trips.updated", nil); err == nil {
		t.Fatalf("expected backoff error")
	}
	if dials != 1 {
		t.Fatalf("dials = %d, want 1 inside the backoff window", dials)
	}

	failDial = false
	p.lastFailed = time.Now().Add(-redialBackoff)
	if err := p.Publish(ctx, "trips.updated", nil); err != nil {
		t.Fatalf("publish after redial: %v", err)
	}
	if dials != 2 || len(fresh.sent) != 1 {
		t.Fatalf("dials = %d sent = %v", dials, fresh.sent)
	}
}
