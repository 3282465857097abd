package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/platform/obs"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout = 5 * time.Second
	dialTimeout    = 5 * time.Second
	redialBackoff  = 10 * time.Second
)

// confirmation is the broker's pending answer for one published message.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// sender is an open confirm-mode channel.
type sender interface {
	send(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error)
	closed() bool
	close() error
}

// RabbitPublisher publishes JSON events to a durable topic exchange with
// publisher confirms. Every message waits on its own deferred confirmation,
// so a late ack can never be read by another publish. A closed channel is
// re-dialled on the next publish, at most once per redialBackoff.
type RabbitPublisher struct {
	url            string
	exchange       string
	log            *logger.Logger
	confirmTimeout time.Duration
	dial           func(ctx context.Context) (sender, error)

	mu         sync.Mutex
	out        sender
	lastFailed time.Time
}

// NewRabbitPublisher connects to url and declares the exchange.
func NewRabbitPublisher(ctx context.Context, url, exchange string, log *logger.Logger) (*RabbitPublisher, error) {
	if exchange == "" {
		return nil, errors.New("rabbitmq: exchange name is required")
	}

	p := &RabbitPublisher{url: url, exchange: exchange, log: log, confirmTimeout: publishTimeout}
	p.dial = p.dialAMQP

	out, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}
	p.out = out
	return p, nil
}

func (p *RabbitPublisher) dialAMQP(ctx context.Context) (_ sender, err error) {
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		p.log.Error(ctx, "rabbitmq_dial_failed", "Failed to dial RabbitMQ", err, nil)
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() {
		if err != nil {
			_ = conn.Close()
		}
	}()

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	if err = ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("rabbitmq: declare exchange %s: %w", p.exchange, err)
	}

	if err = ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("rabbitmq: enable confirms: %w", err)
	}

	p.log.Info(ctx, "rabbitmq_connected", "RabbitMQ connection established", map[string]any{"exchange": p.exchange})
	return &amqpSender{conn: conn, ch: ch}, nil
}

// current returns the open sender, dialling a new one when the old one is
// gone. The lock covers only this step, never the confirm wait.
func (p *RabbitPublisher) current(ctx context.Context) (sender, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out != nil && !p.out.closed() {
		return p.out, nil
	}
	if p.out != nil {
		_ = p.out.close()
		p.out = nil
	}
	if p.dial == nil {
		return nil, errors.New("rabbitmq: publisher is not connected")
	}
	if !p.lastFailed.IsZero() && time.Since(p.lastFailed) < redialBackoff {
		return nil, errors.New("rabbitmq: broker unavailable, waiting before the next dial")
	}

	out, err := p.dial(ctx)
	if err != nil {
		p.lastFailed = time.Now()
		return nil, err
	}
	p.out = out
	p.lastFailed = time.Time{}
	return out, nil
}

// Publish sends payload as a persistent JSON message and waits for the
// broker's confirm of that message.
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) (err error) {
	defer obs.Time(ctx, "events.Publish")(&err)

	msg, err := newMessage(ctx, payload, time.Now())
	if err != nil {
		return err
	}

	out, err := p.current(ctx)
	if err != nil {
		return err
	}

	timeout := p.confirmTimeout
	if timeout <= 0 {
		timeout = publishTimeout
	}
	pubCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	confirm, err := out.send(pubCtx, p.exchange, routingKey, msg)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", routingKey, err)
	}

	ack, err := confirm.WaitContext(pubCtx)
	if err != nil {
		return fmt.Errorf("rabbitmq: waiting for confirm of %s: %w", routingKey, err)
	}
	if !ack {
		return fmt.Errorf("rabbitmq: publish %s not acknowledged", routingKey)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out == nil {
		return nil
	}
	err := p.out.close()
	p.out = nil
	return err
}

type amqpSender struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (s *amqpSender) send(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error) {
	dc, err := s.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, false, false, msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("channel is not in confirm mode")
	}
	return dc, nil
}

func (s *amqpSender) closed() bool {
	return s.conn.IsClosed() || s.ch.IsClosed()
}

func (s *amqpSender) close() error {
	return errors.Join(s.ch.Close(), s.conn.Close())
}

func newMessage(ctx context.Context, payload any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: encode payload: %w", err)
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Timestamp:    now.UTC(),
		Body:         body,
	}
	if reqID := obs.RequestID(ctx); reqID != "" {
		msg.CorrelationId = reqID
	}
	return msg, nil
}
