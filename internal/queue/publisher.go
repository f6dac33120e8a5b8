package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	dialTimeout   = 2 * time.Second
	redialBackoff = 5 * time.Second
)

// ErrBrokerUnavailable is returned while the publisher waits out the
// backoff after a failed dial.
var ErrBrokerUnavailable = errors.New("queue: broker unavailable")

// Publisher sends booking events to RabbitMQ.  The connection is opened
// lazily and re-dialled after the broker drops it.  A failed dial blocks
// further dials for redialBackoff so publishes fail fast while the broker
// is down.  Errors are logged and returned so callers can ignore them
// without interrupting the request.
type Publisher struct {
	url  string
	dial func(url string) (*amqp.Connection, error)
	now  func() time.Time

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, dial: dialBroker, now: time.Now}
}

func dialBroker(url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
}

// channel returns an open channel with every event queue declared.
// Callers hold p.mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		if p.now().Before(p.retryAt) {
			return nil, ErrBrokerUnavailable
		}
		conn, err := p.dial(p.url)
		if err != nil {
			p.retryAt = p.now().Add(redialBackoff)
			return nil, fmt.Errorf("dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}
	for _, q := range Queues {
		// Durable so messages survive broker restarts.
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("queue declare %s: %w", q, err)
		}
	}
	p.ch = ch
	return ch, nil
}

// Publish sends ev to the queue named by ev.Type as a persistent message.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	if ev.Type == "" {
		return errors.New("queue: event type is required")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		log.Warn().Err(err).Str("queue", ev.Type).Msg("rabbitmq: publisher unavailable")
		return err
	}
	err = ch.PublishWithContext(ctx, "", ev.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Warn().Err(err).Str("queue", ev.Type).Msg("rabbitmq: publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		if err != nil && !errors.Is(err, amqp.ErrClosed) {
			return err
		}
	}
	return nil
}
