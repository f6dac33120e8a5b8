package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Handler processes one decoded booking event.
type Handler interface {
	HandleBookingEvent(ctx context.Context, ev BookingEvent) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev BookingEvent) error

func (f HandlerFunc) HandleBookingEvent(ctx context.Context, ev BookingEvent) error { return f(ctx, ev) }

// Consumer reads every booking queue and dispatches to a Handler.
type Consumer struct {
	url     string
	handler Handler
	log     zerolog.Logger
}

func NewConsumer(url string, h Handler) *Consumer {
	return &Consumer{url: url, handler: h, log: log.With().Str("component", "booking_consumer").Logger()}
}

// Run connects, consumes and reconnects with exponential backoff until
// ctx is cancelled.  Messages that fail to process are rejected without
// requeue to avoid tight redelivery loops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := dialBroker(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set QoS failed")
	}

	// done releases the forwarders when this connection is abandoned.
	done := make(chan struct{})
	defer close(done)
	deliveries := make(chan amqp.Delivery)
	for _, q := range Queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		go forward(ctx, done, msgs, deliveries)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr != nil {
				return amqpErr
			}
			return errors.New("connection closed")
		case d := <-deliveries:
			if err := c.dispatch(ctx, d.Body); err != nil {
				c.log.Error().Err(err).Str("queue", d.RoutingKey).Str("message_id", d.MessageId).Msg("handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// forward copies deliveries from one queue into out until msgs closes,
// done is closed or ctx is cancelled.
func forward(ctx context.Context, done <-chan struct{}, msgs <-chan amqp.Delivery, out chan<- amqp.Delivery) {
	for d := range msgs {
		select {
		case out <- d:
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return c.handler.HandleBookingEvent(ctx, ev)
}
