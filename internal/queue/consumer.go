package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Consumer listens on every routing key and appends one JSON line per
// event to an audit log.
type Consumer struct {
	url    string
	audit  zerolog.Logger
	logger zerolog.Logger
}

// NewConsumer builds a consumer that writes events to w.  logger receives
// the consumer's own diagnostics.
func NewConsumer(url string, w io.Writer, logger zerolog.Logger) *Consumer {
	if url == "" {
		url = DefaultURL
	}
	return &Consumer{
		url:    url,
		audit:  zerolog.New(w).With().Timestamp().Logger(),
		logger: logger.With().Str("component", "consumer").Logger(),
	}
}

// OpenAuditLog opens path for appending, creating its directory.
func OpenAuditLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return f, nil
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff (capped at 30s) whenever the
// connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("dial broker failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
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
			return ctx.Err()
		}
		c.logger.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warn().Err(err).Msg("set QoS failed")
	}

	deliveries := make(chan amqp.Delivery)
	done := make(chan struct{})
	defer close(done)
	for _, key := range RoutingKeys {
		if _, err := declare(ch, key); err != nil {
			return err
		}
		msgs, err := ch.Consume(key, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume %s: %w", key, err)
		}
		go func(msgs <-chan amqp.Delivery) {
			for d := range msgs {
				select {
				case deliveries <- d:
				case <-done:
					return
				}
			}
		}(msgs)
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
			if err := c.handleMessage(d.RoutingKey, d.Body); err != nil {
				c.logger.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("handle message failed")
				_ = d.Nack(false, false) // no requeue, a bad payload would loop forever
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handleMessage decodes one event body and writes it to the audit log.
func (c *Consumer) handleMessage(routingKey string, body []byte) error {
	switch routingKey {
	case BookingCreatedKey, BookingUpdatedKey:
		var ev BookingEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal %s: %w", routingKey, err)
		}
		entry := c.audit.Info().
			Str("event", routingKey).
			Uint64("booking_id", ev.BookingID).
			Uint64("user_id", ev.UserID).
			Uint64("room_id", ev.RoomID)
		if ev.PreviousRoomID != 0 {
			entry = entry.Uint64("previous_room_id", ev.PreviousRoomID)
		}
		entry.Str("occurred_at", ev.OccurredAt).Msg("booking")
	case PaymentProcessedKey:
		var ev PaymentProcessedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal %s: %w", routingKey, err)
		}
		c.audit.Info().
			Str("event", routingKey).
			Uint64("payment_id", ev.PaymentID).
			Uint64("ticket_id", ev.TicketID).
			Uint64("user_id", ev.UserID).
			Int64("value", ev.Value).
			Str("card_issuer", ev.CardIssuer).
			Str("card_last_digits", ev.CardLastDigits).
			Str("processed_at", ev.ProcessedAt).
			Msg("payment")
	default:
		return fmt.Errorf("unknown routing key %q", routingKey)
	}
	return nil
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
