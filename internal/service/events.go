package service

import "context"

// EventPublisher delivers domain events to the message broker.
// Publication happens after the transaction commits and is best effort:
// failures are logged, never returned to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// NopPublisher discards every event.  It is used when the broker is
// disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
