// Package queue defines the domain events exchanged over RabbitMQ, the
// publisher used by the services and the audit consumer.
package queue

// Routing keys.  Each key is also the name of a durable queue bound to
// the default exchange.
const (
	BookingCreatedKey   = "booking.created"
	BookingUpdatedKey   = "booking.updated"
	PaymentProcessedKey = "payment.processed"
)

// RoutingKeys lists every queue the audit consumer listens on.
var RoutingKeys = []string{BookingCreatedKey, BookingUpdatedKey, PaymentProcessedKey}

// BookingEvent is published after a booking is created or moved to a
// different room.  PreviousRoomID is zero for newly created bookings.
type BookingEvent struct {
	BookingID      uint64 `json:"bookingId"`
	UserID         uint64 `json:"userId"`
	RoomID         uint64 `json:"roomId"`
	PreviousRoomID uint64 `json:"previousRoomId,omitempty"`
	OccurredAt     string `json:"occurredAt"`
}

// PaymentProcessedEvent is published once a ticket has been paid.  It
// carries no card data besides the issuer and the last four digits.
type PaymentProcessedEvent struct {
	PaymentID      uint64 `json:"paymentId"`
	TicketID       uint64 `json:"ticketId"`
	UserID         uint64 `json:"userId"`
	Value          int64  `json:"value"`
	CardIssuer     string `json:"cardIssuer"`
	CardLastDigits string `json:"cardLastDigits"`
	ProcessedAt    string `json:"processedAt"`
}
