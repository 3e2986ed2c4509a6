package model

import "time"

// Payment records a settled ticket.  Only the card issuer and the last
// four digits of the card are kept; the full number and the CVV are
// never stored.
type Payment struct {
	ID             uint64    `json:"id"`
	TicketID       uint64    `json:"ticketId"`
	Value          int64     `json:"value"`
	CardIssuer     string    `json:"cardIssuer"`
	CardLastDigits string    `json:"cardLastDigits"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
