package model

import "time"

// TicketStatus enumerates the lifecycle of a ticket.  A ticket starts
// RESERVED and only becomes PAID as a side effect of a recorded payment.
type TicketStatus string

const (
	TicketReserved TicketStatus = "RESERVED"
	TicketPaid     TicketStatus = "PAID"
)

// TicketType describes a purchasable ticket category.  Price is stored
// in whole currency units.
type TicketType struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Price         int64     `json:"price"`
	IsRemote      bool      `json:"isRemote"`
	IncludesHotel bool      `json:"includesHotel"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Ticket belongs to one enrollment and references one ticket type.  The
// owner of a ticket is always the user of its enrollment.
type Ticket struct {
	ID           uint64       `json:"id"`
	Status       TicketStatus `json:"status"`
	TicketTypeID uint64       `json:"ticketTypeId"`
	EnrollmentID uint64       `json:"enrollmentId"`
	TicketType   *TicketType  `json:"TicketType,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// GrantsHotel reports whether the ticket entitles its owner to browse and
// book hotel rooms: it has to be paid, in person, and include lodging.
func (t *Ticket) GrantsHotel() bool {
	if t == nil || t.TicketType == nil {
		return false
	}
	return t.Status == TicketPaid && t.TicketType.IncludesHotel && !t.TicketType.IsRemote
}
