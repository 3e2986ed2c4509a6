package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-booking/internal/model"
)

// EligibilityReader is the part of the store needed to decide whether a
// user may access hotels.
type EligibilityReader interface {
	GetEnrollmentByUserID(ctx context.Context, userID uint64) (*model.Enrollment, error)
	// GetTicketByEnrollmentID returns the enrollment's first ticket with
	// its TicketType populated.
	GetTicketByEnrollmentID(ctx context.Context, enrollmentID uint64) (*model.Ticket, error)
}

// RoomLocker loads a room with its bookings.  Inside a transaction the
// room row stays locked until commit, so the occupancy it reports cannot
// change underneath the caller.
type RoomLocker interface {
	GetRoomForUpdate(ctx context.Context, roomID uint64) (*model.Room, error)
}

// Store is the persistence gateway used by the services.  Lookups that
// find nothing return sql.ErrNoRows (possibly wrapped); inserts that hit a
// unique constraint return ErrDuplicate.
type Store interface {
	EligibilityReader
	RoomLocker

	GetEnrollmentByID(ctx context.Context, id uint64) (*model.Enrollment, error)
	GetEnrollmentWithAddress(ctx context.Context, userID uint64) (*model.Enrollment, error)
	// UpsertEnrollment inserts or updates the enrollment keyed by UserID
	// and sets its ID.
	UpsertEnrollment(ctx context.Context, e *model.Enrollment) error
	// UpsertAddress inserts or updates the address keyed by EnrollmentID.
	UpsertAddress(ctx context.Context, a *model.Address) error

	ListTicketTypes(ctx context.Context) ([]model.TicketType, error)
	GetTicketTypeByID(ctx context.Context, id uint64) (*model.TicketType, error)
	// GetTicketByID returns the ticket with its TicketType populated.
	GetTicketByID(ctx context.Context, id uint64) (*model.Ticket, error)
	CreateTicket(ctx context.Context, t *model.Ticket) error
	// MarkTicketPaid moves a RESERVED ticket to PAID.  It reports false
	// when the ticket was not RESERVED, in which case nothing changed.
	MarkTicketPaid(ctx context.Context, ticketID uint64) (bool, error)

	ListHotels(ctx context.Context) ([]model.Hotel, error)
	GetHotelWithRooms(ctx context.Context, hotelID uint64) (*model.Hotel, error)

	CreateBooking(ctx context.Context, b *model.Booking) error
	// GetBookingByUser returns the user's first booking with Room populated.
	GetBookingByUser(ctx context.Context, userID uint64) (*model.Booking, error)
	GetBookingForUser(ctx context.Context, userID, bookingID uint64) (*model.Booking, error)
	UpdateBookingRoom(ctx context.Context, bookingID, userID, roomID uint64) error

	CreatePayment(ctx context.Context, p *model.Payment) error
	GetPaymentByTicketID(ctx context.Context, ticketID uint64) (*model.Payment, error)

	// WithTx runs fn inside a single transaction.  The Store handed to fn
	// is bound to that transaction; any error returned by fn rolls back
	// every write made through it.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
