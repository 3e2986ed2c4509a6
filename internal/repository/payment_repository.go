package repository

import (
	"context"
	"time"

	"github.com/iliyamo/event-booking/internal/model"
)

// CreatePayment inserts p and sets its ID.  A second payment for the same
// ticket violates the unique ticket_id key and yields
// service.ErrDuplicate.
func (s *Store) CreatePayment(ctx context.Context, p *model.Payment) error {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO payments (ticket_id, value, card_issuer, card_last_digits) VALUES (?,?,?,?)",
		p.TicketID, p.Value, p.CardIssuer, p.CardLastDigits)
	if err != nil {
		return mapWriteErr(err)
	}
	if p.ID, err = lastID(res); err != nil {
		return err
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// GetPaymentByTicketID fetches the payment of a ticket.
func (s *Store) GetPaymentByTicketID(ctx context.Context, ticketID uint64) (*model.Payment, error) {
	var p model.Payment
	err := s.q.QueryRowContext(ctx,
		"SELECT id,ticket_id,value,card_issuer,card_last_digits,created_at,updated_at FROM payments WHERE ticket_id=?",
		ticketID).Scan(&p.ID, &p.TicketID, &p.Value, &p.CardIssuer, &p.CardLastDigits, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
