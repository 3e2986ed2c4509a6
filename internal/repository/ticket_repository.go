package repository

import (
	"context"
	"time"

	"github.com/iliyamo/event-booking/internal/model"
)

const ticketJoinSelect = `SELECT t.id,t.status,t.ticket_type_id,t.enrollment_id,t.created_at,t.updated_at,
	tt.id,tt.name,tt.price,tt.is_remote,tt.includes_hotel,tt.created_at,tt.updated_at
	FROM tickets t JOIN ticket_types tt ON tt.id=t.ticket_type_id`

const ticketTypeColumns = "id,name,price,is_remote,includes_hotel,created_at,updated_at"

// ListTicketTypes returns every ticket type ordered by id.
func (s *Store) ListTicketTypes(ctx context.Context) ([]model.TicketType, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+ticketTypeColumns+" FROM ticket_types ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TicketType
	for rows.Next() {
		var tt model.TicketType
		if err := rows.Scan(&tt.ID, &tt.Name, &tt.Price, &tt.IsRemote, &tt.IncludesHotel, &tt.CreatedAt, &tt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, tt)
	}
	return out, rows.Err()
}

// GetTicketTypeByID fetches one ticket type.
func (s *Store) GetTicketTypeByID(ctx context.Context, id uint64) (*model.TicketType, error) {
	var tt model.TicketType
	err := s.q.QueryRowContext(ctx, "SELECT "+ticketTypeColumns+" FROM ticket_types WHERE id=?", id).
		Scan(&tt.ID, &tt.Name, &tt.Price, &tt.IsRemote, &tt.IncludesHotel, &tt.CreatedAt, &tt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (s *Store) scanTicket(ctx context.Context, query string, arg any) (*model.Ticket, error) {
	var (
		t  model.Ticket
		tt model.TicketType
	)
	err := s.q.QueryRowContext(ctx, query, arg).Scan(
		&t.ID, &t.Status, &t.TicketTypeID, &t.EnrollmentID, &t.CreatedAt, &t.UpdatedAt,
		&tt.ID, &tt.Name, &tt.Price, &tt.IsRemote, &tt.IncludesHotel, &tt.CreatedAt, &tt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.TicketType = &tt
	return &t, nil
}

// GetTicketByEnrollmentID returns the enrollment's oldest ticket with its
// type.
func (s *Store) GetTicketByEnrollmentID(ctx context.Context, enrollmentID uint64) (*model.Ticket, error) {
	return s.scanTicket(ctx, ticketJoinSelect+" WHERE t.enrollment_id=? ORDER BY t.id LIMIT 1", enrollmentID)
}

// GetTicketByID returns a ticket with its type.
func (s *Store) GetTicketByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	return s.scanTicket(ctx, ticketJoinSelect+" WHERE t.id=?", id)
}

// CreateTicket inserts t and sets its ID.
func (s *Store) CreateTicket(ctx context.Context, t *model.Ticket) error {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO tickets (status, ticket_type_id, enrollment_id) VALUES (?,?,?)",
		t.Status, t.TicketTypeID, t.EnrollmentID)
	if err != nil {
		return mapWriteErr(err)
	}
	if t.ID, err = lastID(res); err != nil {
		return err
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	return nil
}

// MarkTicketPaid flips a RESERVED ticket to PAID.  The status guard in
// the WHERE clause makes the transition happen at most once.
func (s *Store) MarkTicketPaid(ctx context.Context, ticketID uint64) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		"UPDATE tickets SET status=? WHERE id=? AND status=?",
		model.TicketPaid, ticketID, model.TicketReserved)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
