package repository

import (
	"context"
	"time"

	"github.com/iliyamo/event-booking/internal/model"
)

// CreateBooking inserts b and sets its ID.
func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO bookings (user_id, room_id) VALUES (?,?)", b.UserID, b.RoomID)
	if err != nil {
		return mapWriteErr(err)
	}
	if b.ID, err = lastID(res); err != nil {
		return err
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

// GetBookingByUser returns the user's oldest booking joined with its room.
func (s *Store) GetBookingByUser(ctx context.Context, userID uint64) (*model.Booking, error) {
	var (
		b model.Booking
		r model.Room
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT b.id,b.user_id,b.room_id,b.created_at,b.updated_at,
		        r.id,r.name,r.capacity,r.hotel_id,r.created_at,r.updated_at
		 FROM bookings b JOIN rooms r ON r.id=b.room_id
		 WHERE b.user_id=? ORDER BY b.id LIMIT 1`, userID).Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.CreatedAt, &b.UpdatedAt,
		&r.ID, &r.Name, &r.Capacity, &r.HotelID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Room = &r
	return &b, nil
}

// GetBookingForUser returns bookingID only when it belongs to userID.
func (s *Store) GetBookingForUser(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	var b model.Booking
	err := s.q.QueryRowContext(ctx,
		"SELECT id,user_id,room_id,created_at,updated_at FROM bookings WHERE id=? AND user_id=?",
		bookingID, userID).Scan(&b.ID, &b.UserID, &b.RoomID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBookingRoom moves the booking to roomID.  It returns
// sql.ErrNoRows when no booking matches both bookingID and userID.
func (s *Store) UpdateBookingRoom(ctx context.Context, bookingID, userID, roomID uint64) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE bookings SET room_id=? WHERE id=? AND user_id=?", roomID, bookingID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 affected rows when room_id is unchanged.
		_, err := s.GetBookingForUser(ctx, userID, bookingID)
		return err
	}
	return nil
}
