package repository

import (
	"context"

	"github.com/iliyamo/event-booking/internal/model"
)

// ListHotels returns every hotel without rooms.
func (s *Store) ListHotels(ctx context.Context) ([]model.Hotel, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id,name,image,created_at,updated_at FROM hotels ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Hotel
	for rows.Next() {
		var h model.Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.Image, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// GetHotelWithRooms fetches a hotel and its rooms ordered by id.
func (s *Store) GetHotelWithRooms(ctx context.Context, hotelID uint64) (*model.Hotel, error) {
	var h model.Hotel
	err := s.q.QueryRowContext(ctx,
		"SELECT id,name,image,created_at,updated_at FROM hotels WHERE id=?", hotelID).
		Scan(&h.ID, &h.Name, &h.Image, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx,
		"SELECT id,name,capacity,hotel_id,created_at,updated_at FROM rooms WHERE hotel_id=? ORDER BY id", hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	h.Rooms = []model.Room{}
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.Capacity, &r.HotelID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		h.Rooms = append(h.Rooms, r)
	}
	return &h, rows.Err()
}

// GetRoomForUpdate loads a room and its bookings.  The room row is read
// with FOR UPDATE, so inside a transaction any concurrent booking of the
// same room waits until this transaction ends.
func (s *Store) GetRoomForUpdate(ctx context.Context, roomID uint64) (*model.Room, error) {
	var r model.Room
	err := s.q.QueryRowContext(ctx,
		"SELECT id,name,capacity,hotel_id,created_at,updated_at FROM rooms WHERE id=? FOR UPDATE", roomID).
		Scan(&r.ID, &r.Name, &r.Capacity, &r.HotelID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx,
		"SELECT id,user_id,room_id,created_at,updated_at FROM bookings WHERE room_id=?", roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.RoomID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		r.Bookings = append(r.Bookings, b)
	}
	return &r, rows.Err()
}
