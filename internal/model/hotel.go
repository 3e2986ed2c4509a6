package model

import "time"

// Hotel is a lodging option offered alongside the event.
type Hotel struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Rooms     []Room    `json:"Rooms,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Room belongs to a hotel and holds at most Capacity bookings.  Bookings
// is only populated by lookups that need the current occupancy.
type Room struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Capacity  uint32    `json:"capacity"`
	HotelID   uint64    `json:"hotelId"`
	Bookings  []Booking `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasSpace reports whether one more booking fits in the room.
func (r *Room) HasSpace() bool {
	return uint32(len(r.Bookings)) < r.Capacity
}
