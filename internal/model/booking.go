package model

import "time"

// Booking reserves a place in a room for a user.  The existence of the
// row is the committed state; there is no pending status.
type Booking struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	RoomID    uint64    `json:"roomId"`
	Room      *Room     `json:"Room,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
