package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/event-booking/internal/model"
)

// CheckRoomCapacity loads the room and fails with KindForbidden when its
// bookings already fill its capacity, or KindNotFound when it does not
// exist.  Call it through a transaction-bound store: the room stays locked
// until the caller commits, which keeps the booking count at or below
// capacity under concurrent requests.
func CheckRoomCapacity(ctx context.Context, store RoomLocker, roomID uint64) (*model.Room, error) {
	room, err := store.GetRoomForUpdate(ctx, roomID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("room not found")
		}
		return nil, fmt.Errorf("load room: %w", err)
	}
	if !room.HasSpace() {
		return nil, forbidden("room is at full capacity")
	}
	return room, nil
}
