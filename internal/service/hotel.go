package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/event-booking/internal/model"
)

// HotelService lists hotels to users whose ticket includes lodging.
type HotelService struct {
	store Store
}

func NewHotelService(store Store) *HotelService { return &HotelService{store: store} }

// ListHotels returns every hotel.  Users without a qualifying ticket get
// KindPaymentRequired; an empty catalogue is KindNotFound.
func (s *HotelService) ListHotels(ctx context.Context, userID uint64) ([]model.Hotel, error) {
	if err := VerifyHotelEligibility(ctx, s.store, userID, KindPaymentRequired); err != nil {
		return nil, err
	}
	hotels, err := s.store.ListHotels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	if len(hotels) == 0 {
		return nil, notFound("no hotels available")
	}
	return hotels, nil
}

// GetHotelWithRooms returns one hotel with its rooms.
func (s *HotelService) GetHotelWithRooms(ctx context.Context, userID, hotelID uint64) (*model.Hotel, error) {
	if err := VerifyHotelEligibility(ctx, s.store, userID, KindPaymentRequired); err != nil {
		return nil, err
	}
	hotel, err := s.store.GetHotelWithRooms(ctx, hotelID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("hotel not found")
		}
		return nil, fmt.Errorf("load hotel: %w", err)
	}
	return hotel, nil
}
