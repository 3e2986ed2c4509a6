package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/event-booking/internal/metrics"
	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/queue"
)

// BookingService creates, reads and moves hotel bookings.  Eligibility is
// always checked first so an ineligible user gets the same answer whatever
// the state of the room.
type BookingService struct {
	store  Store
	events EventPublisher
	logger zerolog.Logger
}

// NewBookingService wires a BookingService.  A nil publisher disables
// event publication.
func NewBookingService(store Store, events EventPublisher, logger zerolog.Logger) *BookingService {
	if events == nil {
		events = NopPublisher{}
	}
	return &BookingService{
		store:  store,
		events: events,
		logger: logger.With().Str("component", "bookings").Logger(),
	}
}

// CreateBooking books roomID for userID.  The capacity check and the
// insert share one transaction.
func (s *BookingService) CreateBooking(ctx context.Context, userID, roomID uint64) (*model.Booking, error) {
	if err := VerifyHotelEligibility(ctx, s.store, userID, KindForbidden); err != nil {
		s.reject("eligibility", err)
		return nil, err
	}

	var booking *model.Booking
	err := s.store.WithTx(ctx, func(tx Store) error {
		room, err := CheckRoomCapacity(ctx, tx, roomID)
		if err != nil {
			return err
		}
		booking = &model.Booking{UserID: userID, RoomID: room.ID}
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		s.rejectRoom(err)
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues("create").Inc()
	s.logger.Info().Uint64("booking_id", booking.ID).Uint64("user_id", userID).Uint64("room_id", roomID).Msg("booking created")
	s.publish(ctx, queue.BookingCreatedKey, queue.BookingEvent{
		BookingID:  booking.ID,
		UserID:     userID,
		RoomID:     roomID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return booking, nil
}

// GetBooking returns the user's booking with its room.
func (s *BookingService) GetBooking(ctx context.Context, userID uint64) (*model.Booking, error) {
	if err := VerifyHotelEligibility(ctx, s.store, userID, KindForbidden); err != nil {
		return nil, err
	}
	booking, err := s.store.GetBookingByUser(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("booking not found")
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return booking, nil
}

// UpdateBooking moves bookingID to roomID.  The target room must have
// space even when the booking already occupies it; a booking that does
// not belong to userID fails with KindForbidden rather than KindNotFound.
func (s *BookingService) UpdateBooking(ctx context.Context, userID, bookingID, roomID uint64) (*model.Booking, error) {
	if err := VerifyHotelEligibility(ctx, s.store, userID, KindForbidden); err != nil {
		s.reject("eligibility", err)
		return nil, err
	}

	var (
		booking  *model.Booking
		previous uint64
	)
	err := s.store.WithTx(ctx, func(tx Store) error {
		room, err := CheckRoomCapacity(ctx, tx, roomID)
		if err != nil {
			return err
		}
		booking, err = tx.GetBookingForUser(ctx, userID, bookingID)
		if err != nil {
			if isNoRows(err) {
				return forbidden("booking does not belong to user")
			}
			return fmt.Errorf("load booking: %w", err)
		}
		previous = booking.RoomID
		if err := tx.UpdateBookingRoom(ctx, booking.ID, userID, room.ID); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
		booking.RoomID = room.ID
		booking.Room = nil
		return nil
	})
	if err != nil {
		s.rejectRoom(err)
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues("update").Inc()
	s.logger.Info().Uint64("booking_id", booking.ID).Uint64("from_room_id", previous).Uint64("room_id", roomID).Msg("booking moved")
	s.publish(ctx, queue.BookingUpdatedKey, queue.BookingEvent{
		BookingID:      booking.ID,
		UserID:         userID,
		RoomID:         roomID,
		PreviousRoomID: previous,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	})
	return booking, nil
}

// rejectRoom records why the transactional part of a booking failed.
func (s *BookingService) rejectRoom(err error) {
	var e *Error
	if !errors.As(err, &e) {
		return
	}
	switch {
	case e.Kind == KindNotFound:
		s.reject("room_not_found", err)
	case e.Kind == KindForbidden && e.Message == "room is at full capacity":
		s.reject("capacity", err)
	case e.Kind == KindForbidden:
		s.reject("ownership", err)
	}
}

func (s *BookingService) reject(reason string, err error) {
	if KindOf(err) == KindUnknown {
		return
	}
	metrics.AdmissionRejections.WithLabelValues(reason).Inc()
	s.logger.Debug().Str("reason", reason).Err(err).Msg("booking rejected")
}

func (s *BookingService) publish(ctx context.Context, key string, event any) {
	publish(ctx, s.events, s.logger, key, event)
}

func publish(ctx context.Context, events EventPublisher, logger zerolog.Logger, key string, event any) {
	if err := events.Publish(ctx, key, event); err != nil {
		metrics.EventsPublished.WithLabelValues(key, "error").Inc()
		logger.Warn().Err(err).Str("routing_key", key).Msg("event publish failed")
		return
	}
	metrics.EventsPublished.WithLabelValues(key, "ok").Inc()
}
