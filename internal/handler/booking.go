package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/service"
)

// BookingHandler serves /booking.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(s *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: s}
}

type roomReq struct {
	RoomID uint64 `json:"roomId" validate:"required,gt=0"`
}

type bookingIDResp struct {
	BookingID uint64 `json:"bookingId"`
}

type bookingResp struct {
	ID   uint64      `json:"id"`
	Room *model.Room `json:"Room"`
}

// Create handles POST /booking.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req roomReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.CreateBooking(ctx, userID, req.RoomID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookingIDResp{BookingID: b.ID})
}

// Get handles GET /booking.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetBooking(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookingResp{ID: b.ID, Room: b.Room})
}

// Update handles PUT /booking/:bookingId.
func (h *BookingHandler) Update(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	bookingID, ok := parseID(c, "bookingId")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	var req roomReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.UpdateBooking(ctx, userID, bookingID, req.RoomID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookingIDResp{BookingID: b.ID})
}
