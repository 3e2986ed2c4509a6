package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking/internal/service"
)

// HotelHandler serves /hotels.  Both routes require a paid, in-person,
// hotel-inclusive ticket and answer 402 otherwise.
type HotelHandler struct {
	Hotels *service.HotelService
}

func NewHotelHandler(s *service.HotelService) *HotelHandler { return &HotelHandler{Hotels: s} }

// List handles GET /hotels.
func (h *HotelHandler) List(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotels, err := h.Hotels.ListHotels(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, hotels)
}

// Get handles GET /hotels/:hotelId.
func (h *HotelHandler) Get(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	hotelID, ok := parseID(c, "hotelId")
	if !ok {
		return badRequest(c, "invalid hotel id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotel, err := h.Hotels.GetHotelWithRooms(ctx, userID, hotelID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, hotel)
}
