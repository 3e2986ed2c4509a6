package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking/internal/service"
)

// TicketHandler serves /tickets.
type TicketHandler struct {
	Tickets *service.TicketService
}

func NewTicketHandler(s *service.TicketService) *TicketHandler { return &TicketHandler{Tickets: s} }

type createTicketReq struct {
	TicketTypeID uint64 `json:"ticketTypeId" validate:"required,gt=0"`
}

// ListTypes handles GET /tickets/types.
func (h *TicketHandler) ListTypes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	types, err := h.Tickets.ListTicketTypes(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, types)
}

// Get handles GET /tickets.
func (h *TicketHandler) Get(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tickets.GetUserTicket(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Create handles POST /tickets.
func (h *TicketHandler) Create(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req createTicketReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tickets.CreateTicket(ctx, userID, req.TicketTypeID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}
