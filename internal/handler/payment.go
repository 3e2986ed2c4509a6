package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking/internal/service"
)

// PaymentHandler serves /payments.
type PaymentHandler struct {
	Payments *service.PaymentService
}

func NewPaymentHandler(s *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: s}
}

// flexString accepts a JSON string or number.  Card numbers arrive in
// both forms.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type cardDataReq struct {
	Issuer         string     `json:"issuer" validate:"required"`
	Number         flexString `json:"number" validate:"required,printascii"`
	Name           string     `json:"name" validate:"required"`
	ExpirationDate string     `json:"expirationDate" validate:"required"`
	CVV            flexString `json:"cvv" validate:"required,min=3,max=4"`
}

type processPaymentReq struct {
	TicketID uint64       `json:"ticketId" validate:"required,gt=0"`
	CardData *cardDataReq `json:"cardData" validate:"required"`
}

// Process handles POST /payments/process.
func (h *PaymentHandler) Process(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req processPaymentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Payments.RecordPayment(ctx, userID, req.TicketID, &service.CardData{
		Issuer:         req.CardData.Issuer,
		Number:         string(req.CardData.Number),
		Name:           req.CardData.Name,
		ExpirationDate: req.CardData.ExpirationDate,
		CVV:            string(req.CardData.CVV),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Get handles GET /payments?ticketId=.
func (h *PaymentHandler) Get(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	ticketID, err := strconv.ParseUint(c.QueryParam("ticketId"), 10, 64)
	if err != nil || ticketID == 0 {
		return badRequest(c, "ticketId is required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Payments.GetPayment(ctx, userID, ticketID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
