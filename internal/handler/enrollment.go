package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/service"
)

// EnrollmentHandler serves GET and POST /enrollments.
type EnrollmentHandler struct {
	Enrollments *service.EnrollmentService
}

func NewEnrollmentHandler(s *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{Enrollments: s}
}

type addressReq struct {
	CEP           string  `json:"cep" validate:"required,numeric,len=8"`
	Street        string  `json:"street" validate:"required"`
	City          string  `json:"city" validate:"required"`
	State         string  `json:"state" validate:"required,len=2,alpha"`
	Number        string  `json:"number" validate:"required"`
	Neighborhood  string  `json:"neighborhood" validate:"required"`
	AddressDetail *string `json:"addressDetail"`
}

type enrollmentReq struct {
	Name     string     `json:"name" validate:"required,min=3"`
	CPF      string     `json:"cpf" validate:"required,numeric,len=11"`
	Birthday string     `json:"birthday" validate:"required"`
	Phone    string     `json:"phone" validate:"required,min=10,max=20"`
	Address  addressReq `json:"address"`
}

// parseBirthday accepts a calendar date or a full RFC 3339 timestamp.
func parseBirthday(s string) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// Get handles GET /enrollments.
func (h *EnrollmentHandler) Get(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Enrollments.GetEnrollment(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// Upsert handles POST /enrollments.
func (h *EnrollmentHandler) Upsert(c echo.Context) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req enrollmentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	birthday, ok := parseBirthday(req.Birthday)
	if !ok || birthday.After(time.Now()) {
		return badRequest(c, "invalid data", "birthday: date")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Enrollments.UpsertEnrollment(ctx, userID,
		&model.Enrollment{Name: req.Name, CPF: req.CPF, Birthday: birthday, Phone: req.Phone},
		&model.Address{
			CEP:           req.Address.CEP,
			Street:        req.Address.Street,
			City:          req.Address.City,
			State:         req.Address.State,
			Number:        req.Address.Number,
			Neighborhood:  req.Address.Neighborhood,
			AddressDetail: req.Address.AddressDetail,
		})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}
