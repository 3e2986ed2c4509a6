package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/event-booking/internal/handler"
	"github.com/iliyamo/event-booking/internal/memstore"
	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/router"
	"github.com/iliyamo/event-booking/internal/service"
	"github.com/iliyamo/event-booking/internal/utils"
)

const secret = "handler-test-secret"

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type api struct {
	t     *testing.T
	e     *echo.Echo
	store *memstore.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	s := memstore.New()
	logger := zerolog.Nop()
	accounts := service.NewAccountService(s, service.AccountSettings{
		JWTSecret: secret, AccessTTLMin: 15, BcryptCost: bcrypt.MinCost,
	}, logger)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(accounts),
		Enrollments: handler.NewEnrollmentHandler(service.NewEnrollmentService(s)),
		Tickets:     handler.NewTicketHandler(service.NewTicketService(s)),
		Hotels:      handler.NewHotelHandler(service.NewHotelService(s)),
		Bookings:    handler.NewBookingHandler(service.NewBookingService(s, nil, logger)),
		Payments:    handler.NewPaymentHandler(service.NewPaymentService(s, nil, logger)),
		DB:          pinger{},
	}
	e := router.New(h, router.Options{JWTSecret: secret, Sessions: s})
	return &api{t: t, e: e, store: s}
}

// signIn creates a user with a live session and returns its id and token.
func (a *api) signIn(email string) (uint64, string) {
	a.t.Helper()
	hash, err := utils.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(a.t, err)
	u := a.store.AddUser(email, hash)
	tok, err := utils.NewAccessToken(secret, u.ID, 15)
	require.NoError(a.t, err)
	require.NoError(a.t, a.store.CreateSession(context.Background(), &model.Session{UserID: u.ID, TokenHash: utils.HashToken(tok.Token)}))
	return u.ID, tok.Token
}

func (a *api) do(method, path, token, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// eligible gives userID a paid, in-person, hotel-inclusive ticket.
func (a *api) eligible(userID uint64) model.Ticket {
	e := a.store.AddEnrollment(userID)
	tt := a.store.AddTicketType("Presencial + Hotel", 600, false, true)
	return a.store.AddTicket(e.ID, tt.ID, model.TicketPaid)
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	e := echo.New()
	e.GET("/healthz", handler.Health(pinger{err: errors.New("down")}))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPI(t)
	a.do(http.MethodGet, "/healthz", "", "")
	rec := a.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eventbooking_http_requests_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newAPI(t)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/booking"},
		{http.MethodPost, "/booking"},
		{http.MethodPut, "/booking/1"},
		{http.MethodGet, "/hotels"},
		{http.MethodGet, "/hotels/1"},
		{http.MethodGet, "/payments?ticketId=1"},
		{http.MethodPost, "/payments/process"},
		{http.MethodGet, "/tickets"},
		{http.MethodGet, "/tickets/types"},
		{http.MethodPost, "/tickets"},
		{http.MethodGet, "/enrollments"},
		{http.MethodPost, "/enrollments"},
		{http.MethodPost, "/auth/sign-out"},
	} {
		assert.Equal(t, http.StatusUnauthorized, a.do(r.method, r.path, "", "").Code, r.method+" "+r.path)
		assert.Equal(t, http.StatusUnauthorized, a.do(r.method, r.path, "garbage", "").Code, r.method+" "+r.path)
	}
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/users", "", `{"email":"ana@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "ana@example.com", created["email"])

	rec = a.do(http.MethodPost, "/users", "", `{"email":"ana@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/users", "", `{"email":"not-an-email","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")

	rec = a.do(http.MethodPost, "/auth/sign-in", "", `{"email":"ana@example.com","password":"wrong-one"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/auth/sign-in", "", `{"email":"ana@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	signedIn := decode[struct {
		User  struct{ ID uint64 } `json:"user"`
		Token string              `json:"token"`
	}](t, rec)
	require.NotEmpty(t, signedIn.Token)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/enrollments", signedIn.Token, "").Code)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/auth/sign-out", signedIn.Token, "").Code)
	rec = a.do(http.MethodGet, "/enrollments", signedIn.Token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no session for given token")
}

func TestEnrollmentRoutes(t *testing.T) {
	a := newAPI(t)
	_, token := a.signIn("ana@example.com")

	body := `{"name":"Ana Maria","cpf":"12345678909","birthday":"1990-05-01","phone":"21999999999",
		"address":{"cep":"20000000","street":"Rua A","city":"Rio","state":"RJ","number":"10","neighborhood":"Centro"}}`
	rec := a.do(http.MethodPost, "/enrollments", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodGet, "/enrollments", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.Enrollment](t, rec)
	assert.Equal(t, "Ana Maria", got.Name)
	require.NotNil(t, got.Address)
	assert.Equal(t, "RJ", got.Address.State)

	rec = a.do(http.MethodPost, "/enrollments", token, `{"name":"A","cpf":"1","birthday":"x","phone":"1","address":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := decode[map[string]any](t, rec)["details"]
	assert.NotEmpty(t, details)
}

func TestTicketRoutes(t *testing.T) {
	a := newAPI(t)
	userID, token := a.signIn("ana@example.com")
	tt := a.store.AddTicketType("Online", 100, true, false)

	rec := a.do(http.MethodGet, "/tickets/types", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.TicketType](t, rec), 1)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/tickets", token, "").Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/tickets", token, `{"ticketTypeId":`+itoa(tt.ID)+`}`).Code)

	a.store.AddEnrollment(userID)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/tickets", token, `{}`).Code)

	rec = a.do(http.MethodPost, "/tickets", token, `{"ticketTypeId":`+itoa(tt.ID)+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "RESERVED", created["status"])
	assert.NotNil(t, created["TicketType"])

	rec = a.do(http.MethodGet, "/tickets", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Online", decode[model.Ticket](t, rec).TicketType.Name)
}

func TestHotelRoutes(t *testing.T) {
	a := newAPI(t)
	userID, token := a.signIn("ana@example.com")

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/hotels", token, "").Code, "no enrollment")

	e := a.store.AddEnrollment(userID)
	tt := a.store.AddTicketType("Presencial + Hotel", 600, false, true)
	a.store.AddTicket(e.ID, tt.ID, model.TicketReserved)
	assert.Equal(t, http.StatusPaymentRequired, a.do(http.MethodGet, "/hotels", token, "").Code)

	b, bToken := a.signIn("b@example.com")
	a.eligible(b)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/hotels", bToken, "").Code, "no hotels yet")

	h := a.store.AddHotel("driven")
	r := a.store.AddRoom(h.ID, "101", 2)
	rec := a.do(http.MethodGet, "/hotels", bToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Hotel](t, rec), 1)

	rec = a.do(http.MethodGet, "/hotels/"+itoa(h.ID), bToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	rooms, ok := got["Rooms"].([]any)
	require.True(t, ok)
	require.Len(t, rooms, 1)
	assert.EqualValues(t, r.ID, rooms[0].(map[string]any)["id"])

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/hotels/9999", bToken, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/hotels/abc", bToken, "").Code)
}

func TestBookingRoutes(t *testing.T) {
	a := newAPI(t)
	userID, token := a.signIn("ana@example.com")
	a.eligible(userID)
	h := a.store.AddHotel("driven")
	single := a.store.AddRoom(h.ID, "101", 1)
	double := a.store.AddRoom(h.ID, "102", 2)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/booking", token, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/booking", token, `{}`).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/booking", token, `{"roomId":9999}`).Code)

	rec := a.do(http.MethodPost, "/booking", token, `{"roomId":`+itoa(single.ID)+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bookingID := decode[map[string]uint64](t, rec)["bookingId"]
	require.NotZero(t, bookingID)

	rec = a.do(http.MethodGet, "/booking", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		ID   uint64     `json:"id"`
		Room model.Room `json:"Room"`
	}](t, rec)
	assert.Equal(t, bookingID, got.ID)
	assert.Equal(t, single.ID, got.Room.ID)

	otherID, otherToken := a.signIn("other@example.com")
	a.eligible(otherID)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/booking", otherToken, `{"roomId":`+itoa(single.ID)+`}`).Code, "room full")
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPut, "/booking/"+itoa(bookingID), otherToken, `{"roomId":`+itoa(double.ID)+`}`).Code, "not the owner")

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPut, "/booking/"+itoa(bookingID), token, `{"roomId":`+itoa(single.ID)+`}`).Code, "own full room")
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPut, "/booking/zero", token, `{"roomId":1}`).Code)

	rec = a.do(http.MethodPut, "/booking/"+itoa(bookingID), token, `{"roomId":`+itoa(double.ID)+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, bookingID, decode[map[string]uint64](t, rec)["bookingId"])
	assert.Equal(t, 1, a.store.CountBookings(double.ID))
}

func TestBookingForbiddenWithoutPaidTicket(t *testing.T) {
	a := newAPI(t)
	userID, token := a.signIn("ana@example.com")
	e := a.store.AddEnrollment(userID)
	tt := a.store.AddTicketType("Remoto", 100, true, false)
	a.store.AddTicket(e.ID, tt.ID, model.TicketPaid)
	h := a.store.AddHotel("driven")
	r := a.store.AddRoom(h.ID, "101", 3)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/booking", token, `{"roomId":`+itoa(r.ID)+`}`).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/booking", token, "").Code)
}

func TestPaymentRoutes(t *testing.T) {
	a := newAPI(t)
	userID, token := a.signIn("ana@example.com")
	e := a.store.AddEnrollment(userID)
	tt := a.store.AddTicketType("Presencial + Hotel", 600, false, true)
	ticket := a.store.AddTicket(e.ID, tt.ID, model.TicketReserved)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/payments", token, "").Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/payments?ticketId="+itoa(ticket.ID), token, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/payments/process", token, `{"ticketId":`+itoa(ticket.ID)+`}`).Code)

	card := `"cardData":{"issuer":"MASTERCARD","number":5555666677778888,"name":"ANA","expirationDate":"12/30","cvv":"123"}`
	arabic := `"cardData":{"issuer":"MASTERCARD","number":"٥٥٥٥١٢٣٤","name":"ANA","expirationDate":"12/30","cvv":"123"}`
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/payments/process", token, `{"ticketId":`+itoa(ticket.ID)+`,`+arabic+`}`).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/payments/process", token, `{"ticketId":9999,`+card+`}`).Code)

	_, otherToken := a.signIn("other@example.com")
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/payments/process", otherToken, `{"ticketId":`+itoa(ticket.ID)+`,`+card+`}`).Code)

	rec := a.do(http.MethodPost, "/payments/process", token, `{"ticketId":`+itoa(ticket.ID)+`,`+card+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[map[string]any](t, rec)
	assert.Equal(t, "8888", p["cardLastDigits"])
	assert.Equal(t, "MASTERCARD", p["cardIssuer"])
	assert.EqualValues(t, 600, p["value"])
	assert.NotContains(t, rec.Body.String(), "5555666677778888")
	assert.NotContains(t, rec.Body.String(), "cvv")

	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/payments/process", token, `{"ticketId":`+itoa(ticket.ID)+`,`+card+`}`).Code)

	rec = a.do(http.MethodGet, "/payments?ticketId="+itoa(ticket.ID), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "8888", decode[map[string]any](t, rec)["cardLastDigits"])

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/payments?ticketId="+itoa(ticket.ID), otherToken, "").Code)
}

func TestUnknownRoute(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/nope", "", "").Code)
}
