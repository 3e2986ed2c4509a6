package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/event-booking/internal/memstore"
	"github.com/iliyamo/event-booking/internal/model"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	return m.Called(ctx, routingKey, event).Error(0)
}

// fixture is a user with an enrollment, a ticket of the requested kind
// and one hotel with two rooms.
type fixture struct {
	store    *memstore.Store
	userID   uint64
	ticket   model.Ticket
	hotel    model.Hotel
	room     model.Room // capacity 1
	bigRoom  model.Room // capacity 3
	logger   zerolog.Logger
	enrolled model.Enrollment
}

type ticketKind struct {
	status        model.TicketStatus
	isRemote      bool
	includesHotel bool
}

var eligibleTicket = ticketKind{status: model.TicketPaid, includesHotel: true}

func newFixture(t *testing.T, kind ticketKind) *fixture {
	t.Helper()
	s := memstore.New()
	u := s.AddUser("user@example.com", "x")
	e := s.AddEnrollment(u.ID)
	tt := s.AddTicketType("ticket", 600, kind.isRemote, kind.includesHotel)
	ticket := s.AddTicket(e.ID, tt.ID, kind.status)
	h := s.AddHotel("driven")
	return &fixture{
		store:    s,
		userID:   u.ID,
		ticket:   ticket,
		hotel:    h,
		room:     s.AddRoom(h.ID, "101", 1),
		bigRoom:  s.AddRoom(h.ID, "102", 3),
		logger:   zerolog.Nop(),
		enrolled: e,
	}
}

// addEligibleUser creates another user holding a paid in-person hotel
// ticket.
func (f *fixture) addEligibleUser(email string) uint64 {
	u := f.store.AddUser(email, "x")
	e := f.store.AddEnrollment(u.ID)
	tt := f.store.AddTicketType("ticket", 600, false, true)
	f.store.AddTicket(e.ID, tt.ID, model.TicketPaid)
	return u.ID
}
