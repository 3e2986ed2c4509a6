package memstore

import (
	"time"

	"github.com/iliyamo/event-booking/internal/model"
)

// The seed helpers write fixtures directly, bypassing the gateway
// contract.  They are meant for tests.

// AddUser stores a user with an already hashed password.
func (s *Store) AddUser(email, passwordHash string) model.User {
	defer s.write()()
	u := model.User{ID: s.id(), Email: email, PasswordHash: passwordHash, CreatedAt: now(), UpdatedAt: now()}
	s.d.users[u.ID] = u
	return u
}

// AddEnrollment stores an enrollment for userID.
func (s *Store) AddEnrollment(userID uint64) model.Enrollment {
	defer s.write()()
	e := model.Enrollment{
		ID:        s.id(),
		UserID:    userID,
		Name:      "Test User",
		CPF:       "12345678909",
		Birthday:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Phone:     "21999999999",
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	s.d.enrollments[e.ID] = e
	return e
}

// AddTicketType stores a ticket type.
func (s *Store) AddTicketType(name string, price int64, isRemote, includesHotel bool) model.TicketType {
	defer s.write()()
	tt := model.TicketType{ID: s.id(), Name: name, Price: price, IsRemote: isRemote, IncludesHotel: includesHotel, CreatedAt: now(), UpdatedAt: now()}
	s.d.ticketTypes[tt.ID] = tt
	return tt
}

// AddTicket stores a ticket with the given status.
func (s *Store) AddTicket(enrollmentID, ticketTypeID uint64, status model.TicketStatus) model.Ticket {
	defer s.write()()
	t := model.Ticket{ID: s.id(), Status: status, TicketTypeID: ticketTypeID, EnrollmentID: enrollmentID, CreatedAt: now(), UpdatedAt: now()}
	s.d.tickets[t.ID] = t
	return t
}

// AddHotel stores a hotel.
func (s *Store) AddHotel(name string) model.Hotel {
	defer s.write()()
	h := model.Hotel{ID: s.id(), Name: name, Image: "https://example.com/" + name + ".jpg", CreatedAt: now(), UpdatedAt: now()}
	s.d.hotels[h.ID] = h
	return h
}

// AddRoom stores a room of the given capacity in hotelID.
func (s *Store) AddRoom(hotelID uint64, name string, capacity uint32) model.Room {
	defer s.write()()
	r := model.Room{ID: s.id(), Name: name, Capacity: capacity, HotelID: hotelID, CreatedAt: now(), UpdatedAt: now()}
	s.d.rooms[r.ID] = r
	return r
}

// AddBooking stores a booking without any capacity check.
func (s *Store) AddBooking(userID, roomID uint64) model.Booking {
	defer s.write()()
	b := model.Booking{ID: s.id(), UserID: userID, RoomID: roomID, CreatedAt: now(), UpdatedAt: now()}
	s.d.bookings[b.ID] = b
	return b
}

// CountBookings returns how many bookings reference roomID.
func (s *Store) CountBookings(roomID uint64) int {
	defer s.lock()()
	n := 0
	for _, b := range s.d.bookings {
		if b.RoomID == roomID {
			n++
		}
	}
	return n
}

// Ticket returns the stored ticket without its type.
func (s *Store) Ticket(id uint64) (model.Ticket, bool) {
	defer s.lock()()
	t, ok := s.d.tickets[id]
	return t, ok
}

// PaymentCount returns the number of stored payments.
func (s *Store) PaymentCount() int {
	defer s.lock()()
	return len(s.d.payments)
}

// SessionCount returns the number of open sessions.
func (s *Store) SessionCount() int {
	defer s.lock()()
	return len(s.d.sessions)
}
