// Package memstore is an in-memory implementation of the persistence
// gateway.  It backs the service and handler tests and honours the same
// contract as the MySQL store: lookups that find nothing return
// sql.ErrNoRows, unique violations return service.ErrDuplicate, and
// WithTx discards every write of a failed transaction.
package memstore

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/service"
)

type data struct {
	nextID      uint64
	users       map[uint64]model.User
	sessions    map[string]model.Session
	enrollments map[uint64]model.Enrollment
	addresses   map[uint64]model.Address // keyed by enrollment id
	ticketTypes map[uint64]model.TicketType
	tickets     map[uint64]model.Ticket
	hotels      map[uint64]model.Hotel
	rooms       map[uint64]model.Room
	bookings    map[uint64]model.Booking
	payments    map[uint64]model.Payment
}

func newData() *data {
	return &data{
		users:       map[uint64]model.User{},
		sessions:    map[string]model.Session{},
		enrollments: map[uint64]model.Enrollment{},
		addresses:   map[uint64]model.Address{},
		ticketTypes: map[uint64]model.TicketType{},
		tickets:     map[uint64]model.Ticket{},
		hotels:      map[uint64]model.Hotel{},
		rooms:       map[uint64]model.Room{},
		bookings:    map[uint64]model.Booking{},
		payments:    map[uint64]model.Payment{},
	}
}

func (d *data) clone() *data {
	c := newData()
	c.nextID = d.nextID
	copyMap(c.users, d.users)
	copyMap(c.sessions, d.sessions)
	copyMap(c.enrollments, d.enrollments)
	copyMap(c.addresses, d.addresses)
	copyMap(c.ticketTypes, d.ticketTypes)
	copyMap(c.tickets, d.tickets)
	copyMap(c.hotels, d.hotels)
	copyMap(c.rooms, d.rooms)
	copyMap(c.bookings, d.bookings)
	copyMap(c.payments, d.payments)
	return c
}

func copyMap[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		dst[k] = v
	}
}

// Store is safe for concurrent use.  Transactions are serialised, which
// gives the same outcome as row locking for the capacity check.
type Store struct {
	mu   *sync.Mutex
	txMu *sync.Mutex
	d    *data
	inTx bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{mu: &sync.Mutex{}, txMu: &sync.Mutex{}, d: newData()}
}

var _ service.Store = (*Store)(nil)

func (s *Store) id() uint64 {
	s.d.nextID++
	return s.d.nextID
}

func (s *Store) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// write locks for a mutation.  Outside a transaction it also waits for
// any running transaction, whose rollback would otherwise drop the write.
func (s *Store) write() func() {
	if s.inTx {
		return s.lock()
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func now() time.Time { return time.Now().UTC() }

// WithTx runs fn with exclusive access to the store and restores the
// previous state if fn returns an error or panics.
func (s *Store) WithTx(ctx context.Context, fn func(tx service.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	committed := false
	defer func() {
		if !committed {
			s.mu.Lock()
			*s.d = *snapshot
			s.mu.Unlock()
		}
	}()

	if err := fn(&Store{mu: s.mu, txMu: s.txMu, d: s.d, inTx: true}); err != nil {
		return err
	}
	committed = true
	return nil
}

// Users and sessions.

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	defer s.write()()
	for _, existing := range s.d.users {
		if existing.Email == u.Email {
			return service.ErrDuplicate
		}
	}
	u.ID = s.id()
	u.CreatedAt, u.UpdatedAt = now(), now()
	s.d.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	defer s.lock()()
	for _, u := range s.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *Store) CreateSession(_ context.Context, sess *model.Session) error {
	defer s.write()()
	if _, ok := s.d.sessions[sess.TokenHash]; ok {
		return service.ErrDuplicate
	}
	sess.ID = s.id()
	sess.CreatedAt = now()
	s.d.sessions[sess.TokenHash] = *sess
	return nil
}

func (s *Store) SessionExists(_ context.Context, tokenHash string) (bool, error) {
	defer s.lock()()
	_, ok := s.d.sessions[tokenHash]
	return ok, nil
}

func (s *Store) DeleteSession(_ context.Context, tokenHash string) error {
	defer s.write()()
	delete(s.d.sessions, tokenHash)
	return nil
}

// Enrollments.

func (s *Store) GetEnrollmentByUserID(_ context.Context, userID uint64) (*model.Enrollment, error) {
	defer s.lock()()
	return s.enrollmentByUser(userID)
}

func (s *Store) enrollmentByUser(userID uint64) (*model.Enrollment, error) {
	for _, e := range s.d.enrollments {
		if e.UserID == userID {
			e.Address = nil
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *Store) GetEnrollmentByID(_ context.Context, id uint64) (*model.Enrollment, error) {
	defer s.lock()()
	e, ok := s.d.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (s *Store) GetEnrollmentWithAddress(_ context.Context, userID uint64) (*model.Enrollment, error) {
	defer s.lock()()
	e, err := s.enrollmentByUser(userID)
	if err != nil {
		return nil, err
	}
	if a, ok := s.d.addresses[e.ID]; ok {
		e.Address = &a
	}
	return e, nil
}

func (s *Store) UpsertEnrollment(_ context.Context, e *model.Enrollment) error {
	defer s.write()()
	if existing, err := s.enrollmentByUser(e.UserID); err == nil {
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
	} else {
		e.ID = s.id()
		e.CreatedAt = now()
	}
	e.UpdatedAt = now()
	stored := *e
	stored.Address = nil
	s.d.enrollments[e.ID] = stored
	return nil
}

func (s *Store) UpsertAddress(_ context.Context, a *model.Address) error {
	defer s.write()()
	if _, ok := s.d.enrollments[a.EnrollmentID]; !ok {
		return sql.ErrNoRows
	}
	if existing, ok := s.d.addresses[a.EnrollmentID]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		a.ID = s.id()
		a.CreatedAt = now()
	}
	a.UpdatedAt = now()
	s.d.addresses[a.EnrollmentID] = *a
	return nil
}

// Tickets.

func (s *Store) ListTicketTypes(context.Context) ([]model.TicketType, error) {
	defer s.lock()()
	out := make([]model.TicketType, 0, len(s.d.ticketTypes))
	for _, tt := range s.d.ticketTypes {
		out = append(out, tt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetTicketTypeByID(_ context.Context, id uint64) (*model.TicketType, error) {
	defer s.lock()()
	tt, ok := s.d.ticketTypes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &tt, nil
}

func (s *Store) withType(t model.Ticket) *model.Ticket {
	tt := s.d.ticketTypes[t.TicketTypeID]
	t.TicketType = &tt
	return &t
}

func (s *Store) GetTicketByEnrollmentID(_ context.Context, enrollmentID uint64) (*model.Ticket, error) {
	defer s.lock()()
	var found *model.Ticket
	for _, t := range s.d.tickets {
		if t.EnrollmentID == enrollmentID && (found == nil || t.ID < found.ID) {
			found = s.withType(t)
		}
	}
	if found == nil {
		return nil, sql.ErrNoRows
	}
	return found, nil
}

func (s *Store) GetTicketByID(_ context.Context, id uint64) (*model.Ticket, error) {
	defer s.lock()()
	t, ok := s.d.tickets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s.withType(t), nil
}

func (s *Store) CreateTicket(_ context.Context, t *model.Ticket) error {
	defer s.write()()
	if _, ok := s.d.ticketTypes[t.TicketTypeID]; !ok {
		return sql.ErrNoRows
	}
	t.ID = s.id()
	t.CreatedAt, t.UpdatedAt = now(), now()
	stored := *t
	stored.TicketType = nil
	s.d.tickets[t.ID] = stored
	return nil
}

func (s *Store) MarkTicketPaid(_ context.Context, ticketID uint64) (bool, error) {
	defer s.write()()
	t, ok := s.d.tickets[ticketID]
	if !ok || t.Status != model.TicketReserved {
		return false, nil
	}
	t.Status = model.TicketPaid
	t.UpdatedAt = now()
	s.d.tickets[ticketID] = t
	return true, nil
}

// Hotels and rooms.

func (s *Store) ListHotels(context.Context) ([]model.Hotel, error) {
	defer s.lock()()
	out := make([]model.Hotel, 0, len(s.d.hotels))
	for _, h := range s.d.hotels {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetHotelWithRooms(_ context.Context, hotelID uint64) (*model.Hotel, error) {
	defer s.lock()()
	h, ok := s.d.hotels[hotelID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	h.Rooms = []model.Room{}
	for _, r := range s.d.rooms {
		if r.HotelID == hotelID {
			h.Rooms = append(h.Rooms, r)
		}
	}
	sort.Slice(h.Rooms, func(i, j int) bool { return h.Rooms[i].ID < h.Rooms[j].ID })
	return &h, nil
}

func (s *Store) GetRoomForUpdate(_ context.Context, roomID uint64) (*model.Room, error) {
	defer s.lock()()
	r, ok := s.d.rooms[roomID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	r.Bookings = nil
	for _, b := range s.d.bookings {
		if b.RoomID == roomID {
			r.Bookings = append(r.Bookings, b)
		}
	}
	return &r, nil
}

// Bookings.

func (s *Store) CreateBooking(_ context.Context, b *model.Booking) error {
	defer s.write()()
	if _, ok := s.d.rooms[b.RoomID]; !ok {
		return sql.ErrNoRows
	}
	b.ID = s.id()
	b.CreatedAt, b.UpdatedAt = now(), now()
	stored := *b
	stored.Room = nil
	s.d.bookings[b.ID] = stored
	return nil
}

func (s *Store) GetBookingByUser(_ context.Context, userID uint64) (*model.Booking, error) {
	defer s.lock()()
	var found *model.Booking
	for _, b := range s.d.bookings {
		if b.UserID == userID && (found == nil || b.ID < found.ID) {
			b := b
			found = &b
		}
	}
	if found == nil {
		return nil, sql.ErrNoRows
	}
	r := s.d.rooms[found.RoomID]
	found.Room = &r
	return found, nil
}

func (s *Store) GetBookingForUser(_ context.Context, userID, bookingID uint64) (*model.Booking, error) {
	defer s.lock()()
	b, ok := s.d.bookings[bookingID]
	if !ok || b.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

func (s *Store) UpdateBookingRoom(_ context.Context, bookingID, userID, roomID uint64) error {
	defer s.write()()
	b, ok := s.d.bookings[bookingID]
	if !ok || b.UserID != userID {
		return sql.ErrNoRows
	}
	if _, ok := s.d.rooms[roomID]; !ok {
		return sql.ErrNoRows
	}
	b.RoomID = roomID
	b.UpdatedAt = now()
	s.d.bookings[bookingID] = b
	return nil
}

// Payments.

func (s *Store) CreatePayment(_ context.Context, p *model.Payment) error {
	defer s.write()()
	for _, existing := range s.d.payments {
		if existing.TicketID == p.TicketID {
			return service.ErrDuplicate
		}
	}
	p.ID = s.id()
	p.CreatedAt, p.UpdatedAt = now(), now()
	s.d.payments[p.ID] = *p
	return nil
}

func (s *Store) GetPaymentByTicketID(_ context.Context, ticketID uint64) (*model.Payment, error) {
	defer s.lock()()
	for _, p := range s.d.payments {
		if p.TicketID == ticketID {
			return &p, nil
		}
	}
	return nil, sql.ErrNoRows
}
