package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/event-booking/internal/model"
)

// TicketService exposes ticket types and the user's ticket.
type TicketService struct {
	store Store
}

func NewTicketService(store Store) *TicketService { return &TicketService{store: store} }

// ListTicketTypes returns the ticket catalogue, possibly empty.
func (s *TicketService) ListTicketTypes(ctx context.Context) ([]model.TicketType, error) {
	types, err := s.store.ListTicketTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	if types == nil {
		types = []model.TicketType{}
	}
	return types, nil
}

// GetUserTicket returns the ticket of the user's enrollment with its type.
func (s *TicketService) GetUserTicket(ctx context.Context, userID uint64) (*model.Ticket, error) {
	enrollment, err := s.store.GetEnrollmentByUserID(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("enrollment not found")
		}
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	ticket, err := s.store.GetTicketByEnrollmentID(ctx, enrollment.ID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("ticket not found")
		}
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	return ticket, nil
}

// CreateTicket reserves a ticket of ticketTypeID for the user's
// enrollment.  New tickets are always RESERVED.
func (s *TicketService) CreateTicket(ctx context.Context, userID, ticketTypeID uint64) (*model.Ticket, error) {
	if ticketTypeID == 0 {
		return nil, invalidData("ticketTypeId is required")
	}
	enrollment, err := s.store.GetEnrollmentByUserID(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("enrollment not found")
		}
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	ticketType, err := s.store.GetTicketTypeByID(ctx, ticketTypeID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("ticket type not found")
		}
		return nil, fmt.Errorf("load ticket type: %w", err)
	}
	ticket := &model.Ticket{
		Status:       model.TicketReserved,
		TicketTypeID: ticketType.ID,
		EnrollmentID: enrollment.ID,
	}
	if err := s.store.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	ticket.TicketType = ticketType
	return ticket, nil
}
