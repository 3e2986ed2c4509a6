package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/event-booking/internal/metrics"
	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/queue"
)

// CardData is the card presented with a payment.  Only Issuer and the
// last four digits of Number are kept; CVV is read and discarded.
type CardData struct {
	Issuer         string
	Number         string
	Name           string
	ExpirationDate string
	CVV            string
}

// PaymentService records ticket payments.
type PaymentService struct {
	store  Store
	events EventPublisher
	logger zerolog.Logger
}

// NewPaymentService wires a PaymentService.  A nil publisher disables
// event publication.
func NewPaymentService(store Store, events EventPublisher, logger zerolog.Logger) *PaymentService {
	if events == nil {
		events = NopPublisher{}
	}
	return &PaymentService{
		store:  store,
		events: events,
		logger: logger.With().Str("component", "payments").Logger(),
	}
}

// RecordPayment settles ticketID for userID.  The PAID transition and the
// payment insert share a transaction; a ticket that is already paid fails
// with KindConflict and nothing is written.
func (s *PaymentService) RecordPayment(ctx context.Context, userID, ticketID uint64, card *CardData) (*model.Payment, error) {
	if ticketID == 0 || card == nil {
		return nil, invalidData("ticketId and cardData are required")
	}
	last4, ok := lastDigits(card.Number, 4)
	if !ok {
		return nil, invalidData("cardData.number must be at least 4 ASCII digits")
	}

	ticket, err := s.ownedTicket(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.TicketType == nil {
		return nil, fmt.Errorf("ticket %d has no ticket type loaded", ticket.ID)
	}

	payment := &model.Payment{
		TicketID:       ticket.ID,
		Value:          ticket.TicketType.Price,
		CardIssuer:     card.Issuer,
		CardLastDigits: last4,
	}
	err = s.store.WithTx(ctx, func(tx Store) error {
		changed, err := tx.MarkTicketPaid(ctx, ticket.ID)
		if err != nil {
			return fmt.Errorf("mark ticket paid: %w", err)
		}
		if !changed {
			return conflict("ticket already paid")
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return conflict("ticket already paid")
			}
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsTotal.Inc()
	metrics.PaymentValueTotal.Add(float64(payment.Value))
	s.logger.Info().Uint64("payment_id", payment.ID).Uint64("ticket_id", ticket.ID).Int64("value", payment.Value).Msg("payment recorded")
	publish(ctx, s.events, s.logger, queue.PaymentProcessedKey, queue.PaymentProcessedEvent{
		PaymentID:      payment.ID,
		TicketID:       ticket.ID,
		UserID:         userID,
		Value:          payment.Value,
		CardIssuer:     payment.CardIssuer,
		CardLastDigits: payment.CardLastDigits,
		ProcessedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	return payment, nil
}

// GetPayment returns the payment recorded for ticketID, checking that the
// ticket belongs to userID first.
func (s *PaymentService) GetPayment(ctx context.Context, userID, ticketID uint64) (*model.Payment, error) {
	if ticketID == 0 {
		return nil, invalidData("ticketId is required")
	}
	if _, err := s.ownedTicket(ctx, userID, ticketID); err != nil {
		return nil, err
	}
	payment, err := s.store.GetPaymentByTicketID(ctx, ticketID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("payment not found")
		}
		return nil, fmt.Errorf("load payment: %w", err)
	}
	return payment, nil
}

func (s *PaymentService) ownedTicket(ctx context.Context, userID, ticketID uint64) (*model.Ticket, error) {
	ticket, err := s.store.GetTicketByID(ctx, ticketID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("ticket not found")
		}
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	enrollment, err := s.store.GetEnrollmentByID(ctx, ticket.EnrollmentID)
	if err != nil {
		if isNoRows(err) {
			return nil, unauthorized("ticket does not belong to user")
		}
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if enrollment.UserID != userID {
		return nil, unauthorized("ticket does not belong to user")
	}
	return ticket, nil
}

// lastDigits returns the final n ASCII digits of number.  Spaces and
// dashes are allowed as separators; any other character rejects it.
func lastDigits(number string, n int) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(number); i++ {
		switch c := number[i]; {
		case '0' <= c && c <= '9':
			b.WriteByte(c)
		case c == ' ' || c == '-':
		default:
			return "", false
		}
	}
	digits := b.String()
	if len(digits) < n {
		return "", false
	}
	return digits[len(digits)-n:], true
}
