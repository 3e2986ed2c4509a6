package service

import (
	"context"
	"fmt"
)

// VerifyHotelEligibility checks that userID holds a paid, hotel-inclusive,
// in-person ticket.  A missing enrollment or ticket fails with
// KindNotFound; a ticket that does not grant hotel access fails with the
// given denial kind (KindForbidden when booking, KindPaymentRequired when
// browsing hotels).  It performs no writes.
func VerifyHotelEligibility(ctx context.Context, store EligibilityReader, userID uint64, denial Kind) error {
	enrollment, err := store.GetEnrollmentByUserID(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return notFound("enrollment not found")
		}
		return fmt.Errorf("load enrollment: %w", err)
	}
	ticket, err := store.GetTicketByEnrollmentID(ctx, enrollment.ID)
	if err != nil {
		if isNoRows(err) {
			return notFound("ticket not found")
		}
		return fmt.Errorf("load ticket: %w", err)
	}
	if !ticket.GrantsHotel() {
		return newError(denial, "ticket is not paid, is remote or does not include hotel")
	}
	return nil
}
