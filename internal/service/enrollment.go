package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/event-booking/internal/model"
)

// EnrollmentService reads and upserts a user's enrollment and address.
type EnrollmentService struct {
	store Store
}

func NewEnrollmentService(store Store) *EnrollmentService { return &EnrollmentService{store: store} }

// GetEnrollment returns the user's enrollment with its address.
func (s *EnrollmentService) GetEnrollment(ctx context.Context, userID uint64) (*model.Enrollment, error) {
	enrollment, err := s.store.GetEnrollmentWithAddress(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("enrollment not found")
		}
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	return enrollment, nil
}

// UpsertEnrollment creates or replaces the user's enrollment and address
// in one transaction.  UserID on e is always overwritten with userID.
func (s *EnrollmentService) UpsertEnrollment(ctx context.Context, userID uint64, e *model.Enrollment, addr *model.Address) (*model.Enrollment, error) {
	if e == nil || addr == nil {
		return nil, invalidData("enrollment and address are required")
	}
	e.UserID = userID
	err := s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.UpsertEnrollment(ctx, e); err != nil {
			return fmt.Errorf("upsert enrollment: %w", err)
		}
		addr.EnrollmentID = e.ID
		if err := tx.UpsertAddress(ctx, addr); err != nil {
			return fmt.Errorf("upsert address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.Address = addr
	return e, nil
}
