package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-booking/internal/model"
)

const enrollmentColumns = "id,user_id,name,cpf,birthday,phone,created_at,updated_at"

func (s *Store) scanEnrollment(ctx context.Context, query string, arg any) (*model.Enrollment, error) {
	var e model.Enrollment
	err := s.q.QueryRowContext(ctx, query, arg).Scan(
		&e.ID, &e.UserID, &e.Name, &e.CPF, &e.Birthday, &e.Phone, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEnrollmentByUserID fetches the enrollment of a user.
func (s *Store) GetEnrollmentByUserID(ctx context.Context, userID uint64) (*model.Enrollment, error) {
	return s.scanEnrollment(ctx, "SELECT "+enrollmentColumns+" FROM enrollments WHERE user_id=? LIMIT 1", userID)
}

// GetEnrollmentByID fetches an enrollment by id.
func (s *Store) GetEnrollmentByID(ctx context.Context, id uint64) (*model.Enrollment, error) {
	return s.scanEnrollment(ctx, "SELECT "+enrollmentColumns+" FROM enrollments WHERE id=? LIMIT 1", id)
}

// GetEnrollmentWithAddress fetches the user's enrollment and, when one
// exists, its address.
func (s *Store) GetEnrollmentWithAddress(ctx context.Context, userID uint64) (*model.Enrollment, error) {
	e, err := s.GetEnrollmentByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var (
		a      model.Address
		detail sql.NullString
	)
	err = s.q.QueryRowContext(ctx,
		`SELECT id,enrollment_id,cep,street,city,state,number,neighborhood,address_detail,created_at,updated_at
		 FROM addresses WHERE enrollment_id=? LIMIT 1`, e.ID).Scan(
		&a.ID, &a.EnrollmentID, &a.CEP, &a.Street, &a.City, &a.State, &a.Number, &a.Neighborhood,
		&detail, &a.CreatedAt, &a.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return e, nil
	case err != nil:
		return nil, err
	}
	if detail.Valid {
		a.AddressDetail = &detail.String
	}
	e.Address = &a
	return e, nil
}

// UpsertEnrollment inserts the enrollment or updates the one already held
// by e.UserID, and sets e.ID in both cases.
func (s *Store) UpsertEnrollment(ctx context.Context, e *model.Enrollment) error {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO enrollments (user_id, name, cpf, birthday, phone) VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE id=LAST_INSERT_ID(id), name=VALUES(name), cpf=VALUES(cpf),
		 birthday=VALUES(birthday), phone=VALUES(phone)`,
		e.UserID, e.Name, e.CPF, e.Birthday, e.Phone)
	if err != nil {
		return mapWriteErr(err)
	}
	e.ID, err = lastID(res)
	return err
}

// UpsertAddress inserts or replaces the address of a.EnrollmentID.
func (s *Store) UpsertAddress(ctx context.Context, a *model.Address) error {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO addresses (enrollment_id, cep, street, city, state, number, neighborhood, address_detail)
		 VALUES (?,?,?,?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE id=LAST_INSERT_ID(id), cep=VALUES(cep), street=VALUES(street),
		 city=VALUES(city), state=VALUES(state), number=VALUES(number),
		 neighborhood=VALUES(neighborhood), address_detail=VALUES(address_detail)`,
		a.EnrollmentID, a.CEP, a.Street, a.City, a.State, a.Number, a.Neighborhood, a.AddressDetail)
	if err != nil {
		return mapWriteErr(err)
	}
	a.ID, err = lastID(res)
	return err
}
