package repository

import (
	"context"
	"time"

	"github.com/iliyamo/event-booking/internal/model"
)

const userColumns = "id,email,password_hash,created_at,updated_at"

// CreateUser inserts u and sets its ID.  A taken email yields
// service.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES (?,?)",
		u.Email, u.PasswordHash)
	if err != nil {
		return mapWriteErr(err)
	}
	if u.ID, err = lastID(res); err != nil {
		return err
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

// GetUserByEmail fetches a user by email.  Callers normalise the email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetUserByID fetches a user by id.
func (s *Store) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	return s.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (s *Store) scanUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := s.q.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateSession stores the hash of an issued access token.
func (s *Store) CreateSession(ctx context.Context, sess *model.Session) error {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash) VALUES (?,?)",
		sess.UserID, sess.TokenHash)
	if err != nil {
		return mapWriteErr(err)
	}
	if sess.ID, err = lastID(res); err != nil {
		return err
	}
	sess.CreatedAt = time.Now().UTC()
	return nil
}

// SessionExists reports whether a session row holds tokenHash.
func (s *Store) SessionExists(ctx context.Context, tokenHash string) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE token_hash=?", tokenHash).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteSession removes the session of tokenHash, if any.
func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash=?", tokenHash)
	return err
}
