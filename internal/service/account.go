package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/utils"
)

// AccountStore persists users and their sessions.
type AccountStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateSession(ctx context.Context, s *model.Session) error
	DeleteSession(ctx context.Context, tokenHash string) error
}

// AccountSettings carries the auth parameters from the configuration.
type AccountSettings struct {
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
}

// AccountService signs users up, in and out.  A signed-in user holds a
// JWT whose hash is stored as a session; signing out deletes the session
// and with it the token's validity.
type AccountService struct {
	store    AccountStore
	settings AccountSettings
	logger   zerolog.Logger
}

func NewAccountService(store AccountStore, settings AccountSettings, logger zerolog.Logger) *AccountService {
	return &AccountService{
		store:    store,
		settings: settings,
		logger:   logger.With().Str("component", "accounts").Logger(),
	}
}

// SignUp creates a user.  An email already in use is KindConflict.
func (s *AccountService) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalidData("email and password are required")
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, conflict("email already in use")
	} else if !isNoRows(err) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := utils.HashPassword(password, s.settings.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{Email: email, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, conflict("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info().Uint64("user_id", user.ID).Msg("user signed up")
	return user, nil
}

// SignIn checks the credentials, issues an access token and opens a
// session for it.  Unknown emails and wrong passwords both yield the
// same KindUnauthorized error.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*model.User, utils.AccessToken, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNoRows(err) {
			return nil, utils.AccessToken{}, unauthorized("email or password are incorrect")
		}
		return nil, utils.AccessToken{}, fmt.Errorf("lookup user: %w", err)
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return nil, utils.AccessToken{}, unauthorized("email or password are incorrect")
	}

	tok, err := utils.NewAccessToken(s.settings.JWTSecret, user.ID, s.settings.AccessTTLMin)
	if err != nil {
		return nil, utils.AccessToken{}, fmt.Errorf("issue token: %w", err)
	}
	if err := s.store.CreateSession(ctx, &model.Session{UserID: user.ID, TokenHash: utils.HashToken(tok.Token)}); err != nil {
		return nil, utils.AccessToken{}, fmt.Errorf("create session: %w", err)
	}
	s.logger.Info().Uint64("user_id", user.ID).Msg("user signed in")
	return user, tok, nil
}

// SignOut ends the session of the given raw token.  Signing out twice is
// not an error.
func (s *AccountService) SignOut(ctx context.Context, rawToken string) error {
	if err := s.store.DeleteSession(ctx, utils.HashToken(rawToken)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
