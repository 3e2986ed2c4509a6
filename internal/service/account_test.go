package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/event-booking/internal/memstore"
	"github.com/iliyamo/event-booking/internal/service"
	"github.com/iliyamo/event-booking/internal/utils"
)

func newAccounts(s *memstore.Store) *service.AccountService {
	return service.NewAccountService(s, service.AccountSettings{
		JWTSecret:    "test-secret",
		AccessTTLMin: 15,
		BcryptCost:   bcrypt.MinCost,
	}, zerolog.Nop())
}

func TestSignUpAndSignIn(t *testing.T) {
	s := memstore.New()
	svc := newAccounts(s)
	ctx := context.Background()

	u, err := svc.SignUp(ctx, " Ana@Example.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NotEqual(t, "hunter22", u.PasswordHash)

	_, err = svc.SignUp(ctx, "ana@example.com", "other")
	assert.ErrorIs(t, err, service.ErrConflict)

	signedIn, tok, err := svc.SignIn(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, u.ID, signedIn.ID)

	id, err := utils.ParseAccessToken("test-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	ok, err := s.SessionExists(ctx, utils.HashToken(tok.Token))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.SignOut(ctx, tok.Token))
	ok, _ = s.SessionExists(ctx, utils.HashToken(tok.Token))
	assert.False(t, ok)
	assert.NoError(t, svc.SignOut(ctx, tok.Token))
}

func TestSignInRejects(t *testing.T) {
	s := memstore.New()
	svc := newAccounts(s)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, _, err = svc.SignIn(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	assert.Zero(t, s.SessionCount())
}

func TestSignUpValidation(t *testing.T) {
	svc := newAccounts(memstore.New())
	_, err := svc.SignUp(context.Background(), "  ", "pw")
	assert.ErrorIs(t, err, service.ErrInvalidData)
}
