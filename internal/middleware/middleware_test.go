package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking/internal/config"
	"github.com/iliyamo/event-booking/internal/utils"
)

const secret = "test-secret"

type fakeSessions map[string]bool

func (f fakeSessions) SessionExists(_ context.Context, hash string) (bool, error) {
	return f[hash], nil
}

func protected(sessions SessionChecker) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": id, "hasToken": Token(c) != ""})
	}, JWTAuth(secret, sessions))
	return e
}

func get(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAcceptsLiveSession(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 7, 5)
	require.NoError(t, err)
	e := protected(fakeSessions{utils.HashToken(tok.Token): true})

	rec := get(e, "Bearer "+tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		ID       uint64 `json:"id"`
		HasToken bool   `json:"hasToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(7), body.ID)
	assert.True(t, body.HasToken)
}

func TestJWTAuthRejects(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 7, 5)
	require.NoError(t, err)
	other, err := utils.NewAccessToken("other-secret", 7, 5)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	live := fakeSessions{utils.HashToken(tok.Token): true, utils.HashToken(other.Token): true, utils.HashToken(none): true}

	cases := map[string]struct {
		auth     string
		sessions fakeSessions
		msg      string
	}{
		"no header":    {"", live, "missing bearer token"},
		"not bearer":   {"Basic abc", live, "missing bearer token"},
		"wrong secret": {"Bearer " + other.Token, live, "invalid token"},
		"alg none":     {"Bearer " + none, live, "invalid token"},
		"signed out":   {"Bearer " + tok.Token, fakeSessions{}, "no session for given token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := get(protected(tc.sessions), tc.auth)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.msg)
		})
	}
}

func TestRequestLoggerSetsID(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/ping", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("inside")
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	id := rec.Header().Get(echo.HeaderXRequestID)
	assert.NotEmpty(t, id)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, l := range lines {
		var m map[string]any
		require.NoError(t, json.Unmarshal(l, &m))
		assert.Equal(t, id, m["request_id"])
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "given")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "given", rec.Header().Get(echo.HeaderXRequestID))
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(Metrics())
	e.GET("/tickets/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets/3", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRedisMiddlewaresDisabledWithoutClient(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil),
		NewRedisCache(config.CacheConfig{Enabled: true}, nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/booking", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/booking")

	assert.Equal(t, "rl:ip:10.0.0.1:user:guest:route:POST /booking", rateKey(config.RateLimitConfig{Prefix: "rl"}, c))
	c.Set(userIDKey, uint64(9))
	assert.Equal(t, "rl:user:9", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(1))
	assert.Equal(t, 2, retryAfterSeconds(1500))
}

func TestCaptureWriterOverflow(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, limit: 4}
	_, _ = cw.Write([]byte("ab"))
	assert.False(t, cw.overflow)
	_, _ = cw.Write([]byte("cde"))
	assert.True(t, cw.overflow)
	assert.Zero(t, cw.buf.Len())
	assert.Equal(t, "abcde", rec.Body.String())
}
