package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-booking/internal/utils"
)

// SessionChecker reports whether a session exists for a token hash.
type SessionChecker interface {
	SessionExists(ctx context.Context, tokenHash string) (bool, error)
}

// JWTAuth validates the Bearer access token and requires a live session
// for it.  On success the user id and the raw token are stored in the
// context for UserID and Token.
func JWTAuth(secret string, sessions SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			id, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			ok, err := sessions.SessionExists(c.Request().Context(), utils.HashToken(raw))
			if err != nil {
				zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("session lookup failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no session for given token"})
			}

			c.Set(userIDKey, id)
			c.Set(tokenKey, raw)
			return next(c)
		}
	}
}
