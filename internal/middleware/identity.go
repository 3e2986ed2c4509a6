package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	userIDKey = "user_id"
	tokenKey  = "token"
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok && id != 0
}

// Token returns the raw bearer token of the authenticated request.
func Token(c echo.Context) string {
	s, _ := c.Get(tokenKey).(string)
	return s
}

// identity returns a key fragment identifying the caller, "guest" when
// the request is unauthenticated.
func identity(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
