// Package handler holds the Echo HTTP handlers.  Handlers bind and
// validate requests, call one service operation and map its result, or
// its error kind, to a JSON response.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-booking/internal/service"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(k service.Kind) int {
	switch k {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindPaymentRequired:
		return http.StatusPaymentRequired
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindInvalidData:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err.  Unclassified errors are logged and hidden
// behind a generic message.
func writeError(c echo.Context, err error) error {
	kind := service.KindOf(err)
	status := statusFor(kind)
	logger := zerolog.Ctx(c.Request().Context())

	if kind == service.KindUnknown {
		logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(status, echo.Map{"error": "internal error"})
	}

	logger.Debug().Err(err).Str("kind", kind.String()).Msg("request rejected")
	body := echo.Map{"error": err.Error()}
	var se *service.Error
	if errors.As(err, &se) {
		body["error"] = se.Message
		if len(se.Details) > 0 {
			body["details"] = se.Details
		}
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string, details ...string) error {
	body := echo.Map{"error": msg}
	if len(details) > 0 {
		body["details"] = details
	}
	return c.JSON(http.StatusBadRequest, body)
}
