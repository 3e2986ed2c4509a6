package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger assigns every request an id (honouring an incoming
// X-Request-ID), puts a logger carrying it into the request context and
// logs one line when the request completes.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			reqLogger := logger.With().Str("request_id", id).Logger()
			c.SetRequest(req.WithContext(reqLogger.WithContext(req.Context())))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			evt := reqLogger.Info()
			if status >= 500 {
				evt = reqLogger.Error().Err(err)
			}
			evt.Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Int64("bytes", c.Response().Size).
				Dur("duration", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
