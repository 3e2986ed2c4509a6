// Package router registers the HTTP routes on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-booking/internal/config"
	"github.com/iliyamo/event-booking/internal/handler"
	"github.com/iliyamo/event-booking/internal/metrics"
	"github.com/iliyamo/event-booking/internal/middleware"
)

// Handlers bundles every HTTP handler of the API.
type Handlers struct {
	Auth        *handler.AuthHandler
	Enrollments *handler.EnrollmentHandler
	Tickets     *handler.TicketHandler
	Hotels      *handler.HotelHandler
	Bookings    *handler.BookingHandler
	Payments    *handler.PaymentHandler
	DB          handler.Pinger
}

// Options carries what the middleware needs.  A nil Redis client turns
// rate limiting and caching off.
type Options struct {
	JWTSecret string
	Sessions  middleware.SessionChecker
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// RegisterRoutes registers the unauthenticated operational routes.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health(h.DB))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{Registry: metrics.Registry})))
}

// RegisterAuth registers sign-up and sign-in, which need no token, and
// sign-out, which does.
func RegisterAuth(e *echo.Echo, h Handlers, opts Options) {
	e.POST("/users", h.Auth.SignUp)
	e.POST("/auth/sign-in", h.Auth.SignIn)
	e.POST("/auth/sign-out", h.Auth.SignOut, middleware.JWTAuth(opts.JWTSecret, opts.Sessions))
}

// RegisterCustomer registers the routes of a signed-in user.  JWTAuth
// runs before the rate limiter so buckets can be keyed by user.
func RegisterCustomer(e *echo.Echo, h Handlers, opts Options) {
	auth := []echo.MiddlewareFunc{
		middleware.JWTAuth(opts.JWTSecret, opts.Sessions),
		middleware.NewTokenBucket(opts.RateLimit, opts.Redis),
	}
	cached := append(auth[:len(auth):len(auth)], middleware.NewRedisCache(opts.Cache, opts.Redis))

	e.GET("/enrollments", h.Enrollments.Get, auth...)
	e.POST("/enrollments", h.Enrollments.Upsert, auth...)

	e.GET("/tickets/types", h.Tickets.ListTypes, cached...)
	e.GET("/tickets", h.Tickets.Get, auth...)
	e.POST("/tickets", h.Tickets.Create, auth...)

	e.GET("/hotels", h.Hotels.List, auth...)
	e.GET("/hotels/:hotelId", h.Hotels.Get, auth...)

	e.POST("/booking", h.Bookings.Create, auth...)
	e.GET("/booking", h.Bookings.Get, auth...)
	e.PUT("/booking/:bookingId", h.Bookings.Update, auth...)

	e.GET("/payments", h.Payments.Get, auth...)
	e.POST("/payments/process", h.Payments.Process, auth...)
}

// New builds an Echo instance with the global middleware and every route.
func New(h Handlers, opts Options, mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(mw...)
	e.Use(middleware.Metrics())

	RegisterRoutes(e, h)
	RegisterAuth(e, h, opts)
	RegisterCustomer(e, h, opts)
	return e
}
