package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/event-booking/internal/config"
	"github.com/iliyamo/event-booking/internal/database"
	"github.com/iliyamo/event-booking/internal/handler"
	"github.com/iliyamo/event-booking/internal/middleware"
	"github.com/iliyamo/event-booking/internal/queue"
	"github.com/iliyamo/event-booking/internal/repository"
	"github.com/iliyamo/event-booking/internal/router"
	"github.com/iliyamo/event-booking/internal/service"
)

var (
	serverPort  string
	autoMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from the environment (and --env-file when present)
- Optionally apply pending migrations (--migrate)
- Start the event audit consumer when EVENTS_ENABLED is true
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  server serve
  server serve --port 9090 --log-level debug
  server serve --migrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverPort, "port", "", "server port (default: APP_PORT)")
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverPort != "" {
		cfg.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("env", cfg.Env).Msg("starting event booking server")

	if autoMigrate {
		if err := database.MigrateUp(cfg.DB.DSN()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Msg("migrations applied")
	}

	db, err := database.Open(cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	var events service.EventPublisher = service.NopPublisher{}
	if cfg.Events.Enabled {
		events = queue.NewPublisher(cfg.Events.URL, logger)
		if err := startConsumer(ctx, &wg, cfg.Events, logger); err != nil {
			logger.Warn().Err(err).Msg("event audit consumer disabled")
		}
	}

	rdb := connectRedis(cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	e := router.New(buildHandlers(db, cfg, events, logger), router.Options{
		JWTSecret: cfg.Auth.JWTSecret,
		Sessions:  repository.NewStore(db),
		Redis:     rdb,
		RateLimit: cfg.RateLimit,
		Cache:     cfg.Cache,
	}, middleware.RequestLogger(logger))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	wg.Wait()
	return nil
}

func buildHandlers(db *sql.DB, cfg config.Config, events service.EventPublisher, logger zerolog.Logger) router.Handlers {
	store := repository.NewStore(db)
	accounts := service.NewAccountService(store, service.AccountSettings{
		JWTSecret:    cfg.Auth.JWTSecret,
		AccessTTLMin: cfg.Auth.AccessTTLMin,
		BcryptCost:   cfg.Auth.BcryptCost,
	}, logger)

	return router.Handlers{
		Auth:        handler.NewAuthHandler(accounts),
		Enrollments: handler.NewEnrollmentHandler(service.NewEnrollmentService(store)),
		Tickets:     handler.NewTicketHandler(service.NewTicketService(store)),
		Hotels:      handler.NewHotelHandler(service.NewHotelService(store)),
		Bookings:    handler.NewBookingHandler(service.NewBookingService(store, events, logger)),
		Payments:    handler.NewPaymentHandler(service.NewPaymentService(store, events, logger)),
		DB:          db,
	}
}

// startConsumer runs the audit consumer until ctx is cancelled.
func startConsumer(ctx context.Context, wg *sync.WaitGroup, cfg config.EventsConfig, logger zerolog.Logger) error {
	f, err := queue.OpenAuditLog(cfg.LogPath)
	if err != nil {
		return err
	}
	consumer := queue.NewConsumer(cfg.URL, f, logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer f.Close()
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("event consumer stopped")
		}
	}()
	return nil
}

// connectRedis returns nil when Redis is unreachable; rate limiting and
// caching then pass requests through.
func connectRedis(cfg config.Config, logger zerolog.Logger) *redis.Client {
	if !cfg.RateLimit.Enabled && !cfg.Cache.Enabled {
		return nil
	}
	rdb, err := config.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable; rate limiting and cache disabled")
		return nil
	}
	return rdb
}
