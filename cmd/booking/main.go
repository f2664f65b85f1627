package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/logging"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/redisstore"
	"github.com/example/room-booking/internal/persistence/sqlstore"
	"github.com/example/room-booking/internal/telemetry"
)

const serviceName = "room-booking"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("booking API stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	shutdownTracing := telemetry.Setup(ctx, serviceName, logger)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	storage, err := sqlstore.Open(ctx, sqlstore.PoolConfig{
		Dialect:         dialect,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx, logger); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if err := seedRooms(ctx, storage.Rooms, cfg.SeedRooms, logger); err != nil {
		return err
	}

	var revocations application.RevocationStore = application.NoopRevocations{}
	if cfg.Redis.Enabled() {
		client, err := redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect revocation store: %w", err)
		}
		defer func() { _ = client.Close() }()
		revocations = redisstore.NewRevocations(client, application.TokenTTL)
		logger.Info("token revocation enabled", "redis_addr", cfg.Redis.Addr)
	}

	handler, err := buildHandler(handlerConfig{
		Storage:     storage,
		Revocations: revocations,
		JWTSecret:   cfg.JWTSecret,
		BcryptCost:  cfg.BcryptCost,
		CORSOrigin:  cfg.CORSOrigin,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           otelhttp.NewHandler(handler, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.ListenAndServe() }()
	logger.Info("booking API listening", "addr", server.Addr, "db_driver", dialect)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type handlerConfig struct {
	Storage     *sqlstore.Storage
	Revocations application.RevocationStore
	JWTSecret   string
	BcryptCost  int
	CORSOrigin  string
	Logger      *slog.Logger
	Now         func() time.Time
}

// buildHandler wires services and handlers onto storage.
func buildHandler(cfg handlerConfig) (http.Handler, error) {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger

	tokens, err := application.NewTokenService(cfg.JWTSecret, now)
	if err != nil {
		return nil, err
	}

	users := newUserStoreAdapter(cfg.Storage.Users)
	rooms := newRoomRepositoryAdapter(cfg.Storage.Rooms)
	bookings := newBookingRepositoryAdapter(cfg.Storage.Bookings)

	authService := application.NewAuthServiceWithLogger(users, tokens, cfg.Revocations, application.BcryptHasher(cfg.BcryptCost), now, logger)
	bookingService := application.NewBookingServiceWithLogger(bookings, rooms, logger)
	roomService := application.NewRoomServiceWithLogger(rooms, logger)
	userService := application.NewUserServiceWithLogger(users, cfg.Revocations, now, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       httptransport.NewAuthHandler(authService, logger),
		Bookings:   httptransport.NewBookingHandler(bookingService, logger),
		Rooms:      httptransport.NewRoomHandler(roomService, logger),
		Users:      httptransport.NewUserHandler(userService, logger),
		Validator:  authService,
		Health:     cfg.Storage,
		Metrics:    httptransport.NewMetrics(),
		CORSOrigin: cfg.CORSOrigin,
		Logger:     logger,
	}), nil
}

// seedRooms makes every listed room available.
func seedRooms(ctx context.Context, rooms persistence.RoomRepository, numbers []string, logger *slog.Logger) error {
	for _, number := range numbers {
		if err := rooms.UpsertRoom(ctx, persistence.Room{RoomNumber: number, Status: persistence.RoomStatusAvailable}); err != nil {
			return fmt.Errorf("seed room %s: %w", number, err)
		}
	}
	if len(numbers) > 0 {
		logger.Info("rooms seeded", "count", len(numbers))
	}
	return nil
}
