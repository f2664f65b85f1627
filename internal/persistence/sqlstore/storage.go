// Package sqlstore implements the persistence repositories on database/sql
// for SQLite, MySQL, and PostgreSQL.
package sqlstore

import (
	"context"
	"embed"
	"log/slog"
	"time"

	"github.com/example/room-booking/internal/persistence/sqlstore/migration"
)

//go:embed migrations
var migrationFiles embed.FS

// Storage bundles the pool and the repositories built on it.
type Storage struct {
	pool *ConnectionPool

	Users    *UserRepository
	Rooms    *RoomRepository
	Bookings *BookingRepository
}

// Open connects to the database. Call Migrate before serving traffic.
func Open(ctx context.Context, cfg PoolConfig) (*Storage, error) {
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newStorage(pool, time.Now), nil
}

func newStorage(pool *ConnectionPool, now func() time.Time) *Storage {
	return &Storage{
		pool:     pool,
		Users:    NewUserRepository(pool, now),
		Rooms:    NewRoomRepository(pool),
		Bookings: NewBookingRepository(pool),
	}
}

// Migrate applies the embedded schema files for the storage dialect.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewManager(
		migration.NewScanner(migrationFiles, "migrations/"+string(s.pool.Dialect())),
		migration.NewExecutor(s.pool.DB(), s.pool.Dialect().Rebind),
		logger,
	)
	return manager.Run(ctx)
}

// Ping checks connectivity.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
