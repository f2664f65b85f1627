package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlstore"
)

// SQLiteHarness provides repository access backed by a migrated SQLite file
// in a temporary directory.
type SQLiteHarness struct {
	Storage  *sqlstore.Storage
	Users    persistence.UserRepository
	Rooms    persistence.RoomRepository
	Bookings persistence.BookingRepository
}

// SQLiteDSN returns a DSN for path with foreign keys and a busy timeout enabled.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// NewSQLiteHarness opens and migrates a fresh database. The storage is closed
// when the test finishes.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	ctx := context.Background()
	storage, err := sqlstore.Open(ctx, sqlstore.PoolConfig{
		Dialect: sqlstore.SQLite,
		DSN:     SQLiteDSN(filepath.Join(tb.TempDir(), "booking.db")),
	})
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(ctx, nil); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return &SQLiteHarness{
		Storage:  storage,
		Users:    storage.Users,
		Rooms:    storage.Rooms,
		Bookings: storage.Bookings,
	}
}

// MustCreateUser stores user and returns it with its id.
func (h *SQLiteHarness) MustCreateUser(tb testing.TB, user persistence.User) persistence.User {
	tb.Helper()
	created, err := h.Users.CreateUser(context.Background(), user)
	if err != nil {
		tb.Fatalf("create user: %v", err)
	}
	return created
}

// MustCreateRoom upserts room.
func (h *SQLiteHarness) MustCreateRoom(tb testing.TB, room persistence.Room) persistence.Room {
	tb.Helper()
	if err := h.Rooms.UpsertRoom(context.Background(), room); err != nil {
		tb.Fatalf("create room: %v", err)
	}
	return room
}

// MustCreateBooking stores booking and returns it with its id.
func (h *SQLiteHarness) MustCreateBooking(tb testing.TB, booking persistence.Booking) persistence.Booking {
	tb.Helper()
	created, err := h.Bookings.CreateBooking(context.Background(), booking)
	if err != nil {
		tb.Fatalf("create booking: %v", err)
	}
	return created
}
