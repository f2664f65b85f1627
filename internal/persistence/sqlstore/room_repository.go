package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository.
type RoomRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

var _ persistence.RoomRepository = (*RoomRepository)(nil)

// NewRoomRepository builds a repository on pool.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(pool.Dialect()),
	}
}

// UpsertRoom inserts the room or updates the status of an existing one.
func (r *RoomRepository) UpsertRoom(ctx context.Context, room persistence.Room) error {
	number := strings.TrimSpace(room.RoomNumber)
	if number == "" {
		return persistence.ErrConstraintViolation
	}
	status := strings.TrimSpace(room.Status)
	if status == "" {
		status = persistence.RoomStatusAvailable
	}

	err := r.upsertRoom(ctx, number, status)
	if errors.Is(err, persistence.ErrConflict) {
		// a concurrent upsert inserted the row first; the UPDATE now matches it
		err = r.upsertRoom(ctx, number, status)
	}
	return err
}

func (r *RoomRepository) upsertRoom(ctx context.Context, number, status string) error {
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := r.helper.ExecTx(ctx, tx, `UPDATE rooms SET status = ? WHERE room_number = ?`, status, number)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			return nil
		}
		_, err = r.helper.ExecTx(ctx, tx, `INSERT INTO rooms (room_number, status) VALUES (?, ?)`, number, status)
		return err
	})
	return r.mapper.MapError(err)
}

// ListAvailableRooms returns rooms whose status is available.
func (r *RoomRepository) ListAvailableRooms(ctx context.Context) ([]persistence.Room, error) {
	return r.queryRooms(ctx,
		`SELECT room_number, status FROM rooms WHERE status = ? ORDER BY room_number ASC`,
		persistence.RoomStatusAvailable)
}

// ListRoomsFreeForSlot returns available rooms with no booking of any status
// on the given date and time slot.
func (r *RoomRepository) ListRoomsFreeForSlot(ctx context.Context, date, timeSlot string) ([]persistence.Room, error) {
	return r.queryRooms(ctx, `
		SELECT r.room_number, r.status
		FROM rooms r
		LEFT JOIN bookings b
			ON b.room_number = r.room_number AND b.booking_date = ? AND b.time_slot = ?
		WHERE r.status = ? AND b.id IS NULL
		ORDER BY r.room_number ASC`,
		date, timeSlot, persistence.RoomStatusAvailable)
}

// RoomAvailableForSlot reports whether the room exists, is available, and has
// no booking on the slot.
func (r *RoomRepository) RoomAvailableForSlot(ctx context.Context, roomNumber, date, timeSlot string) (bool, error) {
	var count int
	err := r.helper.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM rooms r
		LEFT JOIN bookings b
			ON b.room_number = r.room_number AND b.booking_date = ? AND b.time_slot = ?
		WHERE r.room_number = ? AND r.status = ? AND b.id IS NULL`,
		date, timeSlot, roomNumber, persistence.RoomStatusAvailable).Scan(&count)
	if err != nil {
		return false, r.mapper.MapError(err)
	}
	return count > 0, nil
}

func (r *RoomRepository) queryRooms(ctx context.Context, query string, args ...any) ([]persistence.Room, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	rooms := make([]persistence.Room, 0)
	for rows.Next() {
		var room persistence.Room
		if err := rows.Scan(&room.RoomNumber, &room.Status); err != nil {
			return nil, r.mapper.MapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return rooms, nil
}
