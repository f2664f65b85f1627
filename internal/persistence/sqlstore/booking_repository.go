package sqlstore

import (
	"context"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository.
type BookingRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

var _ persistence.BookingRepository = (*BookingRepository)(nil)

// NewBookingRepository builds a repository on pool.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(pool.Dialect()),
	}
}

const bookingColumns = `id, name, booking_date, time_slot, room_number, status, user_id`

// CreateBooking inserts booking and returns it with the generated id. A
// second booking for the same room, date, and slot yields ErrConflict.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	id, err := r.helper.Insert(ctx, "id",
		`INSERT INTO bookings (name, booking_date, time_slot, room_number, status, user_id) VALUES (?, ?, ?, ?, ?, ?)`,
		booking.Name,
		booking.BookingDate,
		booking.TimeSlot,
		booking.RoomNumber,
		booking.Status,
		booking.UserID,
	)
	if err != nil {
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	booking.ID = id
	return booking, nil
}

// GetBooking loads a booking by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id int64) (persistence.Booking, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	var b persistence.Booking
	if err := row.Scan(&b.ID, &b.Name, &b.BookingDate, &b.TimeSlot, &b.RoomNumber, &b.Status, &b.UserID); err != nil {
		return persistence.Booking{}, r.mapper.MapError(err)
	}
	return b, nil
}

// ListBookings returns bookings ordered by date then id.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT ` + bookingColumns + ` FROM bookings`)
	if filter.UserID != nil {
		query.WriteString(` WHERE user_id = ?`)
		args = append(args, *filter.UserID)
	}
	query.WriteString(` ORDER BY booking_date ASC, id ASC`)

	rows, err := r.helper.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	bookings := make([]persistence.Booking, 0)
	for rows.Next() {
		var b persistence.Booking
		if err := rows.Scan(&b.ID, &b.Name, &b.BookingDate, &b.TimeSlot, &b.RoomNumber, &b.Status, &b.UserID); err != nil {
			return nil, r.mapper.MapError(err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return bookings, nil
}

// UpdateBooking replaces name, date, room, and status. Time slot and owner
// are left unchanged.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	_, err := r.helper.Exec(ctx,
		`UPDATE bookings SET name = ?, booking_date = ?, room_number = ?, status = ? WHERE id = ?`,
		booking.Name,
		booking.BookingDate,
		booking.RoomNumber,
		booking.Status,
		booking.ID,
	)
	return r.mapper.MapError(err)
}

// UpdateBookingStatus sets the status, returning ErrNotFound when no row matches.
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	res, err := r.helper.Exec(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteBooking removes the booking if present.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id int64) error {
	_, err := r.helper.Exec(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	return r.mapper.MapError(err)
}

// SlotTaken reports whether any booking, whatever its status, holds the slot.
func (r *BookingRepository) SlotTaken(ctx context.Context, roomNumber, date, timeSlot string) (bool, error) {
	var count int
	err := r.helper.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE room_number = ? AND booking_date = ? AND time_slot = ?`,
		roomNumber, date, timeSlot).Scan(&count)
	if err != nil {
		return false, r.mapper.MapError(err)
	}
	return count > 0, nil
}
