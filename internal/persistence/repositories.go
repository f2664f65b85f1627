package persistence

import "context"

// UserRepository exposes CRUD operations for accounts. Updates and deletes
// of an absent id succeed without effect.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user User) error
	UpdateUserRole(ctx context.Context, id int64, isAdmin bool) error
	DeleteUser(ctx context.Context, id int64) error
}

// RoomRepository exposes room catalog queries. UpsertRoom is used for seeding.
type RoomRepository interface {
	UpsertRoom(ctx context.Context, room Room) error
	ListAvailableRooms(ctx context.Context) ([]Room, error)
	ListRoomsFreeForSlot(ctx context.Context, date, timeSlot string) ([]Room, error)
	RoomAvailableForSlot(ctx context.Context, roomNumber, date, timeSlot string) (bool, error)
}

// BookingFilter narrows booking queries. A nil UserID matches every owner.
type BookingFilter struct {
	UserID *int64
}

// BookingRepository stores bookings. Writes that collide on
// (room_number, booking_date, time_slot) fail with ErrConflict.
// UpdateBookingStatus reports ErrNotFound for an absent id; UpdateBooking and
// DeleteBooking do not.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) error
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	DeleteBooking(ctx context.Context, id int64) error
	SlotTaken(ctx context.Context, roomNumber, date, timeSlot string) (bool, error)
}
