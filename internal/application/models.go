package application

import (
	"time"

	"github.com/example/room-booking/internal/booking"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID   int64
	IsAdmin  bool
	IssuedAt time.Time
}

// User is the public projection of an account. The password hash never leaves
// UserCredentials.
type User struct {
	ID        int64
	Username  string
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
}

// UserCredentials pairs a user with the stored password hash for login checks.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// NewUser carries the fields persisted at registration.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Room is a bookable room and its operational status.
type Room struct {
	RoomNumber string
	Status     string
}

// Booking is a reservation of a slot by a user.
type Booking struct {
	ID          int64
	Name        string
	BookingDate string
	TimeSlot    string
	RoomNumber  string
	Status      booking.Status
	UserID      int64
}

// Slot returns the room/date/slot triple occupied by the booking.
func (b Booking) Slot() booking.Slot {
	return booking.NewSlot(b.RoomNumber, b.BookingDate, b.TimeSlot)
}

// BookingFilter narrows booking listings. A nil UserID lists every booking.
type BookingFilter struct {
	UserID *int64
}

// RegisterParams is the registration request.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// LoginParams is the login request.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal   Principal
	Name        string
	BookingDate string
	TimeSlot    string
	RoomNumber  string
}

// UpdateBookingParams replaces the mutable fields of a booking.
type UpdateBookingParams struct {
	Principal   Principal
	BookingID   int64
	Name        string
	BookingDate string
	RoomNumber  string
	Status      string
}

// UpdateBookingStatusParams changes only the review status of a booking.
type UpdateBookingStatusParams struct {
	Principal Principal
	BookingID int64
	Status    string
}

// CheckAvailabilityParams asks which rooms are free for a date and slot.
type CheckAvailabilityParams struct {
	Principal Principal
	Date      string
	TimeSlot  string
}

// UpdateUserParams replaces a user's profile fields and role.
type UpdateUserParams struct {
	Principal Principal
	UserID    int64
	Username  string
	Email     string
	Role      string
}

// UpdateUserRoleParams changes only a user's role.
type UpdateUserRoleParams struct {
	Principal Principal
	UserID    int64
	Role      string
}
