package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

var (
	userCounter    uint64
	roomCounter    uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption configures a generated persistence.User.
type UserOption func(*persistence.User)

// NewUser returns a deterministic, not yet stored user. Emails are unique per
// process so fixtures can be inserted into a shared database.
func NewUser(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	user := persistence.User{
		Username:     fmt.Sprintf("user%03d", idx),
		Email:        fmt.Sprintf("user%03d@example.com", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithEmail overrides the generated email address.
func WithEmail(email string) UserOption {
	return func(u *persistence.User) { u.Email = email }
}

// WithUsername overrides the generated username.
func WithUsername(name string) UserOption {
	return func(u *persistence.User) { u.Username = name }
}

// WithAdmin sets the admin flag.
func WithAdmin(isAdmin bool) UserOption {
	return func(u *persistence.User) { u.IsAdmin = isAdmin }
}

// NewRoom returns an available room with a generated number.
func NewRoom() persistence.Room {
	idx := atomic.AddUint64(&roomCounter, 1)
	return persistence.Room{
		RoomNumber: fmt.Sprintf("%d", 100+idx),
		Status:     persistence.RoomStatusAvailable,
	}
}

// BookingOption configures a generated persistence.Booking.
type BookingOption func(*persistence.Booking)

// NewBooking returns a pending booking for room and owner on a date derived
// from ReferenceTime.
func NewBooking(roomNumber string, userID int64, opts ...BookingOption) persistence.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	booking := persistence.Booking{
		Name:        fmt.Sprintf("Booking %03d", idx),
		BookingDate: referenceTime.AddDate(0, 0, int(idx)).Format("2006-01-02"),
		TimeSlot:    "09:00-10:00",
		RoomNumber:  roomNumber,
		Status:      "pending",
		UserID:      userID,
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// WithSlot fixes the booking date and time slot.
func WithSlot(date, timeSlot string) BookingOption {
	return func(b *persistence.Booking) {
		b.BookingDate = date
		b.TimeSlot = timeSlot
	}
}

// WithStatus overrides the booking status.
func WithStatus(status string) BookingOption {
	return func(b *persistence.Booking) { b.Status = status }
}
