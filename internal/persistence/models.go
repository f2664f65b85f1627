package persistence

import "time"

// User is an account row. PasswordHash is only read by credential lookups.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Room is a room catalog row.
type Room struct {
	RoomNumber string
	Status     string
}

// RoomStatusAvailable marks a room that accepts bookings.
const RoomStatusAvailable = "available"

// Booking is a reservation row. BookingDate is ISO YYYY-MM-DD text.
type Booking struct {
	ID          int64
	Name        string
	BookingDate string
	TimeSlot    string
	RoomNumber  string
	Status      string
	UserID      int64
}
