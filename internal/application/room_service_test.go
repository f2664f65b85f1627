package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/room-booking/internal/booking"
)

func TestRoomService(t *testing.T) {
	t.Parallel()

	bookings := newMemoryBookings(
		Booking{ID: 1, BookingDate: "2024-01-01", TimeSlot: "09:00", RoomNumber: "101", Status: booking.StatusPending, UserID: 1},
	)
	rooms := stubRooms{available: map[string]bool{"101": true, "102": true, "103": false}, bookings: bookings}
	service := NewRoomService(rooms)

	t.Run("lists available rooms in room order", func(t *testing.T) {
		t.Parallel()
		got, err := service.ListAvailableRooms(context.Background(), Principal{UserID: 1})
		if err != nil {
			t.Fatalf("ListAvailableRooms: %v", err)
		}
		if len(got) != 2 || got[0].RoomNumber != "101" || got[1].RoomNumber != "102" {
			t.Fatalf("unexpected rooms %+v", got)
		}
	})

	t.Run("excludes rooms booked for the slot", func(t *testing.T) {
		t.Parallel()
		got, err := service.CheckAvailability(context.Background(), CheckAvailabilityParams{Date: "2024-01-01", TimeSlot: "09:00"})
		if err != nil {
			t.Fatalf("CheckAvailability: %v", err)
		}
		if len(got) != 1 || got[0].RoomNumber != "102" {
			t.Fatalf("unexpected rooms %+v", got)
		}

		got, err = service.CheckAvailability(context.Background(), CheckAvailabilityParams{Date: "2024-01-01", TimeSlot: "10:00"})
		if err != nil || len(got) != 2 {
			t.Fatalf("expected both rooms free at 10:00, got (%+v, %v)", got, err)
		}
	})

	t.Run("requires date and slot", func(t *testing.T) {
		t.Parallel()
		_, err := service.CheckAvailability(context.Background(), CheckAvailabilityParams{Date: "2024-01-01"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["time_slot"] == "" {
			t.Fatalf("expected time_slot validation error, got %v", err)
		}
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		t.Parallel()
		failing := NewRoomService(stubRooms{err: errors.New("db down")})
		if _, err := failing.ListAvailableRooms(context.Background(), Principal{}); err == nil {
			t.Fatalf("expected an error")
		}
	})
}
