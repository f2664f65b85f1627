package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/room-booking/internal/booking"
)

// RoomRepository exposes the read side of the room catalog.
type RoomRepository interface {
	ListAvailableRooms(ctx context.Context) ([]Room, error)
	ListRoomsFreeForSlot(ctx context.Context, date, timeSlot string) ([]Room, error)
}

// RoomService answers room availability questions. Rooms are maintained
// outside the booking flow and are read-only here.
type RoomService struct {
	rooms  RoomRepository
	logger *slog.Logger
}

// NewRoomService constructs a RoomService with the provided repository.
func NewRoomService(rooms RoomRepository) *RoomService {
	return NewRoomServiceWithLogger(rooms, nil)
}

// NewRoomServiceWithLogger constructs a RoomService with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, logger *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// ListAvailableRooms returns rooms whose status is available, ordered by room number.
func (s *RoomService) ListAvailableRooms(ctx context.Context, principal Principal) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListAvailableRooms", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(rooms)).InfoContext(ctx, "available rooms listed")
	}()

	rooms, err = s.rooms.ListAvailableRooms(ctx)
	if err == nil && rooms == nil {
		rooms = []Room{}
	}
	return
}

// CheckAvailability returns available rooms that hold no booking for the date and slot.
func (s *RoomService) CheckAvailability(ctx context.Context, params CheckAvailabilityParams) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	date := strings.TrimSpace(params.Date)
	timeSlot := strings.TrimSpace(params.TimeSlot)

	logger := s.loggerWith(ctx, "CheckAvailability",
		"principal_id", params.Principal.UserID,
		"date", date,
		"time_slot", timeSlot,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to check availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(rooms)).InfoContext(ctx, "availability checked")
	}()

	vErr := &ValidationError{Message: "Date and time slot are required"}
	vErr.require("date", date)
	vErr.require("time_slot", timeSlot)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if !booking.ValidDate(date) {
		err = &ValidationError{
			Message:     "Invalid date",
			FieldErrors: map[string]string{"date": "date must be formatted as YYYY-MM-DD"},
		}
		return
	}

	rooms, err = s.rooms.ListRoomsFreeForSlot(ctx, date, timeSlot)
	if err == nil && rooms == nil {
		rooms = []Room{}
	}
	return
}
