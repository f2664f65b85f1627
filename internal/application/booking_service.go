package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/room-booking/internal/booking"
)

// BookingRepository captures the persistence interactions for bookings.
// CreateBooking and UpdateBooking report ErrSlotTaken when the store's
// uniqueness constraint on the slot rejects the write.
type BookingRepository interface {
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	CreateBooking(ctx context.Context, b Booking) (Booking, error)
	UpdateBooking(ctx context.Context, b Booking) error
	UpdateBookingStatus(ctx context.Context, id int64, status booking.Status) error
	DeleteBooking(ctx context.Context, id int64) error
	SlotTaken(ctx context.Context, slot booking.Slot) (bool, error)
}

// RoomAvailability answers whether a room can take a booking for a slot.
type RoomAvailability interface {
	RoomAvailableForSlot(ctx context.Context, slot booking.Slot) (bool, error)
}

// BookingService implements booking visibility and conflict rules.
type BookingService struct {
	bookings BookingRepository
	rooms    RoomAvailability
	logger   *slog.Logger
}

// NewBookingService constructs a BookingService with the provided dependencies.
func NewBookingService(bookings BookingRepository, rooms RoomAvailability) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, nil)
}

// NewBookingServiceWithLogger constructs a BookingService with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, rooms RoomAvailability, logger *slog.Logger) *BookingService {
	return &BookingService{bookings: bookings, rooms: rooms, logger: defaultLogger(logger)}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// ListBookings returns every booking for admins and only the caller's own
// bookings otherwise, ordered by date then id.
func (s *BookingService) ListBookings(ctx context.Context, principal Principal) ([]Booking, error) {
	filter := BookingFilter{}
	if !principal.IsAdmin {
		filter.UserID = &principal.UserID
	}
	return s.list(ctx, "ListBookings", principal, filter)
}

// ListOwnBookings returns the caller's bookings regardless of role.
func (s *BookingService) ListOwnBookings(ctx context.Context, principal Principal) ([]Booking, error) {
	return s.list(ctx, "ListOwnBookings", principal, BookingFilter{UserID: &principal.UserID})
}

func (s *BookingService) list(ctx context.Context, operation string, principal Principal, filter BookingFilter) (bookings []Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, operation, "principal_id", principal.UserID, "is_admin", principal.IsAdmin)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(bookings)).InfoContext(ctx, "bookings listed")
	}()

	bookings, err = s.bookings.ListBookings(ctx, filter)
	if err != nil {
		return
	}
	if bookings == nil {
		bookings = []Booking{}
	}
	return
}

// CreateBooking reserves a slot for the caller with status pending.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (created Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil || s.rooms == nil {
		err = fmt.Errorf("booking service not fully configured")
		return
	}

	name := strings.TrimSpace(params.Name)
	slot := booking.NewSlot(params.RoomNumber, params.BookingDate, params.TimeSlot)

	logger := s.loggerWith(ctx, "CreateBooking", "principal_id", params.Principal.UserID, "slot", slot.Key())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", created.ID).InfoContext(ctx, "booking created")
	}()

	vErr := &ValidationError{Message: "All fields are required"}
	vErr.require("name", name)
	vErr.require("booking_date", slot.Date)
	vErr.require("time_slot", slot.TimeSlot)
	vErr.require("room_number", slot.RoomNumber)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = validateDate(slot.Date); err != nil {
		return
	}

	var taken bool
	taken, err = s.bookings.SlotTaken(ctx, slot)
	if err != nil {
		err = fmt.Errorf("check slot: %w", err)
		return
	}
	if taken {
		err = ErrSlotTaken
		return
	}

	var available bool
	available, err = s.rooms.RoomAvailableForSlot(ctx, slot)
	if err != nil {
		err = fmt.Errorf("check room availability: %w", err)
		return
	}
	if !available {
		err = ErrRoomUnavailable
		return
	}

	created, err = s.bookings.CreateBooking(ctx, Booking{
		Name:        name,
		BookingDate: slot.Date,
		TimeSlot:    slot.TimeSlot,
		RoomNumber:  slot.RoomNumber,
		Status:      booking.StatusPending,
		UserID:      params.Principal.UserID,
	})
	return
}

// UpdateBooking replaces name, date, room, and status of a booking. The time
// slot and owner are kept. Any authenticated caller may update any booking.
func (s *BookingService) UpdateBooking(ctx context.Context, params UpdateBookingParams) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "UpdateBooking", "principal_id", params.Principal.UserID, "booking_id", params.BookingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking updated")
	}()

	updated := Booking{
		ID:          params.BookingID,
		Name:        strings.TrimSpace(params.Name),
		BookingDate: strings.TrimSpace(params.BookingDate),
		RoomNumber:  strings.TrimSpace(params.RoomNumber),
	}

	vErr := &ValidationError{Message: "All fields are required"}
	vErr.require("name", updated.Name)
	vErr.require("booking_date", updated.BookingDate)
	vErr.require("room_number", updated.RoomNumber)
	vErr.require("status", params.Status)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = validateDate(updated.BookingDate); err != nil {
		return
	}

	status, ok := booking.ParseStatus(params.Status)
	if !ok {
		err = &StatusError{Received: params.Status, Allowed: booking.AllowedStatuses()}
		return
	}
	updated.Status = status

	err = s.bookings.UpdateBooking(ctx, updated)
	return
}

// UpdateBookingStatus stores the normalised status of an existing booking.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, params UpdateBookingStatusParams) (status booking.Status, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBookingStatus", "principal_id", params.Principal.UserID, "booking_id", params.BookingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", status).InfoContext(ctx, "booking status updated")
	}()

	parsed, ok := booking.ParseStatus(params.Status)
	if !ok {
		err = &StatusError{Received: params.Status, Allowed: booking.AllowedStatuses()}
		return
	}

	if err = s.bookings.UpdateBookingStatus(ctx, params.BookingID, parsed); err != nil {
		return
	}
	status = parsed
	return
}

// DeleteBooking removes a booking by id. Deleting an absent booking succeeds.
// Like UpdateBooking, any authenticated caller may delete any booking.
func (s *BookingService) DeleteBooking(ctx context.Context, principal Principal, id int64) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteBooking", "principal_id", principal.UserID, "booking_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking deleted")
	}()

	return s.bookings.DeleteBooking(ctx, id)
}

func validateDate(date string) error {
	if booking.ValidDate(date) {
		return nil
	}
	return &ValidationError{
		Message:     "Invalid booking date",
		FieldErrors: map[string]string{"booking_date": "booking_date must be formatted as YYYY-MM-DD"},
	}
}
