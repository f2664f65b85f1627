package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
)

// userStoreAdapter serves both application.UserStore and
// application.UserRepository from the account table.
type userStoreAdapter struct {
	repo persistence.UserRepository
}

func newUserStoreAdapter(repo persistence.UserRepository) *userStoreAdapter {
	return &userStoreAdapter{repo: repo}
}

func (a *userStoreAdapter) CreateUser(ctx context.Context, user application.NewUser) (application.User, error) {
	stored, err := a.repo.CreateUser(ctx, persistence.User{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return application.User{}, mapUserError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, mapUserError(err)
	}
	return application.UserCredentials{User: toApplicationUser(stored), PasswordHash: stored.PasswordHash}, nil
}

func (a *userStoreAdapter) GetUser(ctx context.Context, id int64) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, mapUserError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, mapUserError(err)
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func (a *userStoreAdapter) UpdateUser(ctx context.Context, user application.User) error {
	return mapUserError(a.repo.UpdateUser(ctx, persistence.User{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}))
}

func (a *userStoreAdapter) UpdateUserRole(ctx context.Context, id int64, isAdmin bool) error {
	return mapUserError(a.repo.UpdateUserRole(ctx, id, isAdmin))
}

func (a *userStoreAdapter) DeleteUser(ctx context.Context, id int64) error {
	return mapUserError(a.repo.DeleteUser(ctx, id))
}

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) ListBookings(ctx context.Context, filter application.BookingFilter) ([]application.Booking, error) {
	models, err := a.repo.ListBookings(ctx, persistence.BookingFilter{UserID: filter.UserID})
	if err != nil {
		return nil, mapBookingError(err)
	}
	bookings := make([]application.Booking, 0, len(models))
	for _, model := range models {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings, nil
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id int64) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, mapBookingError(err)
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, b application.Booking) (application.Booking, error) {
	stored, err := a.repo.CreateBooking(ctx, toPersistenceBooking(b))
	if err != nil {
		return application.Booking{}, mapBookingError(err)
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) UpdateBooking(ctx context.Context, b application.Booking) error {
	return mapBookingError(a.repo.UpdateBooking(ctx, toPersistenceBooking(b)))
}

func (a *bookingRepositoryAdapter) UpdateBookingStatus(ctx context.Context, id int64, status booking.Status) error {
	return mapBookingError(a.repo.UpdateBookingStatus(ctx, id, status.String()))
}

func (a *bookingRepositoryAdapter) DeleteBooking(ctx context.Context, id int64) error {
	return mapBookingError(a.repo.DeleteBooking(ctx, id))
}

func (a *bookingRepositoryAdapter) SlotTaken(ctx context.Context, slot booking.Slot) (bool, error) {
	taken, err := a.repo.SlotTaken(ctx, slot.RoomNumber, slot.Date, slot.TimeSlot)
	if err != nil {
		return false, mapBookingError(err)
	}
	return taken, nil
}

// roomRepositoryAdapter serves application.RoomRepository and
// application.RoomAvailability.
type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) ListAvailableRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListAvailableRooms(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationRooms(models), nil
}

func (a *roomRepositoryAdapter) ListRoomsFreeForSlot(ctx context.Context, date, timeSlot string) ([]application.Room, error) {
	models, err := a.repo.ListRoomsFreeForSlot(ctx, date, timeSlot)
	if err != nil {
		return nil, err
	}
	return toApplicationRooms(models), nil
}

func (a *roomRepositoryAdapter) RoomAvailableForSlot(ctx context.Context, slot booking.Slot) (bool, error) {
	return a.repo.RoomAvailableForSlot(ctx, slot.RoomNumber, slot.Date, slot.TimeSlot)
}

func mapUserError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%w: %v", application.ErrNotFound, err)
	case errors.Is(err, persistence.ErrConflict):
		return fmt.Errorf("%w: %v", application.ErrAlreadyExists, err)
	default:
		return err
	}
}

func mapBookingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%w: %v", application.ErrNotFound, err)
	case errors.Is(err, persistence.ErrConflict):
		return fmt.Errorf("%w: %v", application.ErrSlotTaken, err)
	case errors.Is(err, persistence.ErrConstraintViolation):
		// the room or owner row is gone
		return fmt.Errorf("%w: %v", application.ErrRoomUnavailable, err)
	default:
		return err
	}
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:        model.ID,
		Username:  model.Username,
		Email:     model.Email,
		IsAdmin:   model.IsAdmin,
		CreatedAt: model.CreatedAt,
	}
}

func toApplicationBooking(model persistence.Booking) application.Booking {
	status, ok := booking.ParseStatus(model.Status)
	if !ok {
		status = booking.Status(model.Status)
	}
	return application.Booking{
		ID:          model.ID,
		Name:        model.Name,
		BookingDate: model.BookingDate,
		TimeSlot:    model.TimeSlot,
		RoomNumber:  model.RoomNumber,
		Status:      status,
		UserID:      model.UserID,
	}
}

func toPersistenceBooking(b application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:          b.ID,
		Name:        b.Name,
		BookingDate: b.BookingDate,
		TimeSlot:    b.TimeSlot,
		RoomNumber:  b.RoomNumber,
		Status:      b.Status.String(),
		UserID:      b.UserID,
	}
}

func toApplicationRooms(models []persistence.Room) []application.Room {
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, application.Room{RoomNumber: model.RoomNumber, Status: model.Status})
	}
	return rooms
}
