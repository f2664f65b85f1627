package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/room-booking/internal/booking"
)

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]UserCredentials
	err    error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[int64]UserCredentials)}
}

func (m *memoryUsers) CreateUser(_ context.Context, user NewUser) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return User{}, m.err
	}
	for _, existing := range m.users {
		if existing.User.Email == user.Email {
			return User{}, ErrAlreadyExists
		}
	}
	m.nextID++
	created := User{ID: m.nextID, Username: user.Username, Email: user.Email, IsAdmin: user.IsAdmin, CreatedAt: user.CreatedAt}
	m.users[created.ID] = UserCredentials{User: created, PasswordHash: user.PasswordHash}
	return created, nil
}

func (m *memoryUsers) GetUserCredentialsByEmail(_ context.Context, email string) (UserCredentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return UserCredentials{}, m.err
	}
	for _, creds := range m.users {
		if creds.User.Email == email {
			return creds, nil
		}
	}
	return UserCredentials{}, ErrNotFound
}

func (m *memoryUsers) GetUser(_ context.Context, id int64) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	creds, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return creds.User, nil
}

func (m *memoryUsers) ListUsers(context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]User, 0, len(m.users))
	for _, creds := range m.users {
		out = append(out, creds.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryUsers) UpdateUser(_ context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	creds, ok := m.users[user.ID]
	if !ok {
		return nil
	}
	user.CreatedAt = creds.User.CreatedAt
	creds.User = user
	m.users[user.ID] = creds
	return nil
}

func (m *memoryUsers) UpdateUserRole(_ context.Context, id int64, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if creds, ok := m.users[id]; ok {
		creds.User.IsAdmin = isAdmin
		m.users[id] = creds
	}
	return nil
}

func (m *memoryUsers) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

type memoryBookings struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]Booking
}

func newMemoryBookings(seed ...Booking) *memoryBookings {
	m := &memoryBookings{bookings: make(map[int64]Booking)}
	for _, b := range seed {
		if b.ID > m.nextID {
			m.nextID = b.ID
		}
		m.bookings[b.ID] = b
	}
	return m
}

func (m *memoryBookings) ListBookings(_ context.Context, filter BookingFilter) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BookingDate != out[j].BookingDate {
			return out[i].BookingDate < out[j].BookingDate
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryBookings) GetBooking(_ context.Context, id int64) (Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return b, nil
}

func (m *memoryBookings) CreateBooking(_ context.Context, b Booking) (Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.Slot() == b.Slot() {
			return Booking{}, ErrSlotTaken
		}
	}
	m.nextID++
	b.ID = m.nextID
	m.bookings[b.ID] = b
	return b, nil
}

func (m *memoryBookings) UpdateBooking(_ context.Context, b Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.bookings[b.ID]
	if !ok {
		return nil
	}
	existing.Name = b.Name
	existing.BookingDate = b.BookingDate
	existing.RoomNumber = b.RoomNumber
	existing.Status = b.Status
	m.bookings[b.ID] = existing
	return nil
}

func (m *memoryBookings) UpdateBookingStatus(_ context.Context, id int64, status booking.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	existing.Status = status
	m.bookings[id] = existing
	return nil
}

func (m *memoryBookings) DeleteBooking(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bookings, id)
	return nil
}

func (m *memoryBookings) SlotTaken(_ context.Context, slot booking.Slot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.Slot() == slot {
			return true, nil
		}
	}
	return false, nil
}

type stubRooms struct {
	available map[string]bool
	bookings  *memoryBookings
	err       error
}

func (s stubRooms) RoomAvailableForSlot(ctx context.Context, slot booking.Slot) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if !s.available[slot.RoomNumber] {
		return false, nil
	}
	if s.bookings == nil {
		return true, nil
	}
	taken, err := s.bookings.SlotTaken(ctx, slot)
	return !taken, err
}

func (s stubRooms) ListAvailableRooms(context.Context) ([]Room, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Room, 0, len(s.available))
	for number, ok := range s.available {
		if ok {
			out = append(out, Room{RoomNumber: number, Status: "available"})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (s stubRooms) ListRoomsFreeForSlot(ctx context.Context, date, timeSlot string) ([]Room, error) {
	rooms, err := s.ListAvailableRooms(ctx)
	if err != nil {
		return nil, err
	}
	out := rooms[:0]
	for _, room := range rooms {
		ok, err := s.RoomAvailableForSlot(ctx, booking.NewSlot(room.RoomNumber, date, timeSlot))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, room)
		}
	}
	return out, nil
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[int64]time.Time
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: make(map[int64]time.Time)}
}

func (m *memoryRevocations) Revoke(_ context.Context, userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked[userID] = at
	return nil
}

func (m *memoryRevocations) RevokedSince(_ context.Context, userID int64) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return time.Time{}, false, m.err
	}
	at, ok := m.revoked[userID]
	return at, ok, nil
}
