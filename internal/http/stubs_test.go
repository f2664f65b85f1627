package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/booking"
)

type stubValidator struct {
	principals map[string]application.Principal
	err        error
}

func (s stubValidator) ValidateToken(_ context.Context, token string) (application.Principal, error) {
	if s.err != nil {
		return application.Principal{}, s.err
	}
	p, ok := s.principals[token]
	if !ok {
		return application.Principal{}, application.ErrTokenInvalid
	}
	return p, nil
}

type stubAuthService struct {
	registerErr error
	login       application.LoginResult
	loginErr    error
	me          application.User
	meErr       error

	registered application.RegisterParams
}

func (s *stubAuthService) Register(_ context.Context, params application.RegisterParams) (application.User, error) {
	s.registered = params
	return application.User{ID: 1, Username: params.Username, Email: params.Email}, s.registerErr
}

func (s *stubAuthService) Login(context.Context, application.LoginParams) (application.LoginResult, error) {
	return s.login, s.loginErr
}

func (s *stubAuthService) Me(context.Context, application.Principal) (application.User, error) {
	return s.me, s.meErr
}

type stubBookingService struct {
	bookings  []application.Booking
	listErr   error
	created   application.Booking
	createErr error
	updateErr error
	status    booking.Status
	statusErr error
	deleteErr error

	lastCreate application.CreateBookingParams
	lastUpdate application.UpdateBookingParams
	ownCalled  bool
}

func (s *stubBookingService) ListBookings(context.Context, application.Principal) ([]application.Booking, error) {
	return s.bookings, s.listErr
}

func (s *stubBookingService) ListOwnBookings(context.Context, application.Principal) ([]application.Booking, error) {
	s.ownCalled = true
	return s.bookings, s.listErr
}

func (s *stubBookingService) CreateBooking(_ context.Context, params application.CreateBookingParams) (application.Booking, error) {
	s.lastCreate = params
	return s.created, s.createErr
}

func (s *stubBookingService) UpdateBooking(_ context.Context, params application.UpdateBookingParams) error {
	s.lastUpdate = params
	return s.updateErr
}

func (s *stubBookingService) UpdateBookingStatus(context.Context, application.UpdateBookingStatusParams) (booking.Status, error) {
	return s.status, s.statusErr
}

func (s *stubBookingService) DeleteBooking(context.Context, application.Principal, int64) error {
	return s.deleteErr
}

type stubRoomService struct {
	rooms    []application.Room
	err      error
	lastArgs application.CheckAvailabilityParams
}

func (s *stubRoomService) ListAvailableRooms(context.Context, application.Principal) ([]application.Room, error) {
	return s.rooms, s.err
}

func (s *stubRoomService) CheckAvailability(_ context.Context, params application.CheckAvailabilityParams) ([]application.Room, error) {
	s.lastArgs = params
	return s.rooms, s.err
}

type stubUserService struct {
	users []application.User
	err   error

	lastUpdate application.UpdateUserParams
	lastRole   application.UpdateUserRoleParams
}

func (s *stubUserService) ListUsers(_ context.Context, p application.Principal) ([]application.User, error) {
	if !p.IsAdmin {
		return nil, application.ErrAccessDenied
	}
	return s.users, s.err
}

func (s *stubUserService) UpdateUser(_ context.Context, params application.UpdateUserParams) error {
	s.lastUpdate = params
	return s.err
}

func (s *stubUserService) UpdateUserRole(_ context.Context, params application.UpdateUserRoleParams) error {
	s.lastRole = params
	return s.err
}

func (s *stubUserService) DeleteUser(context.Context, application.Principal, int64) error {
	return s.err
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

type testServer struct {
	handler  http.Handler
	auth     *stubAuthService
	bookings *stubBookingService
	rooms    *stubRoomService
	users    *stubUserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := &testServer{
		auth:     &stubAuthService{},
		bookings: &stubBookingService{},
		rooms:    &stubRoomService{},
		users:    &stubUserService{},
	}
	ts.handler = NewRouter(RouterConfig{
		Auth:     NewAuthHandler(ts.auth, logger),
		Bookings: NewBookingHandler(ts.bookings, logger),
		Rooms:    NewRoomHandler(ts.rooms, logger),
		Users:    NewUserHandler(ts.users, logger),
		Validator: stubValidator{principals: map[string]application.Principal{
			userToken:  {UserID: 7, IssuedAt: time.Now()},
			adminToken: {UserID: 1, IsAdmin: true, IssuedAt: time.Now()},
		}},
		Health:     stubPinger{},
		Metrics:    NewMetrics(),
		CORSOrigin: "http://localhost:4200",
		Logger:     logger,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}
