package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/testfixtures"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newAPIClient(t *testing.T, rooms ...string) (*apiClient, *testfixtures.SQLiteHarness) {
	t.Helper()

	harness := testfixtures.NewSQLiteHarness(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := seedRooms(context.Background(), harness.Rooms, rooms, logger); err != nil {
		t.Fatalf("seed rooms: %v", err)
	}

	handler, err := buildHandler(handlerConfig{
		Storage:     harness.Storage,
		Revocations: application.NoopRevocations{},
		JWTSecret:   "integration-secret",
		BcryptCost:  bcrypt.MinCost,
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	return &apiClient{t: t, handler: handler}, harness
}

func (c *apiClient) call(method, path, token string, body any) (int, map[string]any) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		c.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, decoded
}

func (c *apiClient) registerAndLogin(username string, isAdmin bool) string {
	c.t.Helper()

	email := username + "@example.com"
	if code, body := c.call(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username, "email": email, "password": "secret", "isAdmin": isAdmin,
	}); code != http.StatusCreated {
		c.t.Fatalf("register %s: %d %v", username, code, body)
	}
	code, body := c.call(http.MethodPost, "/api/auth/login", "", map[string]any{"email": email, "password": "secret"})
	if code != http.StatusOK {
		c.t.Fatalf("login %s: %d %v", username, code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		c.t.Fatalf("login %s returned no token: %v", username, body)
	}
	return token
}

func TestBookingFlow(t *testing.T) {
	t.Parallel()

	api, _ := newAPIClient(t, "101", "102")
	alice := api.registerAndLogin("alice", false)
	bob := api.registerAndLogin("bob", false)
	admin := api.registerAndLogin("root", true)

	code, body := api.call(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "alice2", "email": "ALICE@example.com", "password": "x",
	})
	if code != http.StatusBadRequest || body["message"] != "User already exists" {
		t.Fatalf("expected duplicate email rejection, got %d %v", code, body)
	}

	code, body = api.call(http.MethodPost, "/api/bookings", alice, map[string]any{
		"name": "Standup", "booking_date": "2024-03-01", "time_slot": "09:00-10:00", "room_number": 101,
	})
	if code != http.StatusCreated {
		t.Fatalf("create booking: %d %v", code, body)
	}
	bookingID := int64(body["id"].(float64))

	code, body = api.call(http.MethodPost, "/api/bookings", bob, map[string]any{
		"name": "Retro", "booking_date": "2024-03-01", "time_slot": "09:00-10:00", "room_number": "101",
	})
	if code != http.StatusBadRequest || body["message"] != "This room is already booked for the selected time slot" {
		t.Fatalf("expected slot conflict, got %d %v", code, body)
	}

	code, body = api.call(http.MethodPost, "/api/bookings", bob, map[string]any{
		"name": "Retro", "booking_date": "2024-03-01", "time_slot": "09:00-10:00", "room_number": "999",
	})
	if code != http.StatusBadRequest || body["message"] != "Room is not available for the selected time slot" {
		t.Fatalf("expected unknown room rejection, got %d %v", code, body)
	}

	code, body = api.call(http.MethodGet, "/api/rooms/check-availability?date=2024-03-01&time_slot=09:00-10:00", bob, nil)
	if code != http.StatusOK {
		t.Fatalf("check availability: %d %v", code, body)
	}
	if free := body["data"].([]any); len(free) != 1 || free[0].(map[string]any)["room_number"] != "102" {
		t.Fatalf("expected only room 102 free, got %v", free)
	}

	code, body = api.call(http.MethodGet, "/api/bookings", bob, nil)
	if code != http.StatusOK || len(body["data"].([]any)) != 0 {
		t.Fatalf("expected bob to see no bookings, got %d %v", code, body)
	}
	code, body = api.call(http.MethodGet, "/api/bookings", admin, nil)
	if code != http.StatusOK || len(body["data"].([]any)) != 1 {
		t.Fatalf("expected admin to see every booking, got %d %v", code, body)
	}

	path := fmt.Sprintf("/api/bookings/%d", bookingID)

	code, body = api.call(http.MethodPut, path+"/status", admin, map[string]any{"status": "Approved"})
	if code != http.StatusOK || body["newStatus"] != "approved" {
		t.Fatalf("approve booking: %d %v", code, body)
	}
	code, body = api.call(http.MethodPut, path+"/status", admin, map[string]any{"status": "cancelled"})
	if code != http.StatusBadRequest || body["received"] != "cancelled" {
		t.Fatalf("expected invalid status rejection, got %d %v", code, body)
	}
	code, body = api.call(http.MethodPut, "/api/bookings/9999/status", admin, map[string]any{"status": "pending"})
	if code != http.StatusNotFound {
		t.Fatalf("expected missing booking, got %d %v", code, body)
	}

	code, body = api.call(http.MethodGet, "/api/bookings/user", alice, nil)
	own := body["data"].([]any)
	if code != http.StatusOK || len(own) != 1 || own[0].(map[string]any)["status"] != "approved" {
		t.Fatalf("expected alice's approved booking, got %d %v", code, body)
	}

	if code, body = api.call(http.MethodDelete, path, bob, nil); code != http.StatusOK {
		t.Fatalf("delete of another user's booking: %d %v", code, body)
	}
	code, body = api.call(http.MethodGet, "/api/bookings/user", alice, nil)
	if code != http.StatusOK || len(body["data"].([]any)) != 0 {
		t.Fatalf("expected alice's booking to be gone, got %d %v", code, body)
	}
	if code, body = api.call(http.MethodDelete, path, alice, nil); code != http.StatusOK {
		t.Fatalf("repeat delete should succeed, got %d %v", code, body)
	}
}

func TestUserAdministration(t *testing.T) {
	t.Parallel()

	api, harness := newAPIClient(t)
	user := api.registerAndLogin("carol", false)
	admin := api.registerAndLogin("dave", true)

	if code, body := api.call(http.MethodGet, "/api/users", user, nil); code != http.StatusForbidden || body["message"] != "Access denied. Admin only." {
		t.Fatalf("expected admin-only rejection, got %d %v", code, body)
	}

	code, body := api.call(http.MethodGet, "/api/users", admin, nil)
	if code != http.StatusOK || len(body["data"].([]any)) != 2 {
		t.Fatalf("list users: %d %v", code, body)
	}

	stored, err := harness.Users.GetUserByEmail(context.Background(), "carol@example.com")
	if err != nil {
		t.Fatalf("lookup carol: %v", err)
	}
	path := fmt.Sprintf("/api/users/%d", stored.ID)

	if code, body = api.call(http.MethodPatch, path+"/role", admin, map[string]any{"role": "admin"}); code != http.StatusOK {
		t.Fatalf("promote: %d %v", code, body)
	}
	promoted, err := harness.Users.GetUser(context.Background(), stored.ID)
	if err != nil || !promoted.IsAdmin {
		t.Fatalf("expected carol to be admin, got %+v err %v", promoted, err)
	}

	code, body = api.call(http.MethodPut, path, admin, map[string]any{"username": "carol", "email": "dave@example.com", "role": "user"})
	if code != http.StatusBadRequest || body["message"] != "User already exists" {
		t.Fatalf("expected email conflict, got %d %v", code, body)
	}

	if code, body = api.call(http.MethodDelete, path, admin, nil); code != http.StatusOK {
		t.Fatalf("delete user: %d %v", code, body)
	}
	if _, err := harness.Users.GetUser(context.Background(), stored.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected carol to be gone, got %v", err)
	}

	code, body = api.call(http.MethodGet, "/api/auth/me", user, nil)
	if code != http.StatusNotFound || body["message"] != "User not found" {
		t.Fatalf("expected deleted user profile to be missing, got %d %v", code, body)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	api, _ := newAPIClient(t)
	code, body := api.call(http.MethodGet, "/healthz", "", nil)
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health %d %v", code, body)
	}
}

func TestMapBookingError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   error
		want error
	}{
		{persistence.ErrNotFound, application.ErrNotFound},
		{fmt.Errorf("insert: %w", persistence.ErrConflict), application.ErrSlotTaken},
		{persistence.ErrConstraintViolation, application.ErrRoomUnavailable},
	}
	for _, c := range cases {
		if got := mapBookingError(c.in); !errors.Is(got, c.want) {
			t.Fatalf("mapBookingError(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	if mapBookingError(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	if got := mapUserError(persistence.ErrConflict); !errors.Is(got, application.ErrAlreadyExists) {
		t.Fatalf("mapUserError(conflict) = %v", got)
	}
}

func TestSeedRoomsIsIdempotent(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := seedRooms(ctx, harness.Rooms, []string{"A1", "B2"}, logger); err != nil {
			t.Fatalf("seed pass %d: %v", i, err)
		}
	}
	rooms, err := harness.Rooms.ListAvailableRooms(ctx)
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %+v", rooms)
	}
}
