package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/room-booking/internal/testfixtures"
)

type authFixture struct {
	service     *AuthService
	users       *memoryUsers
	tokens      *TokenService
	revocations *memoryRevocations
	clock       *testfixtures.Clock
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	clock := testfixtures.NewClock(time.Time{})
	tokens, err := NewTokenService("test-secret", clock.NowFunc())
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	users := newMemoryUsers()
	revocations := newMemoryRevocations()
	service := NewAuthService(users, tokens, revocations, BcryptHasher(bcrypt.MinCost), clock.NowFunc())
	return authFixture{service: service, users: users, tokens: tokens, revocations: revocations, clock: clock}
}

func (f authFixture) register(t *testing.T, email, password string, isAdmin bool) User {
	t.Helper()
	user, err := f.service.Register(context.Background(), RegisterParams{
		Username: "user-" + email,
		Email:    email,
		Password: password,
		IsAdmin:  isAdmin,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return user
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("stores a bcrypt hash and defaults to a regular user", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		user := f.register(t, " A@X.com ", "pw", false)
		if user.ID == 0 || user.Email != "a@x.com" || user.IsAdmin {
			t.Fatalf("unexpected user %+v", user)
		}
		if !user.CreatedAt.Equal(testfixtures.ReferenceTime()) {
			t.Fatalf("expected created_at from clock, got %s", user.CreatedAt)
		}

		creds, err := f.users.GetUserCredentialsByEmail(context.Background(), "a@x.com")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if creds.PasswordHash == "pw" || !strings.HasPrefix(creds.PasswordHash, "$2") {
			t.Fatalf("expected a bcrypt hash, got %q", creds.PasswordHash)
		}
		if err := VerifyPassword(creds.PasswordHash, "pw"); err != nil {
			t.Fatalf("expected stored hash to verify: %v", err)
		}
	})

	t.Run("validates fields in order", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		tests := []struct {
			name    string
			params  RegisterParams
			message string
		}{
			{name: "missing username", params: RegisterParams{Email: "a@x.com", Password: "pw"}, message: "Please provide all required fields"},
			{name: "missing password", params: RegisterParams{Username: "u", Email: "bad", Password: ""}, message: "Please provide all required fields"},
			{name: "invalid email", params: RegisterParams{Username: "u", Email: "not-an-email", Password: "pw"}, message: "Invalid email format"},
			{name: "password too long", params: RegisterParams{Username: "u", Email: "a@x.com", Password: strings.Repeat("p", 73)}, message: "Password is too long"},
		}
		for _, tc := range tests {
			_, err := f.service.Register(context.Background(), tc.params)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
			}
			if vErr.Message != tc.message {
				t.Fatalf("%s: expected message %q, got %q", tc.name, tc.message, vErr.Message)
			}
		}
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.register(t, "a@x.com", "pw", false)

		_, err := f.service.Register(context.Background(), RegisterParams{Username: "u2", Email: "a@x.com", Password: "pw2"})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("surfaces store failures", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.users.err = errors.New("connection refused")

		_, err := f.service.Register(context.Background(), RegisterParams{Username: "u", Email: "a@x.com", Password: "pw"})
		if err == nil || ErrorKind(err) != "unexpected" {
			t.Fatalf("expected an unexpected error, got %v", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	t.Run("issues a token carrying the role", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		admin := f.register(t, "admin@x.com", "pw", true)

		result, err := f.service.Login(context.Background(), LoginParams{Email: "ADMIN@x.com", Password: "pw"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if result.User.ID != admin.ID || !result.User.IsAdmin {
			t.Fatalf("unexpected user %+v", result.User)
		}
		principal, err := f.tokens.Verify(result.Token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if principal.UserID != admin.ID || !principal.IsAdmin {
			t.Fatalf("unexpected principal %+v", principal)
		}
		if !result.ExpiresAt.Equal(f.clock.Now().Add(TokenTTL)) {
			t.Fatalf("unexpected expiry %s", result.ExpiresAt)
		}
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.register(t, "a@x.com", "pw", false)

		_, wrongPassword := f.service.Login(context.Background(), LoginParams{Email: "a@x.com", Password: "nope"})
		_, unknownEmail := f.service.Login(context.Background(), LoginParams{Email: "ghost@x.com", Password: "pw"})

		if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownEmail, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", wrongPassword, unknownEmail)
		}
		if wrongPassword.Error() != unknownEmail.Error() {
			t.Fatalf("expected identical errors, got %q and %q", wrongPassword, unknownEmail)
		}
	})

	t.Run("requires email and password", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		_, err := f.service.Login(context.Background(), LoginParams{Email: "a@x.com"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Message != "Please provide email and password" {
			t.Fatalf("expected missing field validation error, got %v", err)
		}
	})
}

func TestAuthService_Me(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	user := f.register(t, "a@x.com", "pw", false)

	got, err := f.service.Me(context.Background(), Principal{UserID: user.ID})
	if err != nil || got.Email != "a@x.com" {
		t.Fatalf("Me returned (%+v, %v)", got, err)
	}

	if _, err := f.service.Me(context.Background(), Principal{UserID: 999}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a deleted user, got %v", err)
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Parallel()

	t.Run("maps guard failures", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		token := mustIssue(t, f.tokens, 1)

		if _, err := f.service.ValidateToken(context.Background(), " "); !errors.Is(err, ErrTokenMissing) {
			t.Fatalf("expected ErrTokenMissing, got %v", err)
		}
		if _, err := f.service.ValidateToken(context.Background(), "junk"); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid, got %v", err)
		}
		f.clock.Advance(TokenTTL + time.Minute)
		if _, err := f.service.ValidateToken(context.Background(), token); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("rejects tokens issued before a revocation", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		stale := mustIssue(t, f.tokens, 5)

		if err := f.revocations.Revoke(context.Background(), 5, f.clock.Now()); err != nil {
			t.Fatalf("Revoke: %v", err)
		}
		if _, err := f.service.ValidateToken(context.Background(), stale); !errors.Is(err, ErrTokenRevoked) {
			t.Fatalf("expected ErrTokenRevoked, got %v", err)
		}

		f.clock.Advance(time.Second)
		fresh := mustIssue(t, f.tokens, 5)
		principal, err := f.service.ValidateToken(context.Background(), fresh)
		if err != nil || principal.UserID != 5 {
			t.Fatalf("expected fresh token to pass, got (%+v, %v)", principal, err)
		}
	})

	t.Run("accepts tokens when the revocation store fails", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.revocations.err = errors.New("redis down")

		if _, err := f.service.ValidateToken(context.Background(), mustIssue(t, f.tokens, 9)); err != nil {
			t.Fatalf("expected token to pass, got %v", err)
		}
	})
}
