package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/booking"
)

// bcrypt ignores input past this length.
const maxPasswordBytes = 72

// UserStore exposes the account operations required by the auth service.
type UserStore interface {
	CreateUser(ctx context.Context, user NewUser) (User, error)
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
	GetUser(ctx context.Context, id int64) (User, error)
}

// AuthService coordinates registration, login, and token validation.
type AuthService struct {
	users          UserStore
	tokens         *TokenService
	revocations    RevocationStore
	hashPassword   PasswordHasher
	verifyPassword PasswordVerifier
	now            func() time.Time
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users UserStore, tokens *TokenService, revocations RevocationStore, hash PasswordHasher, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(users, tokens, revocations, hash, now, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
// A nil revocation store disables revocation checks.
func NewAuthServiceWithLogger(users UserStore, tokens *TokenService, revocations RevocationStore, hash PasswordHasher, now func() time.Time, logger *slog.Logger) *AuthService {
	if revocations == nil {
		revocations = NoopRevocations{}
	}
	if hash == nil {
		hash = BcryptHasher(0)
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:          users,
		tokens:         tokens,
		revocations:    revocations,
		hashPassword:   hash,
		verifyPassword: VerifyPassword,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Register creates a new account. No token is issued.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	username := strings.TrimSpace(params.Username)
	email := normalizeEmail(params.Email)

	logger := s.loggerWith(ctx, "Register", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID, "is_admin", user.IsAdmin).InfoContext(ctx, "user registered")
	}()

	vErr := &ValidationError{Message: "Please provide all required fields"}
	vErr.require("username", username)
	vErr.require("email", email)
	if params.Password == "" {
		vErr.add("password", "password is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if !booking.ValidEmail(email) {
		err = &ValidationError{Message: "Invalid email format", FieldErrors: map[string]string{"email": "email is invalid"}}
		return
	}
	if len(params.Password) > maxPasswordBytes {
		err = &ValidationError{
			Message:     "Password is too long",
			FieldErrors: map[string]string{"password": fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes)},
		}
		return
	}

	_, lookupErr := s.users.GetUserCredentialsByEmail(ctx, email)
	switch {
	case lookupErr == nil:
		err = ErrAlreadyExists
		return
	case !errors.Is(lookupErr, ErrNotFound):
		err = fmt.Errorf("lookup user by email: %w", lookupErr)
		return
	}

	var hash string
	hash, err = s.hashPassword(params.Password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	user, err = s.users.CreateUser(ctx, NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      params.IsAdmin,
		CreatedAt:    s.now().UTC(),
	})
	return
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not fully configured")
		return
	}

	email := normalizeEmail(params.Email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID, "is_admin", result.User.IsAdmin).InfoContext(ctx, "user logged in")
	}()

	if email == "" || params.Password == "" {
		vErr := &ValidationError{Message: "Please provide email and password"}
		vErr.require("email", email)
		if params.Password == "" {
			vErr.add("password", "password is required")
		}
		err = vErr
		return
	}

	var creds UserCredentials
	creds, err = s.users.GetUserCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(creds.PasswordHash, params.Password); err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			logger.WarnContext(ctx, "stored password hash rejected", "error", err)
		}
		err = ErrInvalidCredentials
		return
	}

	var token string
	var expiresAt time.Time
	token, expiresAt, err = s.tokens.Issue(creds.User.ID, creds.User.IsAdmin)
	if err != nil {
		return
	}

	result = LoginResult{User: creds.User, Token: token, ExpiresAt: expiresAt}
	return
}

// Me returns the account of the authenticated principal.
func (s *AuthService) Me(ctx context.Context, principal Principal) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	logger := s.loggerWith(ctx, "Me", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "profile lookup failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	user, err = s.users.GetUser(ctx, principal.UserID)
	return
}

// ValidateToken verifies a bearer token and returns its principal. Tokens
// issued up to a recorded revocation for the user fail with ErrTokenRevoked.
// A failing revocation store is logged and does not reject the token.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.tokens == nil {
		err = fmt.Errorf("token service not configured")
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateToken", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "token rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).DebugContext(ctx, "token validated")
	}()

	if trimmed == "" {
		err = ErrTokenMissing
		return
	}

	principal, err = s.tokens.Verify(trimmed)
	if err != nil {
		return
	}

	revokedAt, revoked, lookupErr := s.revocations.RevokedSince(ctx, principal.UserID)
	if lookupErr != nil {
		logger.ErrorContext(ctx, "revocation lookup failed, accepting token", "error", lookupErr)
		return
	}
	// iat has second precision, so a token from the revocation second is rejected too.
	if revoked && !principal.IssuedAt.After(revokedAt.Truncate(time.Second)) {
		err = ErrTokenRevoked
		principal = Principal{}
	}
	return
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
