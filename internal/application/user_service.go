package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/booking"
)

// UserRepository captures the administrative account operations.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user User) error
	UpdateUserRole(ctx context.Context, id int64, isAdmin bool) error
	DeleteUser(ctx context.Context, id int64) error
}

// UserService implements admin-only user management. Every operation is a
// pass-through to the repository once the caller is confirmed as admin.
type UserService struct {
	users       UserRepository
	revocations RevocationStore
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService constructs a UserService with the provided dependencies.
func NewUserService(users UserRepository, revocations RevocationStore, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, revocations, now, nil)
}

// NewUserServiceWithLogger constructs a UserService with a specified logger.
func NewUserServiceWithLogger(users UserRepository, revocations RevocationStore, now func() time.Time, logger *slog.Logger) *UserService {
	if revocations == nil {
		revocations = NoopRevocations{}
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, revocations: revocations, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

func (s *UserService) ready(principal Principal) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}
	if !principal.IsAdmin {
		return ErrAccessDenied
	}
	return nil
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) (users []User, err error) {
	if err = s.ready(principal); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListUsers", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list users", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(users)).InfoContext(ctx, "users listed")
	}()

	users, err = s.users.ListUsers(ctx)
	if err == nil && users == nil {
		users = []User{}
	}
	return
}

// UpdateUser replaces username, email, and role of an account. The user's
// existing tokens are revoked.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (err error) {
	if err = s.ready(params.Principal); err != nil {
		return
	}

	user := User{
		ID:       params.UserID,
		Username: strings.TrimSpace(params.Username),
		Email:    normalizeEmail(params.Email),
		IsAdmin:  booking.IsAdminRole(params.Role),
	}

	logger := s.loggerWith(ctx, "UpdateUser", "principal_id", params.Principal.UserID, "user_id", user.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("is_admin", user.IsAdmin).InfoContext(ctx, "user updated")
	}()

	vErr := &ValidationError{Message: "Please provide all required fields"}
	vErr.require("username", user.Username)
	vErr.require("email", user.Email)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if !booking.ValidEmail(user.Email) {
		err = &ValidationError{Message: "Invalid email format", FieldErrors: map[string]string{"email": "email is invalid"}}
		return
	}

	if err = s.users.UpdateUser(ctx, user); err != nil {
		return
	}
	s.revoke(ctx, logger, user.ID)
	return
}

// UpdateUserRole sets the admin flag from a role label and revokes the
// user's existing tokens.
func (s *UserService) UpdateUserRole(ctx context.Context, params UpdateUserRoleParams) (err error) {
	if err = s.ready(params.Principal); err != nil {
		return
	}

	isAdmin := booking.IsAdminRole(params.Role)
	logger := s.loggerWith(ctx, "UpdateUserRole", "principal_id", params.Principal.UserID, "user_id", params.UserID, "is_admin", isAdmin)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user role", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user role updated")
	}()

	if err = s.users.UpdateUserRole(ctx, params.UserID, isAdmin); err != nil {
		return
	}
	s.revoke(ctx, logger, params.UserID)
	return
}

// DeleteUser removes an account and revokes its tokens.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, id int64) (err error) {
	if err = s.ready(principal); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "DeleteUser", "principal_id", principal.UserID, "user_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user deleted")
	}()

	if err = s.users.DeleteUser(ctx, id); err != nil {
		return
	}
	s.revoke(ctx, logger, id)
	return
}

func (s *UserService) revoke(ctx context.Context, logger *slog.Logger, userID int64) {
	if err := s.revocations.Revoke(ctx, userID, s.now()); err != nil {
		logger.WarnContext(ctx, "failed to revoke tokens", "error", err)
	}
}
