package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// UserRepository implements persistence.UserRepository.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

var _ persistence.UserRepository = (*UserRepository)(nil)

// NewUserRepository builds a repository on pool. now stamps created_at when
// the caller leaves it zero.
func NewUserRepository(pool *ConnectionPool, now func() time.Time) *UserRepository {
	if now == nil {
		now = time.Now
	}
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(pool.Dialect()),
		now:    now,
	}
}

const userColumns = `id, username, email, password_hash, is_admin, created_at`

// CreateUser inserts user and returns it with the generated id. A duplicate
// email yields persistence.ErrConflict.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) (persistence.User, error) {
	if user.PasswordHash == "" {
		return persistence.User{}, persistence.ErrConstraintViolation
	}
	user.Email = normalizeEmail(user.Email)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	user.CreatedAt = user.CreatedAt.UTC().Truncate(time.Second)

	id, err := r.helper.Insert(ctx, "id",
		`INSERT INTO users (username, email, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}
	user.ID = id
	return user, nil
}

// GetUser loads a user by id.
func (r *UserRepository) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

// GetUserByEmail loads a user by case-insensitive email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalized)
	return r.scanUser(row)
}

// ListUsers returns every account ordered by id.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	users := make([]persistence.User, 0)
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return users, nil
}

// UpdateUser replaces username, email, and role. An email owned by another
// account yields persistence.ErrConflict.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	_, err := r.helper.Exec(ctx,
		`UPDATE users SET username = ?, email = ?, is_admin = ? WHERE id = ?`,
		user.Username,
		normalizeEmail(user.Email),
		user.IsAdmin,
		user.ID,
	)
	return r.mapper.MapError(err)
}

// UpdateUserRole sets the admin flag.
func (r *UserRepository) UpdateUserRole(ctx context.Context, id int64, isAdmin bool) error {
	_, err := r.helper.Exec(ctx, `UPDATE users SET is_admin = ? WHERE id = ?`, isAdmin, id)
	return r.mapper.MapError(err)
}

// DeleteUser removes the account; its bookings cascade.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.helper.Exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	return r.mapper.MapError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (persistence.User, error) {
	var (
		user      persistence.User
		createdAt string
	)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsAdmin, &createdAt); err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return persistence.User{}, fmt.Errorf("parse created_at for user %d: %w", user.ID, err)
	}
	user.CreatedAt = parsed
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
