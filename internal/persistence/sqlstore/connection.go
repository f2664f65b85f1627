package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/example/room-booking/internal/persistence"
)

// PoolConfig carries the database/sql pool settings.
type PoolConfig struct {
	Dialect         Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConnectionPool owns the *sql.DB for one dialect.
type ConnectionPool struct {
	db      *sql.DB
	dialect Dialect
}

// NewConnectionPool opens and pings the database described by cfg.
func NewConnectionPool(ctx context.Context, cfg PoolConfig) (*ConnectionPool, error) {
	dsn, err := prepareDSN(cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.Dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Dialect, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Dialect, err)
	}
	return &ConnectionPool{db: db, dialect: cfg.Dialect}, nil
}

// prepareDSN adjusts driver options the repositories rely on. MySQL must
// report matched rather than changed rows so that idempotent updates are not
// mistaken for missing records.
func prepareDSN(d Dialect, dsn string) (string, error) {
	if d != MySQL {
		return dsn, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// DB returns the underlying handle.
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Dialect reports the backend of the pool.
func (cp *ConnectionPool) Dialect() Dialect {
	return cp.dialect
}

// Close releases every connection.
func (cp *ConnectionPool) Close() error {
	if cp == nil || cp.db == nil {
		return nil
	}
	return cp.db.Close()
}

// Ping checks that the database is reachable.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// WithTransaction runs fn inside a transaction, committing when it returns nil.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// QueryHelper rebinds ? placeholders before delegating to database/sql.
type QueryHelper struct {
	pool *ConnectionPool
}

// NewQueryHelper wraps pool.
func NewQueryHelper(pool *ConnectionPool) *QueryHelper {
	return &QueryHelper{pool: pool}
}

func (qh *QueryHelper) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return qh.pool.db.QueryRowContext(ctx, qh.pool.dialect.Rebind(query), args...)
}

func (qh *QueryHelper) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return qh.pool.db.QueryContext(ctx, qh.pool.dialect.Rebind(query), args...)
}

func (qh *QueryHelper) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return qh.pool.db.ExecContext(ctx, qh.pool.dialect.Rebind(query), args...)
}

// ExecTx is Exec on tx.
func (qh *QueryHelper) ExecTx(ctx context.Context, tx *sql.Tx, query string, args ...any) (sql.Result, error) {
	return tx.ExecContext(ctx, qh.pool.dialect.Rebind(query), args...)
}

// Insert executes an INSERT and returns the generated id. For Postgres the
// statement gets a RETURNING clause on idColumn.
func (qh *QueryHelper) Insert(ctx context.Context, idColumn, query string, args ...any) (int64, error) {
	if qh.pool.dialect.usesReturning() {
		var id int64
		err := qh.QueryRow(ctx, query+" RETURNING "+idColumn, args...).Scan(&id)
		return id, err
	}
	res, err := qh.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ErrorMapper translates driver errors into persistence sentinels.
type ErrorMapper struct {
	dialect Dialect
}

// NewErrorMapper returns a mapper for d.
func NewErrorMapper(d Dialect) *ErrorMapper {
	return &ErrorMapper{dialect: d}
}

// MapError returns ErrNotFound, ErrConflict, or ErrConstraintViolation when
// err matches, otherwise err unchanged.
func (em *ErrorMapper) MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return persistence.ErrNotFound
	case em.dialect.isUniqueViolation(err):
		return fmt.Errorf("%w: %v", persistence.ErrConflict, err)
	case em.dialect.isForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	default:
		return err
	}
}
