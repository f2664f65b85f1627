package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const versionTableDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(32) PRIMARY KEY,
	applied_at VARCHAR(40) NOT NULL,
	checksum VARCHAR(64) NOT NULL DEFAULT '',
	execution_time_ms BIGINT NOT NULL DEFAULT 0
)`

// SQLExecutor applies migrations through database/sql. The rebind function
// rewrites ? placeholders for drivers that use another bind style.
type SQLExecutor struct {
	db     *sql.DB
	rebind func(string) string
}

// NewExecutor returns an executor for db. A nil rebind leaves queries untouched.
func NewExecutor(db *sql.DB, rebind func(string) string) *SQLExecutor {
	if rebind == nil {
		rebind = func(q string) string { return q }
	}
	return &SQLExecutor{db: db, rebind: rebind}
}

// InitializeVersionTable creates schema_migrations when missing.
func (e *SQLExecutor) InitializeVersionTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, versionTableDDL); err != nil {
		return newError("", "schema_migrations", "create version table", err)
	}
	return nil
}

// Apply runs every statement of m and records it in one transaction.
func (e *SQLExecutor) Apply(ctx context.Context, m Migration, appliedAt time.Time) (elapsed time.Duration, err error) {
	statements := SplitStatements(m.SQL)
	if len(statements) == 0 {
		return 0, newError(m.Version, m.Path, "parse", fmt.Errorf("%w: no SQL statements", ErrInvalidMigrationFile))
	}

	start := time.Now()
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, newError(m.Version, m.Path, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return 0, newError(m.Version, m.Path, fmt.Sprintf("execute statement %d", i+1), err)
		}
	}

	elapsed = time.Since(start)
	insert := e.rebind(`INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`)
	if _, err = tx.ExecContext(ctx, insert, m.Version, appliedAt.UTC().Format(time.RFC3339), m.Checksum, elapsed.Milliseconds()); err != nil {
		return 0, newError(m.Version, m.Path, "record migration", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, newError(m.Version, m.Path, "commit", err)
	}
	return elapsed, nil
}

// AppliedVersions lists recorded migrations in version order.
func (e *SQLExecutor) AppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT version, applied_at, checksum, execution_time_ms FROM schema_migrations`)
	if err != nil {
		return nil, newError("", "schema_migrations", "query applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			rec       AppliedMigration
			appliedAt string
			millis    int64
		)
		if err := rows.Scan(&rec.Version, &appliedAt, &rec.Checksum, &millis); err != nil {
			return nil, newError("", "schema_migrations", "scan applied version", fmt.Errorf("%w: %v", ErrVersionTableCorrupt, err))
		}
		if rec.AppliedAt, err = time.Parse(time.RFC3339, appliedAt); err != nil {
			return nil, newError(rec.Version, "schema_migrations", "parse applied_at", fmt.Errorf("%w: %v", ErrVersionTableCorrupt, err))
		}
		rec.ExecutionTime = time.Duration(millis) * time.Millisecond
		applied = append(applied, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, newError("", "schema_migrations", "iterate applied versions", err)
	}
	sortApplied(applied)
	return applied, nil
}
