package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed reports that a migration could not be applied.
	ErrMigrationFailed = errors.New("migration execution failed")
	// ErrInvalidMigrationFile reports a malformed migration file name or body.
	ErrInvalidMigrationFile = errors.New("invalid migration file format")
	// ErrVersionConflict reports an applied version with no matching file, or a gap in the sequence.
	ErrVersionConflict = errors.New("migration version conflict")
	// ErrDuplicateVersion reports two files sharing one version number.
	ErrDuplicateVersion = errors.New("duplicate migration version")
	// ErrVersionTableCorrupt reports unreadable rows in schema_migrations.
	ErrVersionTableCorrupt = errors.New("schema_migrations table is corrupted")
)

// Error attaches the version and file to a migration failure.
type Error struct {
	Version   string
	Path      string
	Operation string
	Err       error
}

func (e *Error) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.Path, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration (%s): %s: %v", e.Path, e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(version, path, operation string, err error) *Error {
	return &Error{Version: version, Path: path, Operation: operation, Err: err}
}
