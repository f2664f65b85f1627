package migration

import (
	"context"
	"time"
)

// Migration is one schema file with its metadata.
type Migration struct {
	Version     string
	Description string
	SQL         string
	Path        string
	Checksum    string
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status summarises the schema state of a database.
type Status struct {
	CurrentVersion string
	Applied        []AppliedMigration
	Pending        []Migration
}

// Source lists the migrations available to a Manager.
type Source interface {
	Scan() ([]Migration, error)
}

// Executor runs migrations against a database.
type Executor interface {
	InitializeVersionTable(ctx context.Context) error
	Apply(ctx context.Context, m Migration, appliedAt time.Time) (time.Duration, error)
	AppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}
