package migration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"
)

// Manager brings a database up to the latest migration version.
type Manager struct {
	source   Source
	executor Executor
	logger   *slog.Logger
	now      func() time.Time
}

// NewManager wires a source and executor. A nil logger discards output.
func NewManager(source Source, executor Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{source: source, executor: executor, logger: logger, now: time.Now}
}

// Run applies every pending migration in version order and stops at the first failure.
func (m *Manager) Run(ctx context.Context) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if len(status.Pending) == 0 {
		m.logger.InfoContext(ctx, "database schema up to date", "version", status.CurrentVersion)
		return nil
	}

	m.logger.InfoContext(ctx, "applying migrations",
		"current_version", status.CurrentVersion,
		"pending", len(status.Pending))

	for _, mig := range status.Pending {
		elapsed, err := m.executor.Apply(ctx, mig, m.now())
		if err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", mig.Version, "path", mig.Path, "error", err)
			return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
		}
		m.logger.InfoContext(ctx, "migration applied",
			"version", mig.Version,
			"description", mig.Description,
			"duration_ms", elapsed.Milliseconds())
	}
	return nil
}

// Status reports applied and pending migrations without changing the schema
// beyond creating the version table.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}
	available, err := m.source.Scan()
	if err != nil {
		return Status{}, err
	}
	applied, err := m.executor.AppliedVersions(ctx)
	if err != nil {
		return Status{}, err
	}
	if err := m.validate(ctx, available, applied); err != nil {
		return Status{}, err
	}

	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}
	status := Status{Applied: applied}
	for _, mig := range available {
		if !done[mig.Version] {
			status.Pending = append(status.Pending, mig)
		}
	}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}
	return status, nil
}

func (m *Manager) validate(ctx context.Context, available []Migration, applied []AppliedMigration) error {
	files := make(map[string]Migration, len(available))
	for i, mig := range available {
		files[mig.Version] = mig
		if i > 0 && versionNumber(mig.Version) != versionNumber(available[i-1].Version)+1 {
			return fmt.Errorf("%w: gap between %s and %s", ErrVersionConflict, available[i-1].Version, mig.Version)
		}
	}
	for _, a := range applied {
		mig, ok := files[a.Version]
		if !ok {
			return fmt.Errorf("%w: applied migration %s has no file", ErrVersionConflict, a.Version)
		}
		if a.Checksum != "" && a.Checksum != mig.Checksum {
			m.logger.WarnContext(ctx, "migration file changed after it was applied", "version", a.Version, "path", mig.Path)
		}
	}
	return nil
}

func sortApplied(applied []AppliedMigration) {
	sort.Slice(applied, func(i, j int) bool {
		return versionNumber(applied[i].Version) < versionNumber(applied[j].Version)
	})
}
