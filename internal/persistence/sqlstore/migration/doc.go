// Package migration applies versioned schema files to a database/sql handle.
//
// Files are read from an fs.FS (usually an embed.FS) and must be named
// {version}_{description}.sql, for example "001_create_users.sql". Applied
// versions are tracked in a schema_migrations table; each file runs inside
// its own transaction together with its bookkeeping row.
//
//	manager := migration.NewManager(migration.NewScanner(files, "migrations/sqlite"), migration.NewExecutor(db, nil), logger)
//	if err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
