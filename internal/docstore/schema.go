package docstore

import (
	"database/sql"
	"fmt"
	"time"
)

// currentSchemaVersion is the current database schema version.
// Increment this when making schema changes and add a migration.
const currentSchemaVersion = 2

// initSchema creates the schema_version table and applies pending migrations.
func (s *SQLite) initSchema() error {
	const schemaVersionTable = `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("check schema version: %w", err)
	}

	migrations := []func(*sql.Tx) error{
		migrateToV1,
		migrateToV2,
	}

	for i := version; i < len(migrations); i++ {
		if err := s.migrate(i+1, migrations[i]); err != nil {
			return fmt.Errorf("migrate to v%d: %w", i+1, err)
		}
	}

	return nil
}

func (s *SQLite) migrate(version int, fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
		version, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	s.logger.Debug().Int("version", version).Msg("applied migration")
	return tx.Commit()
}

// migrateToV1 creates the products table. Documents are stored as JSON; the
// indexed columns are copies used for filtering and ordering.
func migrateToV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE products (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			doc        TEXT NOT NULL
		);
		CREATE INDEX idx_products_created_at ON products (created_at DESC);
	`)
	return err
}

// migrateToV2 creates the users table with a unique email.
func migrateToV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE users (
			id    TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			doc   TEXT NOT NULL
		);
	`)
	return err
}
