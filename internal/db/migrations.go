package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_tickets_artifacts_messages",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_bundle_receipts_and_continuity_checks",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "enforce_unique_artifact_identity",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "add_revision_to_artifacts",
		Up:      migrationV4,
	},
}

// LatestSchemaVersion returns the highest migration version known to
// this binary.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].Version
}

// CurrentSchemaVersion returns the schema version recorded in the
// database, or 0 when no migrations have been applied.
func CurrentSchemaVersion() (int, error) {
	db, err := GetDB()
	if err != nil {
		return 0, fmt.Errorf("failed to get database: %w", err)
	}

	var version int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

// RunMigrations applies any pending migrations in version order.
func RunMigrations() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d: %s\n", migration.Version, migration.Name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(db); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Printf("✓ Migration %d completed\n", migration.Version)
	}

	return nil
}

// migrationV1 creates the original tickets/artifacts/messages tables.
func migrationV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tickets (
			id TEXT PRIMARY KEY,
			repo TEXT NOT NULL,
			display_id TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT,
			column_name TEXT NOT NULL CHECK(column_name IN ('backlog', 'in_progress', 'review', 'done')) DEFAULT 'backlog',
			pinned INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(repo, display_id)
		);

		CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			ticket_id TEXT NOT NULL,
			agent_category TEXT NOT NULL,
			artifact_type TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (ticket_id) REFERENCES tickets(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			project TEXT NOT NULL,
			thread TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(project, thread, seq)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create initial tables: %w", err)
	}
	return nil
}

// migrationV2 adds the continuity-check tables.
func migrationV2(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bundle_receipts (
			id TEXT PRIMARY KEY,
			repo TEXT NOT NULL,
			ticket_id TEXT NOT NULL,
			role TEXT NOT NULL,
			version INTEGER NOT NULL,
			content_checksum TEXT NOT NULL,
			bundle_checksum TEXT NOT NULL,
			requirements_doc_id TEXT,
			requirements_version INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (ticket_id) REFERENCES tickets(id) ON DELETE CASCADE,
			UNIQUE(repo, ticket_id, role, version)
		);

		CREATE TABLE IF NOT EXISTS continuity_checks (
			id TEXT PRIMARY KEY,
			receipt_id TEXT,
			repo TEXT NOT NULL,
			ticket_id TEXT NOT NULL,
			role TEXT NOT NULL,
			verdict TEXT NOT NULL CHECK(verdict IN ('PASS', 'FAIL')),
			failure_reason TEXT,
			rebuilt_content_checksum TEXT,
			rebuilt_bundle_checksum TEXT,
			detail TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (receipt_id) REFERENCES bundle_receipts(id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create continuity tables: %w", err)
	}
	return nil
}

// migrationV3 deduplicates artifacts and adds the canonical-identity
// unique index. Keeps the most recently updated non-blank row per
// identity; blank shells and older duplicates are dropped.
func migrationV3(db *sql.DB) error {
	_, err := db.Exec(`
		DELETE FROM artifacts WHERE TRIM(body) = '';

		DELETE FROM artifacts WHERE id NOT IN (
			SELECT id FROM artifacts a
			WHERE a.updated_at = (
				SELECT MAX(b.updated_at) FROM artifacts b
				WHERE b.ticket_id = a.ticket_id
				  AND b.agent_category = a.agent_category
				  AND b.artifact_type = a.artifact_type
			)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_artifacts_identity
			ON artifacts(ticket_id, agent_category, artifact_type);

		CREATE INDEX IF NOT EXISTS idx_artifacts_ticket ON artifacts(ticket_id);
		CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(project, thread, seq);
		CREATE INDEX IF NOT EXISTS idx_receipts_target ON bundle_receipts(repo, ticket_id, role, version);
		CREATE INDEX IF NOT EXISTS idx_checks_recency ON continuity_checks(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to enforce artifact identity uniqueness: %w", err)
	}
	return nil
}

// migrationV4 adds the revision counter used for upstream-reference
// version binding in bundle receipts.
func migrationV4(db *sql.DB) error {
	_, err := db.Exec(`ALTER TABLE artifacts ADD COLUMN revision INTEGER NOT NULL DEFAULT 1`)
	if err != nil {
		return fmt.Errorf("failed to add revision column: %w", err)
	}
	return nil
}
