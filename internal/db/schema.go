package db

// SchemaSQL is the complete schema for fresh tether installs. This is
// the single source of truth: tests build their in-memory databases
// from GetSchemaSQL() rather than hardcoding CREATE TABLE statements,
// so any drift between repository code and schema fails immediately
// with "no such column".
//
// The unique indexes here are load-bearing. Idempotency and concurrent
// convergence rest on the store's uniqueness constraints, not on
// application-level locks:
//
//   - artifacts(ticket_id, agent_category, artifact_type) — one valid
//     artifact per canonical identity; racing writers lose the insert
//     and reconcile via update.
//   - messages(project, thread, seq) — replayed sends collapse into
//     silent no-ops.
//
// Keep this in sync with the migrations list in migrations.go.
const SchemaSQL = `
-- Tickets (units of work, scoped to a repository)
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

-- Artifacts (agent-produced output attached to tickets)
CREATE TABLE IF NOT EXISTS artifacts (
	id TEXT PRIMARY KEY,
	ticket_id TEXT NOT NULL,
	agent_category TEXT NOT NULL,
	artifact_type TEXT NOT NULL,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	revision INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (ticket_id) REFERENCES tickets(id) ON DELETE CASCADE,
	UNIQUE(ticket_id, agent_category, artifact_type)
);

-- Conversation messages (append-only, per-thread sequencing)
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

-- Bundle receipts (immutable baselines for continuity checks)
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

-- Continuity check runs (append-only, one row per execution)
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

CREATE INDEX IF NOT EXISTS idx_artifacts_ticket ON artifacts(ticket_id);
CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(project, thread, seq);
CREATE INDEX IF NOT EXISTS idx_receipts_target ON bundle_receipts(repo, ticket_id, role, version);
CREATE INDEX IF NOT EXISTS idx_checks_recency ON continuity_checks(created_at);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}

// InitSchema creates the schema on a fresh install or runs pending
// migrations on an existing one.
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		// Fresh install: create the modern schema directly and mark
		// every migration as applied so they never run.
		if _, err = db.Exec(SchemaSQL); err != nil {
			return err
		}
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return err
		}
		for _, m := range migrations {
			if _, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return err
			}
		}
		return nil
	}

	return RunMigrations()
}
