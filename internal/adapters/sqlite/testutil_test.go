package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/example/tether/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative
// schema from schema.go. Tests never hardcode CREATE TABLE statements;
// drift between repository code and schema fails immediately with
// "no such column".
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedTicket inserts a test ticket and returns its ID.
func seedTicket(t *testing.T, db *sql.DB, id, repo, displayID, title string) string {
	t.Helper()
	if id == "" {
		id = "ticket-001"
	}
	if repo == "" {
		repo = "acme/api"
	}
	if displayID == "" {
		displayID = "TICK-001"
	}
	if title == "" {
		title = "Test Ticket"
	}
	_, err := db.Exec(
		"INSERT INTO tickets (id, repo, display_id, title, body) VALUES (?, ?, ?, ?, 'Ticket body.')",
		id, repo, displayID, title,
	)
	if err != nil {
		t.Fatalf("failed to seed ticket: %v", err)
	}
	return id
}

// seedReceipt inserts a bundle receipt and returns its ID.
func seedReceipt(t *testing.T, db *sql.DB, id, repo, ticketID, role string, version int, contentChecksum, bundleChecksum string) string {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO bundle_receipts (id, repo, ticket_id, role, version, content_checksum, bundle_checksum)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, repo, ticketID, role, version, contentChecksum, bundleChecksum,
	)
	if err != nil {
		t.Fatalf("failed to seed receipt: %v", err)
	}
	return id
}
