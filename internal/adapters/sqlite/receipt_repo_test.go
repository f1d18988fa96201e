package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/example/tether/internal/adapters/sqlite"
	"github.com/example/tether/internal/ports/secondary"
)

func setupReceiptTestDB(t *testing.T) *sql.DB {
	t.Helper()
	testDB := setupTestDB(t)
	seedTicket(t, testDB, "ticket-001", "acme/api", "TICK-001", "")
	return testDB
}

func TestReceiptRepository_CreateAndGet(t *testing.T) {
	db := setupReceiptTestDB(t)
	repo := sqlite.NewReceiptRepository(db)
	ctx := context.Background()

	receipt := &secondary.ReceiptRecord{
		ID:                  "rcpt-001",
		Repo:                "acme/api",
		TicketID:            "ticket-001",
		Role:                "implementer",
		Version:             1,
		ContentChecksum:     "c1",
		BundleChecksum:      "b1",
		RequirementsDocID:   "REQ-9",
		RequirementsVersion: 2,
	}

	if err := repo.Create(ctx, receipt); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, "rcpt-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.ContentChecksum != "c1" || retrieved.BundleChecksum != "b1" {
		t.Errorf("checksums did not round-trip: %+v", retrieved)
	}
	if retrieved.RequirementsDocID != "REQ-9" || retrieved.RequirementsVersion != 2 {
		t.Errorf("requirements ref did not round-trip: %+v", retrieved)
	}
}

func TestReceiptRepository_NullRequirementsRef(t *testing.T) {
	db := setupReceiptTestDB(t)
	repo := sqlite.NewReceiptRepository(db)
	ctx := context.Background()

	receipt := &secondary.ReceiptRecord{
		ID:              "rcpt-001",
		Repo:            "acme/api",
		TicketID:        "ticket-001",
		Role:            "implementer",
		Version:         1,
		ContentChecksum: "c1",
		BundleChecksum:  "b1",
	}
	if err := repo.Create(ctx, receipt); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, "rcpt-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.RequirementsDocID != "" || retrieved.RequirementsVersion != 0 {
		t.Errorf("expected empty requirements ref, got %+v", retrieved)
	}
}

func TestReceiptRepository_Latest(t *testing.T) {
	db := setupReceiptTestDB(t)
	repo := sqlite.NewReceiptRepository(db)
	ctx := context.Background()

	for v := 1; v <= 3; v++ {
		receipt := &secondary.ReceiptRecord{
			ID:              "rcpt-00" + string(rune('0'+v)),
			Repo:            "acme/api",
			TicketID:        "ticket-001",
			Role:            "implementer",
			Version:         v,
			ContentChecksum: "c",
			BundleChecksum:  "b",
		}
		if err := repo.Create(ctx, receipt); err != nil {
			t.Fatalf("Create v%d failed: %v", v, err)
		}
	}

	latest, err := repo.Latest(ctx, "acme/api", "ticket-001", "implementer")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.Version != 3 {
		t.Errorf("expected version 3, got %d", latest.Version)
	}

	_, err = repo.Latest(ctx, "acme/api", "ticket-001", "qa")
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown role, got %v", err)
	}
}

func TestReceiptRepository_NextVersion(t *testing.T) {
	db := setupReceiptTestDB(t)
	repo := sqlite.NewReceiptRepository(db)
	ctx := context.Background()

	v, err := repo.NextVersion(ctx, "acme/api", "ticket-001", "implementer")
	if err != nil {
		t.Fatalf("NextVersion failed: %v", err)
	}
	if v != 1 {
		t.Errorf("expected first version 1, got %d", v)
	}

	seedReceipt(t, db, "rcpt-001", "acme/api", "ticket-001", "implementer", 4, "c", "b")

	v, err = repo.NextVersion(ctx, "acme/api", "ticket-001", "implementer")
	if err != nil {
		t.Fatalf("NextVersion failed: %v", err)
	}
	if v != 5 {
		t.Errorf("expected next version 5, got %d", v)
	}
}

func TestReceiptRepository_ListFiltersAndLimit(t *testing.T) {
	db := setupReceiptTestDB(t)
	repo := sqlite.NewReceiptRepository(db)
	ctx := context.Background()

	seedTicket(t, db, "ticket-002", "acme/api", "TICK-002", "Other")
	seedReceipt(t, db, "rcpt-001", "acme/api", "ticket-001", "implementer", 1, "c", "b")
	seedReceipt(t, db, "rcpt-002", "acme/api", "ticket-001", "implementer", 2, "c", "b")
	seedReceipt(t, db, "rcpt-003", "acme/api", "ticket-002", "qa", 1, "c", "b")

	byTicket, err := repo.List(ctx, secondary.ReceiptFilters{TicketID: "ticket-001"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(byTicket) != 2 {
		t.Errorf("expected 2 receipts for ticket-001, got %d", len(byTicket))
	}

	limited, err := repo.List(ctx, secondary.ReceiptFilters{Repo: "acme/api", Limit: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}
