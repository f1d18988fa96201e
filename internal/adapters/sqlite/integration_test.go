package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/tether/internal/adapters/sqlite"
	"github.com/example/tether/internal/ports/secondary"
)

// Integration tests verify cross-repository workflows and constraints.

// ============================================================================
// Ticket Lifecycle Tests
// ============================================================================

func TestIntegration_TicketWithArtifactsAndReceipts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ticketRepo := sqlite.NewTicketRepository(db)
	artifactRepo := sqlite.NewArtifactRepository(db)
	receiptRepo := sqlite.NewReceiptRepository(db)

	ticket := &secondary.TicketRecord{
		ID:        "ticket-001",
		Repo:      "acme/api",
		DisplayID: "TICK-001",
		Title:     "Add rate limiting",
		Body:      "Requests must be throttled per client.",
	}
	if err := ticketRepo.Create(ctx, ticket); err != nil {
		t.Fatalf("Create ticket failed: %v", err)
	}

	plan := &secondary.ArtifactRecord{
		ID:            "art-001",
		TicketID:      "ticket-001",
		AgentCategory: "implementer",
		ArtifactType:  "plan",
		Title:         "Plan",
		Body:          "Token bucket per client key, persisted counters.",
	}
	worklog := &secondary.ArtifactRecord{
		ID:            "art-002",
		TicketID:      "ticket-001",
		AgentCategory: "implementer",
		ArtifactType:  "worklog",
		Title:         "Worklog",
		Body:          "Implemented the bucket and wired the middleware.",
	}
	if err := artifactRepo.Create(ctx, plan); err != nil {
		t.Fatalf("Create plan artifact failed: %v", err)
	}
	if err := artifactRepo.Create(ctx, worklog); err != nil {
		t.Fatalf("Create worklog artifact failed: %v", err)
	}

	artifacts, err := artifactRepo.ListByTicket(ctx, "ticket-001")
	if err != nil {
		t.Fatalf("ListByTicket failed: %v", err)
	}
	if len(artifacts) != 2 {
		t.Errorf("expected 2 artifacts, got %d", len(artifacts))
	}

	receipt := &secondary.ReceiptRecord{
		ID:              "rcpt-001",
		Repo:            "acme/api",
		TicketID:        "ticket-001",
		Role:            "implementer",
		Version:         1,
		ContentChecksum: "aaa",
		BundleChecksum:  "bbb",
	}
	if err := receiptRepo.Create(ctx, receipt); err != nil {
		t.Fatalf("Create receipt failed: %v", err)
	}

	latest, err := receiptRepo.Latest(ctx, "acme/api", "ticket-001", "implementer")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.ID != "rcpt-001" {
		t.Errorf("expected latest receipt rcpt-001, got %s", latest.ID)
	}
}

func TestIntegration_TicketDeleteCascadesArtifacts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedTicket(t, db, "ticket-001", "", "", "")

	artifactRepo := sqlite.NewArtifactRepository(db)
	artifact := &secondary.ArtifactRecord{
		ID:            "art-001",
		TicketID:      "ticket-001",
		AgentCategory: "qa",
		ArtifactType:  "qa_report",
		Title:         "QA",
		Body:          "Report body.",
	}
	if err := artifactRepo.Create(ctx, artifact); err != nil {
		t.Fatalf("Create artifact failed: %v", err)
	}

	if _, err := db.Exec("DELETE FROM tickets WHERE id = 'ticket-001'"); err != nil {
		t.Fatalf("delete ticket failed: %v", err)
	}

	if _, err := artifactRepo.GetByID(ctx, "art-001"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected artifact gone after ticket delete, got %v", err)
	}
}

// ============================================================================
// Convergence Constraint Tests
// ============================================================================

func TestIntegration_RacingArtifactWritersConverge(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedTicket(t, db, "ticket-001", "", "", "")
	artifactRepo := sqlite.NewArtifactRepository(db)

	winner := &secondary.ArtifactRecord{
		ID:            "art-001",
		TicketID:      "ticket-001",
		AgentCategory: "implementer",
		ArtifactType:  "plan",
		Title:         "Plan",
		Body:          "First writer's plan.",
	}
	if err := artifactRepo.Create(ctx, winner); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Second writer loses the insert race and reconciles by updating
	// the surviving row.
	loser := &secondary.ArtifactRecord{
		ID:            "art-002",
		TicketID:      "ticket-001",
		AgentCategory: "implementer",
		ArtifactType:  "plan",
		Title:         "Plan",
		Body:          "Second writer's plan.",
	}
	if err := artifactRepo.Create(ctx, loser); !errors.Is(err, secondary.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	rows, err := artifactRepo.GetByIdentity(ctx, "ticket-001", "implementer", "plan")
	if err != nil {
		t.Fatalf("GetByIdentity failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 row per identity, got %d", len(rows))
	}
	if err := artifactRepo.Update(ctx, rows[0].ID, "Plan", "Second writer's plan."); err != nil {
		t.Fatalf("reconciling update failed: %v", err)
	}

	final, _ := artifactRepo.GetByID(ctx, "art-001")
	if final.Body != "Second writer's plan." {
		t.Errorf("expected reconciled body, got %q", final.Body)
	}
	if final.Revision != 2 {
		t.Errorf("expected revision 2 after reconcile, got %d", final.Revision)
	}
}

func TestIntegration_ReplayedMessageIsRejectedBySlot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	messageRepo := sqlite.NewMessageRepository(db)

	msg := &secondary.MessageRecord{
		ID:      "msg-001",
		Project: "acme",
		Thread:  "ticket-001",
		Seq:     1,
		Role:    "orchestrator",
		Content: "Begin work on the rate limiter.",
	}
	if err := messageRepo.Create(ctx, msg); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	replay := &secondary.MessageRecord{
		ID:      "msg-002",
		Project: "acme",
		Thread:  "ticket-001",
		Seq:     1,
		Role:    "orchestrator",
		Content: "Begin work on the rate limiter.",
	}
	if err := messageRepo.Create(ctx, replay); !errors.Is(err, secondary.ErrConflict) {
		t.Fatalf("expected ErrConflict on replayed seq, got %v", err)
	}

	// Only the original survives.
	thread, err := messageRepo.ListThread(ctx, "acme", "ticket-001")
	if err != nil {
		t.Fatalf("ListThread failed: %v", err)
	}
	if len(thread) != 1 || thread[0].ID != "msg-001" {
		t.Errorf("expected single original message, got %v", thread)
	}
}

// ============================================================================
// Continuity Check Flow Tests
// ============================================================================

func TestIntegration_CheckRunsAgainstReceiptBaseline(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedTicket(t, db, "ticket-001", "", "", "")
	seedReceipt(t, db, "rcpt-001", "acme/api", "ticket-001", "implementer", 1, "content-sum", "bundle-sum")

	checkRepo := sqlite.NewCheckRunRepository(db)

	pass := &secondary.CheckRunRecord{
		ID:                     "chk-001",
		ReceiptID:              "rcpt-001",
		Repo:                   "acme/api",
		TicketID:               "ticket-001",
		Role:                   "implementer",
		Verdict:                "PASS",
		RebuiltContentChecksum: "content-sum",
		RebuiltBundleChecksum:  "bundle-sum",
		Detail:                 `{"content_match":true}`,
	}
	if err := checkRepo.Create(ctx, pass); err != nil {
		t.Fatalf("Create pass run failed: %v", err)
	}

	fail := &secondary.CheckRunRecord{
		ID:                     "chk-002",
		ReceiptID:              "rcpt-001",
		Repo:                   "acme/api",
		TicketID:               "ticket-001",
		Role:                   "implementer",
		Verdict:                "FAIL",
		FailureReason:          "checksum_mismatch",
		RebuiltContentChecksum: "drifted-sum",
		RebuiltBundleChecksum:  "drifted-sum",
		Detail:                 `{"content_match":false}`,
	}
	if err := checkRepo.Create(ctx, fail); err != nil {
		t.Fatalf("Create fail run failed: %v", err)
	}

	runs, err := checkRepo.List(ctx, secondary.CheckRunFilters{ReceiptID: "rcpt-001"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Most recent first.
	if runs[0].ID != "chk-002" {
		t.Errorf("expected chk-002 first, got %s", runs[0].ID)
	}
}

func TestIntegration_ReceiptVersionsAreMonotonic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedTicket(t, db, "ticket-001", "", "", "")
	receiptRepo := sqlite.NewReceiptRepository(db)

	for v := 1; v <= 3; v++ {
		next, err := receiptRepo.NextVersion(ctx, "acme/api", "ticket-001", "implementer")
		if err != nil {
			t.Fatalf("NextVersion failed: %v", err)
		}
		if next != v {
			t.Fatalf("expected next version %d, got %d", v, next)
		}
		receipt := &secondary.ReceiptRecord{
			ID:              fmt.Sprintf("rcpt-%03d", v),
			Repo:            "acme/api",
			TicketID:        "ticket-001",
			Role:            "implementer",
			Version:         next,
			ContentChecksum: "c",
			BundleChecksum:  "b",
		}
		if err := receiptRepo.Create(ctx, receipt); err != nil {
			t.Fatalf("Create receipt v%d failed: %v", v, err)
		}
	}

	latest, err := receiptRepo.Latest(ctx, "acme/api", "ticket-001", "implementer")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.Version != 3 {
		t.Errorf("expected latest version 3, got %d", latest.Version)
	}
}
