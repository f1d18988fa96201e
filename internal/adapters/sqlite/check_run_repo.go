package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tether/internal/ports/secondary"
)

// CheckRunRepository implements secondary.CheckRunRepository with
// SQLite. Check runs are append-only; no update or delete path exists.
type CheckRunRepository struct {
	db *sql.DB
}

// NewCheckRunRepository creates a new SQLite check run repository.
func NewCheckRunRepository(db *sql.DB) *CheckRunRepository {
	return &CheckRunRepository{db: db}
}

// Create persists a new check run.
func (r *CheckRunRepository) Create(ctx context.Context, run *secondary.CheckRunRecord) error {
	var receiptID, failureReason, rebuiltContent, rebuiltBundle, detail sql.NullString
	if run.ReceiptID != "" {
		receiptID = sql.NullString{String: run.ReceiptID, Valid: true}
	}
	if run.FailureReason != "" {
		failureReason = sql.NullString{String: run.FailureReason, Valid: true}
	}
	if run.RebuiltContentChecksum != "" {
		rebuiltContent = sql.NullString{String: run.RebuiltContentChecksum, Valid: true}
	}
	if run.RebuiltBundleChecksum != "" {
		rebuiltBundle = sql.NullString{String: run.RebuiltBundleChecksum, Valid: true}
	}
	if run.Detail != "" {
		detail = sql.NullString{String: run.Detail, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO continuity_checks (id, receipt_id, repo, ticket_id, role, verdict, failure_reason, rebuilt_content_checksum, rebuilt_bundle_checksum, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		receiptID,
		run.Repo,
		run.TicketID,
		run.Role,
		run.Verdict,
		failureReason,
		rebuiltContent,
		rebuiltBundle,
		detail,
	)
	if err != nil {
		return fmt.Errorf("failed to create check run: %w", err)
	}

	return nil
}

// GetByID retrieves a check run by its ID.
func (r *CheckRunRepository) GetByID(ctx context.Context, id string) (*secondary.CheckRunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, receipt_id, repo, ticket_id, role, verdict, failure_reason, rebuilt_content_checksum, rebuilt_bundle_checksum, detail, created_at
		 FROM continuity_checks WHERE id = ?`,
		id,
	)

	record, err := scanCheckRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("check run %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check run: %w", err)
	}

	return record, nil
}

// List retrieves check runs matching the given filters, most recent
// first.
func (r *CheckRunRepository) List(ctx context.Context, filters secondary.CheckRunFilters) ([]*secondary.CheckRunRecord, error) {
	query := `SELECT id, receipt_id, repo, ticket_id, role, verdict, failure_reason, rebuilt_content_checksum, rebuilt_bundle_checksum, detail, created_at
	          FROM continuity_checks WHERE 1=1`
	args := []any{}

	if filters.ReceiptID != "" {
		query += " AND receipt_id = ?"
		args = append(args, filters.ReceiptID)
	}
	if filters.Repo != "" {
		query += " AND repo = ?"
		args = append(args, filters.Repo)
	}
	if filters.TicketID != "" {
		query += " AND ticket_id = ?"
		args = append(args, filters.TicketID)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list check runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.CheckRunRecord
	for rows.Next() {
		record, err := scanCheckRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check run: %w", err)
		}
		runs = append(runs, record)
	}

	return runs, rows.Err()
}

func scanCheckRun(row rowScanner) (*secondary.CheckRunRecord, error) {
	var (
		receiptID      sql.NullString
		failureReason  sql.NullString
		rebuiltContent sql.NullString
		rebuiltBundle  sql.NullString
		detail         sql.NullString
		createdAt      time.Time
	)

	record := &secondary.CheckRunRecord{}
	err := row.Scan(
		&record.ID,
		&receiptID,
		&record.Repo,
		&record.TicketID,
		&record.Role,
		&record.Verdict,
		&failureReason,
		&rebuiltContent,
		&rebuiltBundle,
		&detail,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.ReceiptID = receiptID.String
	record.FailureReason = failureReason.String
	record.RebuiltContentChecksum = rebuiltContent.String
	record.RebuiltBundleChecksum = rebuiltBundle.String
	record.Detail = detail.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}
