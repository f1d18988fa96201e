package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tether/internal/ports/secondary"
)

// ReceiptRepository implements secondary.ReceiptRepository with SQLite.
type ReceiptRepository struct {
	db *sql.DB
}

// NewReceiptRepository creates a new SQLite receipt repository.
func NewReceiptRepository(db *sql.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create persists a new receipt. Receipts are immutable; there is no
// update path.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *secondary.ReceiptRecord) error {
	var reqDocID sql.NullString
	var reqVersion sql.NullInt64
	if receipt.RequirementsDocID != "" {
		reqDocID = sql.NullString{String: receipt.RequirementsDocID, Valid: true}
		reqVersion = sql.NullInt64{Int64: int64(receipt.RequirementsVersion), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bundle_receipts (id, repo, ticket_id, role, version, content_checksum, bundle_checksum, requirements_doc_id, requirements_version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID,
		receipt.Repo,
		receipt.TicketID,
		receipt.Role,
		receipt.Version,
		receipt.ContentChecksum,
		receipt.BundleChecksum,
		reqDocID,
		reqVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	return nil
}

// GetByID retrieves a receipt by its ID.
func (r *ReceiptRepository) GetByID(ctx context.Context, id string) (*secondary.ReceiptRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, repo, ticket_id, role, version, content_checksum, bundle_checksum, requirements_doc_id, requirements_version, created_at
		 FROM bundle_receipts WHERE id = ?`,
		id,
	)

	record, err := scanReceipt(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("receipt %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	return record, nil
}

// Latest retrieves the most recent receipt for a (repo, ticket, role)
// target.
func (r *ReceiptRepository) Latest(ctx context.Context, repo, ticketID, role string) (*secondary.ReceiptRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, repo, ticket_id, role, version, content_checksum, bundle_checksum, requirements_doc_id, requirements_version, created_at
		 FROM bundle_receipts
		 WHERE repo = ? AND ticket_id = ? AND role = ?
		 ORDER BY version DESC
		 LIMIT 1`,
		repo, ticketID, role,
	)

	record, err := scanReceipt(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("receipt for %s/%s/%s: %w", repo, ticketID, role, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest receipt: %w", err)
	}

	return record, nil
}

// List retrieves receipts matching the given filters, most recent
// first.
func (r *ReceiptRepository) List(ctx context.Context, filters secondary.ReceiptFilters) ([]*secondary.ReceiptRecord, error) {
	query := `SELECT id, repo, ticket_id, role, version, content_checksum, bundle_checksum, requirements_doc_id, requirements_version, created_at
	          FROM bundle_receipts WHERE 1=1`
	args := []any{}

	if filters.Repo != "" {
		query += " AND repo = ?"
		args = append(args, filters.Repo)
	}
	if filters.TicketID != "" {
		query += " AND ticket_id = ?"
		args = append(args, filters.TicketID)
	}
	if filters.Role != "" {
		query += " AND role = ?"
		args = append(args, filters.Role)
	}

	query += " ORDER BY created_at DESC, version DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*secondary.ReceiptRecord
	for rows.Next() {
		record, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, record)
	}

	return receipts, rows.Err()
}

// NextVersion returns the next bundle version for a target.
func (r *ReceiptRepository) NextVersion(ctx context.Context, repo, ticketID, role string) (int, error) {
	var maxVersion sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM bundle_receipts WHERE repo = ? AND ticket_id = ? AND role = ?`,
		repo, ticketID, role,
	).Scan(&maxVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to get max bundle version: %w", err)
	}

	return int(maxVersion.Int64) + 1, nil
}

func scanReceipt(row rowScanner) (*secondary.ReceiptRecord, error) {
	var (
		reqDocID   sql.NullString
		reqVersion sql.NullInt64
		createdAt  time.Time
	)

	record := &secondary.ReceiptRecord{}
	err := row.Scan(
		&record.ID,
		&record.Repo,
		&record.TicketID,
		&record.Role,
		&record.Version,
		&record.ContentChecksum,
		&record.BundleChecksum,
		&reqDocID,
		&reqVersion,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.RequirementsDocID = reqDocID.String
	record.RequirementsVersion = int(reqVersion.Int64)
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}
