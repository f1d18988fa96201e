package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/tether/internal/ports/secondary"
)

// TicketRepository implements secondary.TicketRepository with SQLite.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new SQLite ticket repository.
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create persists a new ticket.
func (r *TicketRepository) Create(ctx context.Context, ticket *secondary.TicketRecord) error {
	column := ticket.ColumnName
	if column == "" {
		column = "backlog"
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (id, repo, display_id, title, body, column_name, pinned) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ticket.ID,
		ticket.Repo,
		ticket.DisplayID,
		ticket.Title,
		ticket.Body,
		column,
		boolToInt(ticket.Pinned),
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	return nil
}

// GetByID retrieves a ticket by its opaque primary key.
func (r *TicketRepository) GetByID(ctx context.Context, id string) (*secondary.TicketRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, repo, display_id, title, body, column_name, pinned, created_at, updated_at FROM tickets WHERE id = ?`,
		id,
	)

	record, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ticket %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return record, nil
}

// GetByDisplayID retrieves a ticket by its repo-scoped display id.
func (r *TicketRepository) GetByDisplayID(ctx context.Context, repo, displayID string) (*secondary.TicketRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, repo, display_id, title, body, column_name, pinned, created_at, updated_at FROM tickets WHERE repo = ? AND display_id = ?`,
		repo, displayID,
	)

	record, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ticket %s in repo %s: %w", displayID, repo, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return record, nil
}

// List retrieves tickets matching the given filters.
func (r *TicketRepository) List(ctx context.Context, filters secondary.TicketFilters) ([]*secondary.TicketRecord, error) {
	query := `SELECT id, repo, display_id, title, body, column_name, pinned, created_at, updated_at FROM tickets WHERE 1=1`
	args := []any{}

	if filters.Repo != "" {
		query += " AND repo = ?"
		args = append(args, filters.Repo)
	}
	if filters.Column != "" {
		query += " AND column_name = ?"
		args = append(args, filters.Column)
	}

	query += " ORDER BY pinned DESC, created_at DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*secondary.TicketRecord
	for rows.Next() {
		record, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, record)
	}

	return tickets, rows.Err()
}

// UpdateBody replaces a ticket's title and body.
func (r *TicketRepository) UpdateBody(ctx context.Context, id, title, body string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET title = ?, body = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, body, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("ticket %s: %w", id, secondary.ErrNotFound)
	}

	return nil
}

// MoveColumn moves a ticket to a workflow column.
func (r *TicketRepository) MoveColumn(ctx context.Context, id, column string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET column_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		column, id,
	)
	if err != nil {
		return fmt.Errorf("failed to move ticket: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("ticket %s: %w", id, secondary.ErrNotFound)
	}

	return nil
}

// NextDisplayID returns the next available display id for a repo,
// formatted TICK-NNN.
func (r *TicketRepository) NextDisplayID(ctx context.Context, repo string) (string, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE repo = ?`,
		repo,
	).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("failed to count tickets: %w", err)
	}

	return fmt.Sprintf("TICK-%03d", count+1), nil
}

func scanTicket(row rowScanner) (*secondary.TicketRecord, error) {
	var (
		body      sql.NullString
		pinnedInt int
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.TicketRecord{}
	err := row.Scan(
		&record.ID,
		&record.Repo,
		&record.DisplayID,
		&record.Title,
		&body,
		&record.ColumnName,
		&pinnedInt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Body = body.String
	record.Pinned = pinnedInt == 1
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	return record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
