package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/tether/internal/ports/secondary"
)

// ArtifactRepository implements secondary.ArtifactRepository with SQLite.
type ArtifactRepository struct {
	db *sql.DB
}

// NewArtifactRepository creates a new SQLite artifact repository.
func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Create persists a new artifact. A uniqueness violation on the
// canonical identity index surfaces as secondary.ErrConflict.
func (r *ArtifactRepository) Create(ctx context.Context, artifact *secondary.ArtifactRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, ticket_id, agent_category, artifact_type, title, body) VALUES (?, ?, ?, ?, ?, ?)`,
		artifact.ID,
		artifact.TicketID,
		artifact.AgentCategory,
		artifact.ArtifactType,
		artifact.Title,
		artifact.Body,
	)
	if err != nil {
		if errors.Is(mapConstraintErr(err), secondary.ErrConflict) {
			return secondary.ErrConflict
		}
		return fmt.Errorf("failed to create artifact: %w", err)
	}

	return nil
}

// GetByID retrieves an artifact by its ID.
func (r *ArtifactRepository) GetByID(ctx context.Context, id string) (*secondary.ArtifactRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, ticket_id, agent_category, artifact_type, title, body, revision, created_at, updated_at FROM artifacts WHERE id = ?`,
		id,
	)

	record, err := scanArtifact(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("artifact %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	return record, nil
}

// GetByIdentity retrieves all rows matching a canonical identity,
// oldest first.
func (r *ArtifactRepository) GetByIdentity(ctx context.Context, ticketID, agentCategory, artifactType string) ([]*secondary.ArtifactRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ticket_id, agent_category, artifact_type, title, body, revision, created_at, updated_at
		 FROM artifacts
		 WHERE ticket_id = ? AND agent_category = ? AND artifact_type = ?
		 ORDER BY created_at ASC`,
		ticketID, agentCategory, artifactType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts by identity: %w", err)
	}
	defer rows.Close()

	return collectArtifacts(rows)
}

// Update replaces an artifact's title and body and bumps its revision.
func (r *ArtifactRepository) Update(ctx context.Context, id, title, body string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE artifacts SET title = ?, body = ?, revision = revision + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, body, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update artifact: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("artifact %s: %w", id, secondary.ErrNotFound)
	}

	return nil
}

// Delete removes an artifact row.
func (r *ArtifactRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("artifact %s: %w", id, secondary.ErrNotFound)
	}

	return nil
}

// ListByTicket retrieves all artifacts attached to a ticket, ordered by
// category then type.
func (r *ArtifactRepository) ListByTicket(ctx context.Context, ticketID string) ([]*secondary.ArtifactRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ticket_id, agent_category, artifact_type, title, body, revision, created_at, updated_at
		 FROM artifacts
		 WHERE ticket_id = ?
		 ORDER BY agent_category ASC, artifact_type ASC`,
		ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	return collectArtifacts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*secondary.ArtifactRecord, error) {
	var (
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.ArtifactRecord{}
	err := row.Scan(
		&record.ID,
		&record.TicketID,
		&record.AgentCategory,
		&record.ArtifactType,
		&record.Title,
		&record.Body,
		&record.Revision,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	return record, nil
}

func collectArtifacts(rows *sql.Rows) ([]*secondary.ArtifactRecord, error) {
	var artifacts []*secondary.ArtifactRecord
	for rows.Next() {
		record, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, record)
	}
	return artifacts, rows.Err()
}
