package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/tether/internal/ports/secondary"
)

// MessageRepository implements secondary.MessageRepository with SQLite.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new SQLite message repository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a new message. A uniqueness violation on
// (project, thread, seq) surfaces as secondary.ErrConflict.
func (r *MessageRepository) Create(ctx context.Context, message *secondary.MessageRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, project, thread, seq, role, content) VALUES (?, ?, ?, ?, ?, ?)`,
		message.ID,
		message.Project,
		message.Thread,
		message.Seq,
		message.Role,
		message.Content,
	)
	if err != nil {
		if errors.Is(mapConstraintErr(err), secondary.ErrConflict) {
			return secondary.ErrConflict
		}
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListThread retrieves all messages in a thread in sequence order.
func (r *MessageRepository) ListThread(ctx context.Context, project, thread string) ([]*secondary.MessageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project, thread, seq, role, content, created_at
		 FROM messages
		 WHERE project = ? AND thread = ?
		 ORDER BY seq ASC`,
		project, thread,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread: %w", err)
	}
	defer rows.Close()

	var messages []*secondary.MessageRecord
	for rows.Next() {
		var createdAt time.Time

		record := &secondary.MessageRecord{}
		err := rows.Scan(&record.ID, &record.Project, &record.Thread, &record.Seq, &record.Role, &record.Content, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		record.CreatedAt = createdAt.Format(time.RFC3339)
		messages = append(messages, record)
	}

	return messages, rows.Err()
}

// MaxSequence returns the highest persisted sequence number in a
// thread, or ok=false when the thread has no messages.
func (r *MessageRepository) MaxSequence(ctx context.Context, project, thread string) (int, bool, error) {
	var seq sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM messages WHERE project = ? AND thread = ?`,
		project, thread,
	).Scan(&seq)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get max sequence: %w", err)
	}
	if !seq.Valid {
		return 0, false, nil
	}

	return int(seq.Int64), true, nil
}
