// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// TicketRepository defines the secondary port for ticket persistence.
// Tickets are created by orchestration glue; the sync core references
// them but never mutates their identity.
type TicketRepository interface {
	// Create persists a new ticket.
	Create(ctx context.Context, ticket *TicketRecord) error

	// GetByID retrieves a ticket by its opaque primary key.
	GetByID(ctx context.Context, id string) (*TicketRecord, error)

	// GetByDisplayID retrieves a ticket by its repo-scoped display id.
	GetByDisplayID(ctx context.Context, repo, displayID string) (*TicketRecord, error)

	// List retrieves tickets matching the given filters.
	List(ctx context.Context, filters TicketFilters) ([]*TicketRecord, error)

	// UpdateBody replaces a ticket's title and body.
	UpdateBody(ctx context.Context, id, title, body string) error

	// MoveColumn moves a ticket to a workflow column.
	MoveColumn(ctx context.Context, id, column string) error

	// NextDisplayID returns the next available display id for a repo.
	NextDisplayID(ctx context.Context, repo string) (string, error)
}

// TicketRecord represents a ticket as stored in persistence.
type TicketRecord struct {
	ID         string
	Repo       string
	DisplayID  string
	Title      string
	Body       string
	ColumnName string
	Pinned     bool
	CreatedAt  string
	UpdatedAt  string
}

// TicketFilters contains filter options for querying tickets.
type TicketFilters struct {
	Repo   string
	Column string
	Limit  int
}

// ArtifactRepository defines the secondary port for artifact
// persistence. The artifacts table carries a uniqueness constraint on
// the canonical identity tuple; Create returns ErrConflict when an
// insert loses that race.
type ArtifactRepository interface {
	// Create persists a new artifact. Returns ErrConflict if a row
	// with the same canonical identity already exists.
	Create(ctx context.Context, artifact *ArtifactRecord) error

	// GetByID retrieves an artifact by its ID.
	GetByID(ctx context.Context, id string) (*ArtifactRecord, error)

	// GetByIdentity retrieves all rows matching a canonical identity.
	// Normally at most one row exists; strays from partial failures
	// are possible and reconciled by the upsert coordinator.
	GetByIdentity(ctx context.Context, ticketID, agentCategory, artifactType string) ([]*ArtifactRecord, error)

	// Update replaces an artifact's title and body and bumps its
	// revision counter.
	Update(ctx context.Context, id, title, body string) error

	// Delete removes an artifact row. Used only for reconciling blank
	// or duplicate strays.
	Delete(ctx context.Context, id string) error

	// ListByTicket retrieves all artifacts attached to a ticket.
	ListByTicket(ctx context.Context, ticketID string) ([]*ArtifactRecord, error)
}

// ArtifactRecord represents an artifact as stored in persistence.
type ArtifactRecord struct {
	ID            string
	TicketID      string
	AgentCategory string
	ArtifactType  string
	Title         string
	Body          string
	Revision      int
	CreatedAt     string
	UpdatedAt     string
}

// MessageRepository defines the secondary port for conversation message
// persistence. The messages table carries a uniqueness constraint on
// (project, thread, seq); Create returns ErrConflict when an insert
// hits it. That constraint, not any in-process state, is the
// idempotent-replay mechanism.
type MessageRepository interface {
	// Create persists a new message. Returns ErrConflict if a row
	// already exists at (project, thread, seq).
	Create(ctx context.Context, message *MessageRecord) error

	// ListThread retrieves all messages in a thread ordered by
	// ascending sequence number.
	ListThread(ctx context.Context, project, thread string) ([]*MessageRecord, error)

	// MaxSequence returns the highest persisted sequence number in a
	// thread, or ok=false when the thread has no messages.
	MaxSequence(ctx context.Context, project, thread string) (seq int, ok bool, err error)
}

// MessageRecord represents one conversation turn as stored in
// persistence. Messages are created once and never mutated or deleted.
type MessageRecord struct {
	ID        string
	Project   string
	Thread    string
	Seq       int
	Role      string
	Content   string
	CreatedAt string
}

// ReceiptRepository defines the secondary port for bundle receipt
// persistence. Receipts are immutable baselines: created once at
// bundle-production time, read-only afterward.
type ReceiptRepository interface {
	// Create persists a new receipt.
	Create(ctx context.Context, receipt *ReceiptRecord) error

	// GetByID retrieves a receipt by its ID.
	GetByID(ctx context.Context, id string) (*ReceiptRecord, error)

	// Latest retrieves the most recent receipt for a (repo, ticket,
	// role) target, or ErrNotFound when none exists.
	Latest(ctx context.Context, repo, ticketID, role string) (*ReceiptRecord, error)

	// List retrieves receipts matching the given filters, most recent
	// first.
	List(ctx context.Context, filters ReceiptFilters) ([]*ReceiptRecord, error)

	// NextVersion returns the next bundle version for a target.
	NextVersion(ctx context.Context, repo, ticketID, role string) (int, error)
}

// ReceiptRecord represents a bundle receipt as stored in persistence.
// RequirementsDocID is empty when the bundle bound no upstream
// requirements document.
type ReceiptRecord struct {
	ID                  string
	Repo                string
	TicketID            string
	Role                string
	Version             int
	ContentChecksum     string
	BundleChecksum      string
	RequirementsDocID   string
	RequirementsVersion int
	CreatedAt           string
}

// ReceiptFilters contains filter options for querying receipts.
type ReceiptFilters struct {
	Repo     string
	TicketID string
	Role     string
	Limit    int
}

// CheckRunRepository defines the secondary port for continuity check
// run persistence. Runs are append-only: created exactly once, never
// updated.
type CheckRunRepository interface {
	// Create persists a new check run.
	Create(ctx context.Context, run *CheckRunRecord) error

	// GetByID retrieves a check run by its ID.
	GetByID(ctx context.Context, id string) (*CheckRunRecord, error)

	// List retrieves check runs matching the given filters, most
	// recent first.
	List(ctx context.Context, filters CheckRunFilters) ([]*CheckRunRecord, error)
}

// CheckRunRecord represents one continuity check execution as stored
// in persistence. Detail holds the structured comparison as JSON.
type CheckRunRecord struct {
	ID                     string
	ReceiptID              string // empty when no baseline receipt existed
	Repo                   string
	TicketID               string
	Role                   string
	Verdict                string
	FailureReason          string // empty on PASS
	RebuiltContentChecksum string // empty when the rebuild failed
	RebuiltBundleChecksum  string
	Detail                 string
	CreatedAt              string
}

// CheckRunFilters contains filter options for querying check runs.
type CheckRunFilters struct {
	ReceiptID string
	Repo      string
	TicketID  string
	Limit     int
}
