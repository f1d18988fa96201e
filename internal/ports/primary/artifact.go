package primary

import "context"

// ArtifactService defines the primary port for artifact operations.
type ArtifactService interface {
	// UpsertArtifact idempotently writes an artifact. Concurrent calls
	// with the same canonical identity converge to exactly one stored
	// row. Content failing validation is rejected before any store
	// access.
	UpsertArtifact(ctx context.Context, req UpsertArtifactRequest) (*UpsertArtifactResponse, error)

	// GetArtifact retrieves an artifact by ID.
	GetArtifact(ctx context.Context, artifactID string) (*Artifact, error)

	// ListArtifacts lists all artifacts attached to a ticket.
	ListArtifacts(ctx context.Context, ticketID string) ([]*Artifact, error)
}

// Upsert write modes. Replace overwrites the stored body; Append adds
// the new content after the stored body.
const (
	WriteModeReplace = "replace"
	WriteModeAppend  = "append"
)

// Upsert actions reported to the caller.
const (
	ActionInserted = "inserted"
	ActionUpdated  = "updated"
	ActionNoop     = "noop"
)

// UpsertArtifactRequest contains parameters for an artifact upsert.
// ArtifactType is the primary identity input; Title-based inference is
// a deprecated fallback used only when ArtifactType is empty.
type UpsertArtifactRequest struct {
	TicketID      string
	AgentCategory string
	ArtifactType  string
	Title         string
	Body          string
	WriteMode     string // WriteModeReplace (default) or WriteModeAppend
}

// UpsertArtifactResponse contains the result of an artifact upsert.
type UpsertArtifactResponse struct {
	Action     string // ActionInserted, ActionUpdated or ActionNoop
	ArtifactID string
}

// Artifact represents an artifact entity at the port boundary.
type Artifact struct {
	ID            string
	TicketID      string
	AgentCategory string
	ArtifactType  string
	Title         string
	Body          string
	CreatedAt     string
	UpdatedAt     string
}
