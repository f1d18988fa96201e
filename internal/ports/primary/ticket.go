package primary

import "context"

// TicketService defines the primary port for ticket operations. This
// surface is orchestration glue: the sync core references tickets but
// never mutates their identity.
type TicketService interface {
	// CreateTicket creates a new ticket in a repo.
	CreateTicket(ctx context.Context, req CreateTicketRequest) (*CreateTicketResponse, error)

	// GetTicket retrieves a ticket by its opaque id.
	GetTicket(ctx context.Context, ticketID string) (*Ticket, error)

	// GetTicketByDisplayID retrieves a ticket by repo and display id.
	GetTicketByDisplayID(ctx context.Context, repo, displayID string) (*Ticket, error)

	// ListTickets lists tickets with optional filters.
	ListTickets(ctx context.Context, filters TicketFilters) ([]*Ticket, error)

	// MoveTicket moves a ticket to a workflow column.
	MoveTicket(ctx context.Context, ticketID, column string) error
}

// Workflow column names.
const (
	ColumnBacklog    = "backlog"
	ColumnInProgress = "in_progress"
	ColumnReview     = "review"
	ColumnDone       = "done"
)

// CreateTicketRequest contains parameters for creating a ticket.
type CreateTicketRequest struct {
	Repo  string
	Title string
	Body  string
}

// CreateTicketResponse contains the result of creating a ticket.
type CreateTicketResponse struct {
	TicketID  string
	DisplayID string
}

// Ticket represents a ticket entity at the port boundary.
type Ticket struct {
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

// TicketFilters contains filter options for listing tickets.
type TicketFilters struct {
	Repo   string
	Column string
	Limit  int
}
