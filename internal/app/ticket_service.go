package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/example/tether/internal/ports/primary"
	"github.com/example/tether/internal/ports/secondary"
)

// TicketServiceImpl implements the TicketService interface.
type TicketServiceImpl struct {
	ticketRepo secondary.TicketRepository
}

// NewTicketService creates a new TicketService with injected dependencies.
func NewTicketService(ticketRepo secondary.TicketRepository) *TicketServiceImpl {
	return &TicketServiceImpl{
		ticketRepo: ticketRepo,
	}
}

// CreateTicket creates a new ticket in a repo.
func (s *TicketServiceImpl) CreateTicket(ctx context.Context, req primary.CreateTicketRequest) (*primary.CreateTicketResponse, error) {
	if strings.TrimSpace(req.Repo) == "" {
		return nil, fmt.Errorf("repo is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}

	displayID, err := s.ticketRepo.NextDisplayID(ctx, req.Repo)
	if err != nil {
		return nil, fmt.Errorf("failed to generate display id: %w", err)
	}

	record := &secondary.TicketRecord{
		ID:        uuid.New().String(),
		Repo:      req.Repo,
		DisplayID: displayID,
		Title:     req.Title,
		Body:      req.Body,
	}
	if err := s.ticketRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return &primary.CreateTicketResponse{
		TicketID:  record.ID,
		DisplayID: record.DisplayID,
	}, nil
}

// GetTicket retrieves a ticket by its opaque id.
func (s *TicketServiceImpl) GetTicket(ctx context.Context, ticketID string) (*primary.Ticket, error) {
	record, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.recordToTicket(record), nil
}

// GetTicketByDisplayID retrieves a ticket by repo and display id.
func (s *TicketServiceImpl) GetTicketByDisplayID(ctx context.Context, repo, displayID string) (*primary.Ticket, error) {
	record, err := s.ticketRepo.GetByDisplayID(ctx, repo, displayID)
	if err != nil {
		return nil, err
	}
	return s.recordToTicket(record), nil
}

// ListTickets lists tickets with optional filters.
func (s *TicketServiceImpl) ListTickets(ctx context.Context, filters primary.TicketFilters) ([]*primary.Ticket, error) {
	records, err := s.ticketRepo.List(ctx, secondary.TicketFilters{
		Repo:   filters.Repo,
		Column: filters.Column,
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	tickets := make([]*primary.Ticket, len(records))
	for i, r := range records {
		tickets[i] = s.recordToTicket(r)
	}
	return tickets, nil
}

// MoveTicket moves a ticket to a workflow column.
func (s *TicketServiceImpl) MoveTicket(ctx context.Context, ticketID, column string) error {
	switch column {
	case primary.ColumnBacklog, primary.ColumnInProgress, primary.ColumnReview, primary.ColumnDone:
	default:
		return fmt.Errorf("unknown column %q", column)
	}
	return s.ticketRepo.MoveColumn(ctx, ticketID, column)
}

func (s *TicketServiceImpl) recordToTicket(r *secondary.TicketRecord) *primary.Ticket {
	return &primary.Ticket{
		ID:         r.ID,
		Repo:       r.Repo,
		DisplayID:  r.DisplayID,
		Title:      r.Title,
		Body:       r.Body,
		ColumnName: r.ColumnName,
		Pinned:     r.Pinned,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// Ensure TicketServiceImpl implements the interface.
var _ primary.TicketService = (*TicketServiceImpl)(nil)
