package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/tether/internal/core/identity"
	"github.com/example/tether/internal/core/validation"
	"github.com/example/tether/internal/ports/primary"
	"github.com/example/tether/internal/ports/secondary"
)

// ArtifactServiceImpl implements the ArtifactService interface. Upserts
// converge through the store's unique index on the canonical identity:
// an insert that loses the race reconciles by updating the surviving
// row, never by retrying the insert.
type ArtifactServiceImpl struct {
	artifactRepo secondary.ArtifactRepository
	ticketRepo   secondary.TicketRepository
}

// NewArtifactService creates a new ArtifactService with injected dependencies.
func NewArtifactService(artifactRepo secondary.ArtifactRepository, ticketRepo secondary.TicketRepository) *ArtifactServiceImpl {
	return &ArtifactServiceImpl{
		artifactRepo: artifactRepo,
		ticketRepo:   ticketRepo,
	}
}

// UpsertArtifact idempotently writes an artifact under its canonical
// identity. Invalid content never reaches the store.
func (s *ArtifactServiceImpl) UpsertArtifact(ctx context.Context, req primary.UpsertArtifactRequest) (*primary.UpsertArtifactResponse, error) {
	id, err := identity.Resolve(identity.ResolveInput{
		TicketID:      req.TicketID,
		AgentCategory: req.AgentCategory,
		ArtifactType:  req.ArtifactType,
		Title:         req.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("identity resolution failed: %w", err)
	}

	if result := validation.Validate(id.ArtifactType, req.Body); !result.Valid {
		return nil, fmt.Errorf("content rejected: %w", result.Error())
	}

	writeMode := req.WriteMode
	if writeMode == "" {
		writeMode = primary.WriteModeReplace
	}
	if writeMode != primary.WriteModeReplace && writeMode != primary.WriteModeAppend {
		return nil, fmt.Errorf("unknown write mode %q", writeMode)
	}

	// Validate ticket exists before writing anything under it.
	if _, err := s.ticketRepo.GetByID(ctx, id.TicketID); err != nil {
		return nil, fmt.Errorf("failed to validate ticket: %w", err)
	}

	title := req.Title
	if title == "" {
		title = id.ArtifactType
	}

	winner, err := s.reconcile(ctx, id)
	if err != nil {
		return nil, err
	}

	if winner != nil {
		return s.updateWinner(ctx, winner, title, req.Body, writeMode)
	}

	record := &secondary.ArtifactRecord{
		ID:            uuid.New().String(),
		TicketID:      id.TicketID,
		AgentCategory: id.AgentCategory,
		ArtifactType:  id.ArtifactType,
		Title:         title,
		Body:          req.Body,
	}
	err = s.artifactRepo.Create(ctx, record)
	if err == nil {
		return &primary.UpsertArtifactResponse{
			Action:     primary.ActionInserted,
			ArtifactID: record.ID,
		}, nil
	}
	if !errors.Is(err, secondary.ErrConflict) {
		return nil, fmt.Errorf("failed to create artifact: %w", err)
	}

	// Lost the insert race: a concurrent writer claimed the identity
	// between our read and our insert. Re-read once and update the row
	// that won.
	winner, err = s.reconcile(ctx, id)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("artifact identity %s/%s/%s: insert conflicted but no surviving row found", id.TicketID, id.AgentCategory, id.ArtifactType)
	}
	return s.updateWinner(ctx, winner, title, req.Body, writeMode)
}

// reconcile loads the rows under an identity, removes blank shells and
// stale duplicates, and returns the single surviving row (nil when the
// identity is unoccupied).
func (s *ArtifactServiceImpl) reconcile(ctx context.Context, id identity.Identity) (*secondary.ArtifactRecord, error) {
	rows, err := s.artifactRepo.GetByIdentity(ctx, id.TicketID, id.AgentCategory, id.ArtifactType)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifact identity: %w", err)
	}

	var valid []*secondary.ArtifactRecord
	for _, row := range rows {
		if validation.IsBlank(row.Body) {
			if err := s.artifactRepo.Delete(ctx, row.ID); err != nil && !errors.Is(err, secondary.ErrNotFound) {
				return nil, fmt.Errorf("failed to remove blank artifact %s: %w", row.ID, err)
			}
			continue
		}
		valid = append(valid, row)
	}

	if len(valid) == 0 {
		return nil, nil
	}

	// Rows arrive oldest first. Keep the newest; older duplicates are
	// strays from before the unique index existed.
	winner := valid[len(valid)-1]
	for _, stray := range valid[:len(valid)-1] {
		if err := s.artifactRepo.Delete(ctx, stray.ID); err != nil && !errors.Is(err, secondary.ErrNotFound) {
			return nil, fmt.Errorf("failed to remove duplicate artifact %s: %w", stray.ID, err)
		}
	}
	return winner, nil
}

// updateWinner applies the requested write to the surviving row.
// Identical resulting content is a no-op, not an update.
func (s *ArtifactServiceImpl) updateWinner(ctx context.Context, winner *secondary.ArtifactRecord, title, body, writeMode string) (*primary.UpsertArtifactResponse, error) {
	newBody := body
	if writeMode == primary.WriteModeAppend {
		newBody = winner.Body + "\n\n" + body
	}

	if winner.Body == newBody && winner.Title == title {
		return &primary.UpsertArtifactResponse{
			Action:     primary.ActionNoop,
			ArtifactID: winner.ID,
		}, nil
	}

	if err := s.artifactRepo.Update(ctx, winner.ID, title, newBody); err != nil {
		return nil, fmt.Errorf("failed to update artifact: %w", err)
	}
	return &primary.UpsertArtifactResponse{
		Action:     primary.ActionUpdated,
		ArtifactID: winner.ID,
	}, nil
}

// GetArtifact retrieves an artifact by ID.
func (s *ArtifactServiceImpl) GetArtifact(ctx context.Context, artifactID string) (*primary.Artifact, error) {
	record, err := s.artifactRepo.GetByID(ctx, artifactID)
	if err != nil {
		return nil, err
	}
	return s.recordToArtifact(record), nil
}

// ListArtifacts lists all artifacts attached to a ticket.
func (s *ArtifactServiceImpl) ListArtifacts(ctx context.Context, ticketID string) ([]*primary.Artifact, error) {
	records, err := s.artifactRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	artifacts := make([]*primary.Artifact, len(records))
	for i, r := range records {
		artifacts[i] = s.recordToArtifact(r)
	}
	return artifacts, nil
}

func (s *ArtifactServiceImpl) recordToArtifact(r *secondary.ArtifactRecord) *primary.Artifact {
	return &primary.Artifact{
		ID:            r.ID,
		TicketID:      r.TicketID,
		AgentCategory: r.AgentCategory,
		ArtifactType:  r.ArtifactType,
		Title:         r.Title,
		Body:          r.Body,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Ensure ArtifactServiceImpl implements the interface.
var _ primary.ArtifactService = (*ArtifactServiceImpl)(nil)
