// Package bundler provides the local bundle builder: it assembles
// context bundles directly from ticket and artifact rows in the store.
package bundler

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/tether/internal/core/bundle"
	"github.com/example/tether/internal/core/identity"
	"github.com/example/tether/internal/ports/secondary"
)

// roleDefaults maps a consuming role to the artifact types its bundle
// carries when the caller does not name an explicit selection.
var roleDefaults = map[string][]string{
	"implementer": {identity.TypePlan, identity.TypeWorklog, identity.TypeDecisionLog},
	"qa":          {identity.TypePlan, identity.TypeVerificationReport, identity.TypeQAReport},
	"reviewer":    {identity.TypePlan, identity.TypeWorklog, identity.TypeDecisionLog, identity.TypeReview},
}

// LocalBuilder implements secondary.BundleBuilder against the local
// store. Selection is re-derived from source rows on every build, so
// two builds over unchanged rows produce byte-identical canonical
// content.
type LocalBuilder struct {
	tickets   secondary.TicketRepository
	artifacts secondary.ArtifactRepository
}

var _ secondary.BundleBuilder = (*LocalBuilder)(nil)

// NewLocalBuilder creates a builder over the given repositories.
func NewLocalBuilder(tickets secondary.TicketRepository, artifacts secondary.ArtifactRepository) *LocalBuilder {
	return &LocalBuilder{tickets: tickets, artifacts: artifacts}
}

// Build assembles a bundle for the given target from current source
// rows. Blank artifacts are excluded: a blank body carries no context
// and must not perturb the content checksum.
func (b *LocalBuilder) Build(ctx context.Context, input secondary.BuildInput) (*bundle.Bundle, error) {
	ticket, err := b.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket for bundle: %w", err)
	}

	records, err := b.artifacts.ListByTicket(ctx, input.TicketID)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts for bundle: %w", err)
	}

	selection := input.ArtifactTypes
	if selection == nil {
		if defaults, ok := roleDefaults[input.Role]; ok {
			selection = defaults
		} else {
			selection = identity.KnownTypes()
		}
	}
	wanted := make(map[string]bool, len(selection))
	for _, artifactType := range selection {
		wanted[artifactType] = true
	}

	result := &bundle.Bundle{
		Binding: bundle.Binding{
			Repo:     input.Repo,
			TicketID: input.TicketID,
			Role:     input.Role,
			Version:  input.Version,
		},
		Ticket: bundle.TicketContent{
			DisplayID: ticket.DisplayID,
			Title:     ticket.Title,
			Body:      ticket.Body,
		},
	}

	for _, record := range records {
		if !wanted[record.ArtifactType] {
			continue
		}
		if strings.TrimSpace(record.Body) == "" {
			continue
		}
		result.Sections = append(result.Sections, bundle.Section{
			AgentCategory: record.AgentCategory,
			ArtifactType:  record.ArtifactType,
			Title:         record.Title,
			Body:          record.Body,
		})
		// The plan artifact doubles as the upstream requirements
		// document; bind its identity and revision at assembly time.
		if record.ArtifactType == identity.TypePlan {
			result.Refs = append(result.Refs, bundle.UpstreamRef{
				Kind:    bundle.RefKindRequirements,
				DocID:   record.ID,
				Version: record.Revision,
			})
		}
	}

	return result, nil
}
