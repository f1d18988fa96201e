package secondary

import (
	"context"

	"github.com/example/tether/internal/core/bundle"
)

// BundleBuilder defines the secondary port for the external bundle
// builder collaborator. Implementations must be deterministic: given
// identical source rows, Build returns a bundle with identical
// canonical content.
type BundleBuilder interface {
	// Build assembles a context bundle for the given target. The
	// artifact selection is re-derived fresh from source state, never
	// copied from a previous bundle.
	Build(ctx context.Context, input BuildInput) (*bundle.Bundle, error)
}

// BuildInput identifies the logical inputs of a bundle build.
type BuildInput struct {
	Repo     string
	TicketID string
	Role     string
	Version  int

	// ArtifactTypes restricts which artifact types are included. Nil
	// means the builder's default selection for the role.
	ArtifactTypes []string
}
