// Package bundle defines the context-bundle shape and the two checksum
// engines that prove a bundle is deterministically reconstructible.
package bundle

// Binding identifies the context a bundle was assembled for. The same
// content bound to a different (repo, ticket, role, version) is a
// different bundle.
type Binding struct {
	Repo     string
	TicketID string
	Role     string
	Version  int
}

// TicketContent carries the substantive ticket fields included in a
// bundle. Timestamps and workflow position are volatile metadata and
// are deliberately excluded.
type TicketContent struct {
	DisplayID string
	Title     string
	Body      string
}

// Section is one artifact included in a bundle.
type Section struct {
	AgentCategory string
	ArtifactType  string
	Title         string
	Body          string
}

// RefKindRequirements is the upstream reference kind for the
// requirements document a bundle derives from.
const RefKindRequirements = "requirements"

// UpstreamRef points at an upstream document (requirements, manifest)
// whose version was bound into the bundle at assembly time.
type UpstreamRef struct {
	Kind    string
	DocID   string
	Version int
}

// Bundle is a derived aggregation of ticket and artifact data assembled
// for a specific binding. Bundles are never hand-authored; they are
// produced by a builder from source rows and are ephemeral unless the
// caller records a receipt.
type Bundle struct {
	Binding  Binding
	Ticket   TicketContent
	Sections []Section
	Refs     []UpstreamRef
}

// FindRef returns the first upstream reference of the given kind.
func (b *Bundle) FindRef(kind string) (UpstreamRef, bool) {
	for _, ref := range b.Refs {
		if ref.Kind == kind {
			return ref, true
		}
	}
	return UpstreamRef{}, false
}
