package primary

import "context"

// ContinuityService defines the primary port for bundle production and
// continuity verification.
type ContinuityService interface {
	// ProduceBundle invokes the bundle builder for a target, computes
	// both checksums, and records an immutable receipt as the baseline
	// for later checks.
	ProduceBundle(ctx context.Context, req ProduceBundleRequest) (*ProduceBundleResponse, error)

	// RunCheck rebuilds the bundle for a baseline receipt and compares
	// checksums. Every invocation terminates in a persisted PASS or
	// FAIL run; a check never hangs in a pending state.
	RunCheck(ctx context.Context, req RunCheckRequest) (*CheckRun, error)

	// ListChecks lists prior check runs, most recent first.
	ListChecks(ctx context.Context, filters CheckFilters) ([]*CheckRun, error)

	// GetReceipt retrieves a bundle receipt by ID.
	GetReceipt(ctx context.Context, receiptID string) (*Receipt, error)

	// ListReceipts lists receipts, most recent first.
	ListReceipts(ctx context.Context, filters ReceiptFilters) ([]*Receipt, error)
}

// ProduceBundleRequest contains parameters for producing a bundle.
type ProduceBundleRequest struct {
	Repo     string
	TicketID string
	Role     string
}

// ProduceBundleResponse contains the result of producing a bundle.
type ProduceBundleResponse struct {
	ReceiptID       string
	Version         int
	ContentChecksum string
	BundleChecksum  string
}

// RunCheckRequest identifies the baseline to verify: either an explicit
// receipt id, or a (repo, ticket, role) target resolved to its most
// recent receipt. Exactly one form must be supplied.
type RunCheckRequest struct {
	ReceiptID string

	Repo     string
	TicketID string
	Role     string
}

// CheckRun represents one continuity check execution at the port
// boundary.
type CheckRun struct {
	ID                     string
	ReceiptID              string
	Repo                   string
	TicketID               string
	Role                   string
	Verdict                string // continuity.VerdictPass or continuity.VerdictFail
	FailureReason          string
	BaselineChecksums      ChecksumPair
	RebuiltChecksums       ChecksumPair // zero when the rebuild failed
	Detail                 string       // structured comparison JSON
	CreatedAt              string
}

// ChecksumPair groups the two digests of a bundle.
type ChecksumPair struct {
	Content string
	Bundle  string
}

// CheckFilters contains filter options for listing check runs.
type CheckFilters struct {
	ReceiptID string
	Repo      string
	TicketID  string
	Limit     int
}

// Receipt represents a bundle receipt at the port boundary.
type Receipt struct {
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

// ReceiptFilters contains filter options for listing receipts.
type ReceiptFilters struct {
	Repo     string
	TicketID string
	Role     string
	Limit    int
}
