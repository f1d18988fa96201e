package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/example/tether/internal/core/bundle"
	"github.com/example/tether/internal/core/continuity"
	"github.com/example/tether/internal/ports/primary"
	"github.com/example/tether/internal/ports/secondary"
)

// ContinuityServiceImpl implements the ContinuityService interface. It
// owns all store and builder I/O around continuity checks; the
// comparison itself is pure and lives in core/continuity.
type ContinuityServiceImpl struct {
	receiptRepo secondary.ReceiptRepository
	checkRepo   secondary.CheckRunRepository
	builder     secondary.BundleBuilder
}

// NewContinuityService creates a new ContinuityService with injected dependencies.
func NewContinuityService(receiptRepo secondary.ReceiptRepository, checkRepo secondary.CheckRunRepository, builder secondary.BundleBuilder) *ContinuityServiceImpl {
	return &ContinuityServiceImpl{
		receiptRepo: receiptRepo,
		checkRepo:   checkRepo,
		builder:     builder,
	}
}

// checkDetail is the structured comparison persisted with every run.
// Error carries the raw builder failure when the rebuild never produced
// a bundle.
type checkDetail struct {
	continuity.Comparison
	Error string `json:"error,omitempty"`
}

// ProduceBundle builds a bundle for a target and records its receipt.
func (s *ContinuityServiceImpl) ProduceBundle(ctx context.Context, req primary.ProduceBundleRequest) (*primary.ProduceBundleResponse, error) {
	if err := validateTarget(req.Repo, req.TicketID, req.Role); err != nil {
		return nil, err
	}

	version, err := s.receiptRepo.NextVersion(ctx, req.Repo, req.TicketID, req.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate bundle version: %w", err)
	}

	built, err := s.builder.Build(ctx, secondary.BuildInput{
		Repo:     req.Repo,
		TicketID: req.TicketID,
		Role:     req.Role,
		Version:  version,
	})
	if err != nil {
		return nil, fmt.Errorf("bundle build failed: %w", err)
	}

	record := &secondary.ReceiptRecord{
		ID:              uuid.New().String(),
		Repo:            req.Repo,
		TicketID:        req.TicketID,
		Role:            req.Role,
		Version:         version,
		ContentChecksum: bundle.ContentChecksum(built),
		BundleChecksum:  bundle.BundleChecksum(built),
	}
	if ref, ok := built.FindRef(bundle.RefKindRequirements); ok {
		record.RequirementsDocID = ref.DocID
		record.RequirementsVersion = ref.Version
	}

	if err := s.receiptRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record receipt: %w", err)
	}

	return &primary.ProduceBundleResponse{
		ReceiptID:       record.ID,
		Version:         record.Version,
		ContentChecksum: record.ContentChecksum,
		BundleChecksum:  record.BundleChecksum,
	}, nil
}

// RunCheck rebuilds the bundle for a baseline receipt and persists the
// comparison verdict. Every path through here ends in a stored PASS or
// FAIL row.
func (s *ContinuityServiceImpl) RunCheck(ctx context.Context, req primary.RunCheckRequest) (*primary.CheckRun, error) {
	receipt, err := s.resolveBaseline(ctx, req)
	if errors.Is(err, secondary.ErrNotFound) {
		// No baseline to verify against. The builder is never invoked;
		// the failure is recorded against the requested target.
		outcome := continuity.MissingReceipt()
		return s.persistRun(ctx, "", req.Repo, req.TicketID, req.Role, outcome, "", "", "", nil)
	}
	if err != nil {
		return nil, err
	}

	built, buildErr := s.builder.Build(ctx, secondary.BuildInput{
		Repo:     receipt.Repo,
		TicketID: receipt.TicketID,
		Role:     receipt.Role,
		Version:  receipt.Version,
	})
	if buildErr != nil {
		outcome := continuity.RebuildFailed()
		return s.persistRun(ctx, receipt.ID, receipt.Repo, receipt.TicketID, receipt.Role, outcome, "", "", buildErr.Error(), receipt)
	}

	rebuiltContent := bundle.ContentChecksum(built)
	rebuiltBundle := bundle.BundleChecksum(built)

	rebuilt := continuity.Rebuilt{
		ContentChecksum: rebuiltContent,
		BundleChecksum:  rebuiltBundle,
	}
	if ref, ok := built.FindRef(bundle.RefKindRequirements); ok {
		rebuilt.RequirementsPresent = true
		rebuilt.RequirementsDocID = ref.DocID
		rebuilt.RequirementsVersion = ref.Version
	}

	baseline := continuity.Baseline{
		ContentChecksum:     receipt.ContentChecksum,
		BundleChecksum:      receipt.BundleChecksum,
		RequirementsDocID:   receipt.RequirementsDocID,
		RequirementsVersion: receipt.RequirementsVersion,
	}

	outcome := continuity.Classify(baseline, rebuilt)
	return s.persistRun(ctx, receipt.ID, receipt.Repo, receipt.TicketID, receipt.Role, outcome, rebuiltContent, rebuiltBundle, "", receipt)
}

// resolveBaseline finds the receipt a check verifies: an explicit id,
// or the most recent receipt for a (repo, ticket, role) target.
func (s *ContinuityServiceImpl) resolveBaseline(ctx context.Context, req primary.RunCheckRequest) (*secondary.ReceiptRecord, error) {
	if req.ReceiptID != "" {
		return s.receiptRepo.GetByID(ctx, req.ReceiptID)
	}
	if err := validateTarget(req.Repo, req.TicketID, req.Role); err != nil {
		return nil, err
	}
	return s.receiptRepo.Latest(ctx, req.Repo, req.TicketID, req.Role)
}

// persistRun stores one check execution and returns it at the port
// boundary. Empty rebuilt checksums mean the rebuild produced nothing;
// errMsg carries the raw builder failure in that case.
func (s *ContinuityServiceImpl) persistRun(ctx context.Context, receiptID, repo, ticketID, role string, outcome continuity.Outcome, rebuiltContent, rebuiltBundle, errMsg string, receipt *secondary.ReceiptRecord) (*primary.CheckRun, error) {
	detail, err := json.Marshal(checkDetail{Comparison: outcome.Comparison, Error: errMsg})
	if err != nil {
		return nil, fmt.Errorf("failed to encode check detail: %w", err)
	}

	record := &secondary.CheckRunRecord{
		ID:                     uuid.New().String(),
		ReceiptID:              receiptID,
		Repo:                   repo,
		TicketID:               ticketID,
		Role:                   role,
		Verdict:                outcome.Verdict,
		FailureReason:          outcome.Reason,
		RebuiltContentChecksum: rebuiltContent,
		RebuiltBundleChecksum:  rebuiltBundle,
		Detail:                 string(detail),
	}

	if err := s.checkRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record check run: %w", err)
	}

	stored, err := s.checkRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recorded check run: %w", err)
	}

	return s.recordToCheckRun(stored, receipt), nil
}

// ListChecks lists prior check runs, most recent first.
func (s *ContinuityServiceImpl) ListChecks(ctx context.Context, filters primary.CheckFilters) ([]*primary.CheckRun, error) {
	records, err := s.checkRepo.List(ctx, secondary.CheckRunFilters{
		ReceiptID: filters.ReceiptID,
		Repo:      filters.Repo,
		TicketID:  filters.TicketID,
		Limit:     filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list check runs: %w", err)
	}

	// Baseline checksums come from each run's receipt; cache lookups so
	// repeated runs against one receipt cost one query.
	receipts := make(map[string]*secondary.ReceiptRecord)
	runs := make([]*primary.CheckRun, len(records))
	for i, r := range records {
		var receipt *secondary.ReceiptRecord
		if r.ReceiptID != "" {
			cached, ok := receipts[r.ReceiptID]
			if !ok {
				cached, err = s.receiptRepo.GetByID(ctx, r.ReceiptID)
				if err != nil && !errors.Is(err, secondary.ErrNotFound) {
					return nil, fmt.Errorf("failed to fetch receipt %s: %w", r.ReceiptID, err)
				}
				receipts[r.ReceiptID] = cached
			}
			receipt = cached
		}
		runs[i] = s.recordToCheckRun(r, receipt)
	}
	return runs, nil
}

// GetReceipt retrieves a bundle receipt by ID.
func (s *ContinuityServiceImpl) GetReceipt(ctx context.Context, receiptID string) (*primary.Receipt, error) {
	record, err := s.receiptRepo.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	return s.recordToReceipt(record), nil
}

// ListReceipts lists receipts, most recent first.
func (s *ContinuityServiceImpl) ListReceipts(ctx context.Context, filters primary.ReceiptFilters) ([]*primary.Receipt, error) {
	records, err := s.receiptRepo.List(ctx, secondary.ReceiptFilters{
		Repo:     filters.Repo,
		TicketID: filters.TicketID,
		Role:     filters.Role,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}

	receipts := make([]*primary.Receipt, len(records))
	for i, r := range records {
		receipts[i] = s.recordToReceipt(r)
	}
	return receipts, nil
}

func validateTarget(repo, ticketID, role string) error {
	if strings.TrimSpace(repo) == "" {
		return fmt.Errorf("repo is required")
	}
	if strings.TrimSpace(ticketID) == "" {
		return fmt.Errorf("ticket id is required")
	}
	if strings.TrimSpace(role) == "" {
		return fmt.Errorf("role is required")
	}
	return nil
}

func (s *ContinuityServiceImpl) recordToCheckRun(r *secondary.CheckRunRecord, receipt *secondary.ReceiptRecord) *primary.CheckRun {
	run := &primary.CheckRun{
		ID:            r.ID,
		ReceiptID:     r.ReceiptID,
		Repo:          r.Repo,
		TicketID:      r.TicketID,
		Role:          r.Role,
		Verdict:       r.Verdict,
		FailureReason: r.FailureReason,
		RebuiltChecksums: primary.ChecksumPair{
			Content: r.RebuiltContentChecksum,
			Bundle:  r.RebuiltBundleChecksum,
		},
		Detail:    r.Detail,
		CreatedAt: r.CreatedAt,
	}
	if receipt != nil {
		run.BaselineChecksums = primary.ChecksumPair{
			Content: receipt.ContentChecksum,
			Bundle:  receipt.BundleChecksum,
		}
	}
	return run
}

func (s *ContinuityServiceImpl) recordToReceipt(r *secondary.ReceiptRecord) *primary.Receipt {
	return &primary.Receipt{
		ID:                  r.ID,
		Repo:                r.Repo,
		TicketID:            r.TicketID,
		Role:                r.Role,
		Version:             r.Version,
		ContentChecksum:     r.ContentChecksum,
		BundleChecksum:      r.BundleChecksum,
		RequirementsDocID:   r.RequirementsDocID,
		RequirementsVersion: r.RequirementsVersion,
		CreatedAt:           r.CreatedAt,
	}
}

// Ensure ContinuityServiceImpl implements the interface.
var _ primary.ContinuityService = (*ContinuityServiceImpl)(nil)
