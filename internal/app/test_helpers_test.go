package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/tether/internal/core/bundle"
	"github.com/example/tether/internal/ports/secondary"
)

// ============================================================================
// Mock TicketRepository
// ============================================================================

var _ secondary.TicketRepository = (*mockTicketRepo)(nil)

type mockTicketRepo struct {
	tickets   []*secondary.TicketRecord
	createErr error
}

func newMockTicketRepo() *mockTicketRepo {
	return &mockTicketRepo{}
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *secondary.TicketRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if ticket.ColumnName == "" {
		ticket.ColumnName = "backlog"
	}
	m.tickets = append(m.tickets, ticket)
	return nil
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id string) (*secondary.TicketRecord, error) {
	for _, t := range m.tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("ticket %s: %w", id, secondary.ErrNotFound)
}

func (m *mockTicketRepo) GetByDisplayID(ctx context.Context, repo, displayID string) (*secondary.TicketRecord, error) {
	for _, t := range m.tickets {
		if t.Repo == repo && t.DisplayID == displayID {
			return t, nil
		}
	}
	return nil, fmt.Errorf("ticket %s/%s: %w", repo, displayID, secondary.ErrNotFound)
}

func (m *mockTicketRepo) List(ctx context.Context, filters secondary.TicketFilters) ([]*secondary.TicketRecord, error) {
	var result []*secondary.TicketRecord
	for _, t := range m.tickets {
		if filters.Repo != "" && t.Repo != filters.Repo {
			continue
		}
		if filters.Column != "" && t.ColumnName != filters.Column {
			continue
		}
		result = append(result, t)
	}
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockTicketRepo) UpdateBody(ctx context.Context, id, title, body string) error {
	t, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	t.Title = title
	t.Body = body
	return nil
}

func (m *mockTicketRepo) MoveColumn(ctx context.Context, id, column string) error {
	t, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	t.ColumnName = column
	return nil
}

func (m *mockTicketRepo) NextDisplayID(ctx context.Context, repo string) (string, error) {
	count := 0
	for _, t := range m.tickets {
		if t.Repo == repo {
			count++
		}
	}
	return fmt.Sprintf("TICK-%03d", count+1), nil
}

// ============================================================================
// Mock ArtifactRepository
// ============================================================================

var _ secondary.ArtifactRepository = (*mockArtifactRepo)(nil)

// mockArtifactRepo stores artifacts in insertion order, matching the
// oldest-first contract of GetByIdentity. Setting conflictNext makes
// the next Create fail with ErrConflict after inserting conflictWinner,
// simulating a concurrent writer claiming the identity between the
// caller's read and its insert.
type mockArtifactRepo struct {
	artifacts      []*secondary.ArtifactRecord
	conflictNext   bool
	conflictWinner *secondary.ArtifactRecord
	createErr      error
	updateErr      error
}

func newMockArtifactRepo() *mockArtifactRepo {
	return &mockArtifactRepo{}
}

func (m *mockArtifactRepo) Create(ctx context.Context, artifact *secondary.ArtifactRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.conflictNext {
		m.conflictNext = false
		if m.conflictWinner != nil {
			m.artifacts = append(m.artifacts, m.conflictWinner)
		}
		return secondary.ErrConflict
	}
	for _, a := range m.artifacts {
		if a.TicketID == artifact.TicketID && a.AgentCategory == artifact.AgentCategory && a.ArtifactType == artifact.ArtifactType {
			return secondary.ErrConflict
		}
	}
	if artifact.Revision == 0 {
		artifact.Revision = 1
	}
	m.artifacts = append(m.artifacts, artifact)
	return nil
}

func (m *mockArtifactRepo) GetByID(ctx context.Context, id string) (*secondary.ArtifactRecord, error) {
	for _, a := range m.artifacts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("artifact %s: %w", id, secondary.ErrNotFound)
}

func (m *mockArtifactRepo) GetByIdentity(ctx context.Context, ticketID, agentCategory, artifactType string) ([]*secondary.ArtifactRecord, error) {
	var result []*secondary.ArtifactRecord
	for _, a := range m.artifacts {
		if a.TicketID == ticketID && a.AgentCategory == agentCategory && a.ArtifactType == artifactType {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockArtifactRepo) Update(ctx context.Context, id, title, body string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	a, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	a.Title = title
	a.Body = body
	a.Revision++
	return nil
}

func (m *mockArtifactRepo) Delete(ctx context.Context, id string) error {
	for i, a := range m.artifacts {
		if a.ID == id {
			m.artifacts = append(m.artifacts[:i], m.artifacts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("artifact %s: %w", id, secondary.ErrNotFound)
}

func (m *mockArtifactRepo) ListByTicket(ctx context.Context, ticketID string) ([]*secondary.ArtifactRecord, error) {
	var result []*secondary.ArtifactRecord
	for _, a := range m.artifacts {
		if a.TicketID == ticketID {
			result = append(result, a)
		}
	}
	return result, nil
}

// ============================================================================
// Mock MessageRepository
// ============================================================================

var _ secondary.MessageRepository = (*mockMessageRepo)(nil)

type mockMessageRepo struct {
	messages  []*secondary.MessageRecord
	createErr error
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{}
}

func (m *mockMessageRepo) Create(ctx context.Context, message *secondary.MessageRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, msg := range m.messages {
		if msg.Project == message.Project && msg.Thread == message.Thread && msg.Seq == message.Seq {
			return secondary.ErrConflict
		}
	}
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockMessageRepo) ListThread(ctx context.Context, project, thread string) ([]*secondary.MessageRecord, error) {
	var result []*secondary.MessageRecord
	for _, msg := range m.messages {
		if msg.Project == project && msg.Thread == thread {
			result = append(result, msg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

func (m *mockMessageRepo) MaxSequence(ctx context.Context, project, thread string) (int, bool, error) {
	max := 0
	found := false
	for _, msg := range m.messages {
		if msg.Project == project && msg.Thread == thread {
			found = true
			if msg.Seq > max {
				max = msg.Seq
			}
		}
	}
	return max, found, nil
}

// ============================================================================
// Mock ReceiptRepository
// ============================================================================

var _ secondary.ReceiptRepository = (*mockReceiptRepo)(nil)

type mockReceiptRepo struct {
	receipts  []*secondary.ReceiptRecord
	createErr error
}

func newMockReceiptRepo() *mockReceiptRepo {
	return &mockReceiptRepo{}
}

func (m *mockReceiptRepo) Create(ctx context.Context, receipt *secondary.ReceiptRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.receipts = append(m.receipts, receipt)
	return nil
}

func (m *mockReceiptRepo) GetByID(ctx context.Context, id string) (*secondary.ReceiptRecord, error) {
	for _, r := range m.receipts {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("receipt %s: %w", id, secondary.ErrNotFound)
}

func (m *mockReceiptRepo) Latest(ctx context.Context, repo, ticketID, role string) (*secondary.ReceiptRecord, error) {
	var latest *secondary.ReceiptRecord
	for _, r := range m.receipts {
		if r.Repo == repo && r.TicketID == ticketID && r.Role == role {
			if latest == nil || r.Version > latest.Version {
				latest = r
			}
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("receipt for %s/%s/%s: %w", repo, ticketID, role, secondary.ErrNotFound)
	}
	return latest, nil
}

func (m *mockReceiptRepo) List(ctx context.Context, filters secondary.ReceiptFilters) ([]*secondary.ReceiptRecord, error) {
	var result []*secondary.ReceiptRecord
	for _, r := range m.receipts {
		if filters.Repo != "" && r.Repo != filters.Repo {
			continue
		}
		if filters.TicketID != "" && r.TicketID != filters.TicketID {
			continue
		}
		if filters.Role != "" && r.Role != filters.Role {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version > result[j].Version })
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockReceiptRepo) NextVersion(ctx context.Context, repo, ticketID, role string) (int, error) {
	max := 0
	for _, r := range m.receipts {
		if r.Repo == repo && r.TicketID == ticketID && r.Role == role && r.Version > max {
			max = r.Version
		}
	}
	return max + 1, nil
}

// ============================================================================
// Mock CheckRunRepository
// ============================================================================

var _ secondary.CheckRunRepository = (*mockCheckRunRepo)(nil)

type mockCheckRunRepo struct {
	runs      []*secondary.CheckRunRecord
	createErr error
}

func newMockCheckRunRepo() *mockCheckRunRepo {
	return &mockCheckRunRepo{}
}

func (m *mockCheckRunRepo) Create(ctx context.Context, run *secondary.CheckRunRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockCheckRunRepo) GetByID(ctx context.Context, id string) (*secondary.CheckRunRecord, error) {
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("check run %s: %w", id, secondary.ErrNotFound)
}

func (m *mockCheckRunRepo) List(ctx context.Context, filters secondary.CheckRunFilters) ([]*secondary.CheckRunRecord, error) {
	var result []*secondary.CheckRunRecord
	// Most recent first.
	for i := len(m.runs) - 1; i >= 0; i-- {
		r := m.runs[i]
		if filters.ReceiptID != "" && r.ReceiptID != filters.ReceiptID {
			continue
		}
		if filters.Repo != "" && r.Repo != filters.Repo {
			continue
		}
		if filters.TicketID != "" && r.TicketID != filters.TicketID {
			continue
		}
		result = append(result, r)
	}
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

// ============================================================================
// Mock BundleBuilder
// ============================================================================

var _ secondary.BundleBuilder = (*mockBundleBuilder)(nil)

type mockBundleBuilder struct {
	result   *bundle.Bundle
	buildErr error
	buildFn  func(secondary.BuildInput) (*bundle.Bundle, error)
	calls    []secondary.BuildInput
}

func newMockBundleBuilder() *mockBundleBuilder {
	return &mockBundleBuilder{}
}

func (m *mockBundleBuilder) Build(ctx context.Context, input secondary.BuildInput) (*bundle.Bundle, error) {
	m.calls = append(m.calls, input)
	if m.buildFn != nil {
		return m.buildFn(input)
	}
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	if m.result != nil {
		// Rebind to the requested target so checksums reflect the
		// binding under test.
		b := *m.result
		b.Binding = bundle.Binding{
			Repo:     input.Repo,
			TicketID: input.TicketID,
			Role:     input.Role,
			Version:  input.Version,
		}
		return &b, nil
	}
	return &bundle.Bundle{
		Binding: bundle.Binding{
			Repo:     input.Repo,
			TicketID: input.TicketID,
			Role:     input.Role,
			Version:  input.Version,
		},
	}, nil
}
