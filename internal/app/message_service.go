package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/example/tether/internal/ports/primary"
	"github.com/example/tether/internal/ports/secondary"
)

// MessageServiceImpl implements the MessageService interface. Replay
// safety rests entirely on the store's (project, thread, seq) unique
// constraint; the service holds no in-process sequencing state.
type MessageServiceImpl struct {
	messageRepo secondary.MessageRepository
}

// NewMessageService creates a new MessageService with injected dependencies.
func NewMessageService(messageRepo secondary.MessageRepository) *MessageServiceImpl {
	return &MessageServiceImpl{
		messageRepo: messageRepo,
	}
}

// AppendMessage appends one turn to a thread. A replayed (project,
// thread, seq) collapses into a duplicate outcome without touching the
// stored row.
func (s *MessageServiceImpl) AppendMessage(ctx context.Context, req primary.AppendMessageRequest) (*primary.AppendMessageResponse, error) {
	if strings.TrimSpace(req.Project) == "" {
		return nil, fmt.Errorf("project is required")
	}
	if strings.TrimSpace(req.Thread) == "" {
		return nil, fmt.Errorf("thread is required")
	}
	if req.Seq < 1 {
		return nil, fmt.Errorf("sequence number must be positive, got %d", req.Seq)
	}
	if strings.TrimSpace(req.Role) == "" {
		return nil, fmt.Errorf("role is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("content is required")
	}

	record := &secondary.MessageRecord{
		ID:      uuid.New().String(),
		Project: req.Project,
		Thread:  req.Thread,
		Seq:     req.Seq,
		Role:    req.Role,
		Content: req.Content,
	}

	err := s.messageRepo.Create(ctx, record)
	if errors.Is(err, secondary.ErrConflict) {
		return &primary.AppendMessageResponse{
			Outcome: primary.OutcomeDuplicate,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return &primary.AppendMessageResponse{
		Outcome:   primary.OutcomeAccepted,
		MessageID: record.ID,
	}, nil
}

// ThreadHistory retrieves a thread's messages in sequence order.
func (s *MessageServiceImpl) ThreadHistory(ctx context.Context, project, thread string) ([]*primary.Message, error) {
	records, err := s.messageRepo.ListThread(ctx, project, thread)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread: %w", err)
	}

	messages := make([]*primary.Message, len(records))
	for i, r := range records {
		messages[i] = s.recordToMessage(r)
	}
	return messages, nil
}

// NextSequence returns the next free sequence number for a thread.
// Advisory: a concurrent writer may claim it first, in which case the
// append surfaces as a duplicate and the caller re-reads.
func (s *MessageServiceImpl) NextSequence(ctx context.Context, project, thread string) (int, error) {
	seq, ok, err := s.messageRepo.MaxSequence(ctx, project, thread)
	if err != nil {
		return 0, fmt.Errorf("failed to get max sequence: %w", err)
	}
	if !ok {
		return 1, nil
	}
	return seq + 1, nil
}

// DetectGaps reports missing sequence numbers below the thread's
// current maximum. Gaps are diagnostic only.
func (s *MessageServiceImpl) DetectGaps(ctx context.Context, project, thread string) ([]int, error) {
	records, err := s.messageRepo.ListThread(ctx, project, thread)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread: %w", err)
	}

	present := make(map[int]bool, len(records))
	max := 0
	for _, r := range records {
		present[r.Seq] = true
		if r.Seq > max {
			max = r.Seq
		}
	}

	var gaps []int
	for seq := 1; seq < max; seq++ {
		if !present[seq] {
			gaps = append(gaps, seq)
		}
	}
	return gaps, nil
}

func (s *MessageServiceImpl) recordToMessage(r *secondary.MessageRecord) *primary.Message {
	return &primary.Message{
		ID:        r.ID,
		Project:   r.Project,
		Thread:    r.Thread,
		Seq:       r.Seq,
		Role:      r.Role,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

// Ensure MessageServiceImpl implements the interface.
var _ primary.MessageService = (*MessageServiceImpl)(nil)
