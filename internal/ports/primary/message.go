package primary

import "context"

// MessageService defines the primary port for conversation message
// operations.
type MessageService interface {
	// AppendMessage appends one turn to a conversation thread.
	// Replaying the same (project, thread, seq) is a safe no-op
	// reported as OutcomeDuplicate.
	AppendMessage(ctx context.Context, req AppendMessageRequest) (*AppendMessageResponse, error)

	// ThreadHistory retrieves a thread's messages in sequence order.
	ThreadHistory(ctx context.Context, project, thread string) ([]*Message, error)

	// NextSequence returns the next free sequence number for a thread.
	// Advisory only: the store's uniqueness constraint remains the
	// correctness mechanism.
	NextSequence(ctx context.Context, project, thread string) (int, error)

	// DetectGaps reports missing sequence numbers in a thread. Gaps
	// are diagnostic, never a correctness failure.
	DetectGaps(ctx context.Context, project, thread string) ([]int, error)
}

// Append outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate_ignored"
)

// AppendMessageRequest contains parameters for appending a message.
type AppendMessageRequest struct {
	Project string
	Thread  string
	Seq     int
	Role    string
	Content string
}

// AppendMessageResponse contains the result of a message append.
type AppendMessageResponse struct {
	Outcome   string // OutcomeAccepted or OutcomeDuplicate
	MessageID string // empty on duplicate
}

// Message represents a conversation turn at the port boundary.
type Message struct {
	ID        string
	Project   string
	Thread    string
	Seq       int
	Role      string
	Content   string
	CreatedAt string
}
