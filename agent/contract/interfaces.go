package contract

import (
	"context"
	"time"
)

// TextGenerator is the text-generation service: free-text prompt in,
// free text out. There is no structured output contract; callers parse
// what they need with keyword heuristics.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CustomerStore reads the externally-owned customer collection.
type CustomerStore interface {
	Exists(ctx context.Context, customerID string) (bool, error)
}

// InteractionStore owns the per-customer interaction log document
// (upsert-by-id, append-to-array semantics).
type InteractionStore interface {
	Log(ctx context.Context, customerID string) ([]InteractionRecord, error)
	Append(ctx context.Context, customerID string, rec InteractionRecord) error
	Count(ctx context.Context, customerID string) (int, error)
}

// SummaryStore owns the per-customer conversation summary document
// (upsert-by-id, set-field semantics). Read returns ErrSummaryNotFound when
// no summary has been written yet.
type SummaryStore interface {
	ReadSummary(ctx context.Context, customerID string) (ConversationSummary, error)
	WriteSummary(ctx context.Context, customerID string, summary string, at time.Time) error
}

// Store is the full document-store surface the workflows depend on.
type Store interface {
	CustomerStore
	InteractionStore
	SummaryStore
}

// Approver supplies the human side of the approval gate. Review blocks until
// the human answers; the returned string is the raw input (the accept token,
// or free-text revision feedback).
type Approver interface {
	Review(ctx context.Context, s Suggestion) (string, error)
}
