// Package nextactionnode contains the stage functions of the next-best-action
// workflow. Each function takes the shared run state, performs one stage, and
// returns the mutated state; the graph wiring lives in agent/nextaction.
package nextactionnode

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	contractx "github.com/suratin/leadpilot/agent/contract"
)

// GraphInput starts one suggestion pass. Feedback is empty on the first pass
// and carries the latest (only the latest) revision instruction afterwards.
type GraphInput struct {
	CustomerID string
	Feedback   string
}

type GraphOutput struct {
	Suggestion contractx.Suggestion
}

// GraphState is the transient per-run state. It is created by
// ValidateRequest, mutated by each stage, and discarded at the end of the
// run; it is never persisted.
type GraphState struct {
	RunID      string
	CustomerID string
	Feedback   string
	Now        time.Time

	History    contractx.HistoryReport
	Lead       contractx.LeadContext
	Suggestion contractx.Suggestion
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is empty", contractx.ErrInvalidIdentifier)
	}

	return &GraphState{
		RunID:      uuid.NewString(),
		CustomerID: customerID,
		Feedback:   strings.TrimSpace(in.Feedback),
		Now:        nowFn().UTC(),
	}, nil
}

// CommitInput starts the commit pipeline for an approved action.
type CommitInput struct {
	CustomerID string
	ActionText string
}

// CommitOutput reports what was durably written. SummaryStale is set when
// the interaction record was committed but the summary regeneration failed
// and the summary document was left untouched.
type CommitOutput struct {
	Record         contractx.InteractionRecord
	UpdatedSummary string
	SummaryStale   bool
}

type CommitState struct {
	RunID      string
	CustomerID string
	ActionText string
	Now        time.Time

	PreviousSummary string
	Record          contractx.InteractionRecord
	UpdatedSummary  string
	SummaryStale    bool
}

func ValidateCommit(in CommitInput, nowFn func() time.Time) (*CommitState, error) {
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is empty", contractx.ErrInvalidIdentifier)
	}
	if strings.TrimSpace(in.ActionText) == "" {
		return nil, fmt.Errorf("%w: approved action text is empty", contractx.ErrValidation)
	}

	return &CommitState{
		RunID:      uuid.NewString(),
		CustomerID: customerID,
		ActionText: in.ActionText,
		Now:        nowFn().UTC(),
	}, nil
}
