// Package nextaction sequences the next-best-action workflow: probe history,
// assemble context, generate a suggestion, run the human approval gate, and
// commit the approved action with a regenerated rolling summary.
package nextaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/suratin/leadpilot/agent/contract"
	nodex "github.com/suratin/leadpilot/agent/nodes/nextaction"
)

// AcceptToken is the fixed approval token. Matching is case-insensitive on
// the trimmed input; any other input, including empty, is treated as
// revision feedback, never as approval.
const AcceptToken = "ok"

var ErrRevisionLimit = errors.New("revision limit reached")

type Config struct {
	// MaxRevisions caps the rejection-regenerate loop in Run. 0 keeps the
	// loop unbounded.
	MaxRevisions int `envconfig:"MAX_REVISIONS" split_words:"true" default:"0"`
}

// Workflow owns the compiled stage graphs and the injected collaborators.
// One Workflow serves many runs; per-run state lives in the graph state and
// is discarded when the run ends. Nothing serializes concurrent runs for the
// same customer id; callers must not issue two at once.
type Workflow struct {
	store     contractx.Store
	generator contractx.TextGenerator

	suggestRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
	commitRunner  compose.Runnable[nodex.CommitInput, nodex.CommitOutput]

	maxRevisions int
	now          func() time.Time
}

func New(store contractx.Store, generator contractx.TextGenerator, cfg Config) (*Workflow, error) {
	if store == nil {
		return nil, errors.New("document store is required")
	}
	if generator == nil {
		return nil, errors.New("text generator is required")
	}
	if cfg.MaxRevisions < 0 {
		return nil, fmt.Errorf("%w: max revisions must be >= 0", contractx.ErrValidation)
	}

	w := &Workflow{
		store:        store,
		generator:    generator,
		maxRevisions: cfg.MaxRevisions,
		now:          time.Now,
	}

	suggestRunner, err := w.compileSuggestGraph(context.Background())
	if err != nil {
		return nil, err
	}
	w.suggestRunner = suggestRunner

	commitRunner, err := w.compileCommitGraph(context.Background())
	if err != nil {
		return nil, err
	}
	w.commitRunner = commitRunner

	return w, nil
}

// IsApproval reports whether input matches the accept token.
func IsApproval(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), AcceptToken)
}

// Start runs probe -> assemble -> generate and stops before any write. The
// returned suggestion must come back through Resume to be committed.
func (w *Workflow) Start(ctx context.Context, customerID string) (contractx.StartResult, error) {
	out, err := w.suggestRunner.Invoke(ctx, nodex.GraphInput{CustomerID: customerID})
	if err != nil {
		return contractx.StartResult{}, err
	}
	return contractx.StartResult{
		Suggestion:    out.Suggestion,
		NeedsApproval: true,
	}, nil
}

// Resume runs the approval gate on input. The accept token commits pending;
// anything else, the empty string included, is recorded as revision
// feedback and produces a fresh suggestion built from the original context
// plus only this latest feedback.
func (w *Workflow) Resume(
	ctx context.Context,
	customerID string,
	input string,
	pending contractx.Suggestion,
) (contractx.ResumeResult, error) {
	if IsApproval(input) {
		out, err := w.commitRunner.Invoke(ctx, nodex.CommitInput{
			CustomerID: customerID,
			ActionText: pending.Text,
		})
		if err != nil {
			return contractx.ResumeResult{}, err
		}

		log.Info().
			Str("customer_id", customerID).
			Str("kind", string(out.Record.Kind)).
			Bool("summary_stale", out.SummaryStale).
			Msg("committed approved action")

		return contractx.ResumeResult{
			Status:         contractx.StatusCommitted,
			UpdatedSummary: out.UpdatedSummary,
			SummaryStale:   out.SummaryStale,
		}, nil
	}

	out, err := w.suggestRunner.Invoke(ctx, nodex.GraphInput{
		CustomerID: customerID,
		Feedback:   input,
	})
	if err != nil {
		return contractx.ResumeResult{}, err
	}

	return contractx.ResumeResult{
		Status:        contractx.StatusNeedsApproval,
		Suggestion:    out.Suggestion,
		NeedsApproval: true,
	}, nil
}

// Run drives the full interactive loop against an Approver: generate, gate,
// regenerate on rejection, commit on approval. With MaxRevisions 0 the loop
// is unbounded; otherwise exceeding the cap fails with ErrRevisionLimit.
func (w *Workflow) Run(ctx context.Context, customerID string, approver contractx.Approver) (contractx.ResumeResult, error) {
	if approver == nil {
		return contractx.ResumeResult{}, fmt.Errorf("%w: approver is required", contractx.ErrValidation)
	}

	start, err := w.Start(ctx, customerID)
	if err != nil {
		return contractx.ResumeResult{}, err
	}
	suggestion := start.Suggestion

	revisions := 0
	for {
		input, err := approver.Review(ctx, suggestion)
		if err != nil {
			return contractx.ResumeResult{}, err
		}

		if !IsApproval(input) {
			revisions++
			if w.maxRevisions > 0 && revisions > w.maxRevisions {
				return contractx.ResumeResult{}, fmt.Errorf("%w: after %d revisions", ErrRevisionLimit, w.maxRevisions)
			}
		}

		res, err := w.Resume(ctx, customerID, input, suggestion)
		if err != nil {
			return contractx.ResumeResult{}, err
		}
		if res.Status == contractx.StatusCommitted {
			return res, nil
		}
		suggestion = res.Suggestion
	}
}
