package nextactionnode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	actionx "github.com/suratin/leadpilot/agent/action"
	contractx "github.com/suratin/leadpilot/agent/contract"
	promptx "github.com/suratin/leadpilot/agent/prompt"
)

// LoadPreviousSummary reads the current rolling summary before any write so
// the regenerated summary folds the new action into the existing digest.
func LoadPreviousSummary(
	ctx context.Context,
	in *CommitState,
	summaries contractx.SummaryStore,
) (*CommitState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: commit state is nil", contractx.ErrValidation)
	}

	summary, err := summaries.ReadSummary(ctx, in.CustomerID)
	switch {
	case err == nil:
		in.PreviousSummary = summary.Summary
	case errors.Is(err, contractx.ErrSummaryNotFound):
		in.PreviousSummary = ""
	default:
		return nil, err
	}
	return in, nil
}

// AppendAction durably appends the approved action as an agent-sent
// interaction record. This is the first of the two commit writes; the two
// are not atomic.
func AppendAction(
	ctx context.Context,
	in *CommitState,
	interactions contractx.InteractionStore,
) (*CommitState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: commit state is nil", contractx.ErrValidation)
	}

	rec := contractx.InteractionRecord{
		Sender:  contractx.SenderAgent,
		Kind:    actionx.ClassifyKind(in.ActionText),
		Date:    in.Now,
		Summary: in.ActionText,
	}
	if err := interactions.Append(ctx, in.CustomerID, rec); err != nil {
		return nil, err
	}

	in.Record = rec
	return in, nil
}

// RegenerateSummary asks the model to fold the committed action into the
// rolling summary. Generation failure degrades: the interaction record from
// AppendAction stays committed and the summary write is skipped.
func RegenerateSummary(
	ctx context.Context,
	in *CommitState,
	generator contractx.TextGenerator,
) (*CommitState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: commit state is nil", contractx.ErrValidation)
	}

	p, err := promptx.RenderSummaryUpdate(in.PreviousSummary, in.ActionText)
	if err != nil {
		return nil, err
	}

	text, err := generator.Generate(ctx, p)
	if err != nil {
		if errors.Is(err, contractx.ErrGenerationFailed) {
			log.Warn().
				Str("run_id", in.RunID).
				Str("customer_id", in.CustomerID).
				Err(err).
				Msg("summary regeneration failed, committing interaction without summary update")
			in.SummaryStale = true
			in.UpdatedSummary = in.PreviousSummary
			return in, nil
		}
		return nil, err
	}

	in.UpdatedSummary = text
	return in, nil
}

// PersistSummary overwrites the summary document unless regeneration was
// skipped. A write failure here surfaces after the interaction record is
// already durable; there is no rollback.
func PersistSummary(
	ctx context.Context,
	in *CommitState,
	summaries contractx.SummaryStore,
) (*CommitState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: commit state is nil", contractx.ErrValidation)
	}
	if in.SummaryStale {
		return in, nil
	}

	if err := summaries.WriteSummary(ctx, in.CustomerID, in.UpdatedSummary, in.Now); err != nil {
		return nil, err
	}
	return in, nil
}

func FinalizeCommit(in *CommitState) (CommitOutput, error) {
	if in == nil {
		return CommitOutput{}, fmt.Errorf("%w: commit state is nil", contractx.ErrValidation)
	}
	return CommitOutput{
		Record:         in.Record,
		UpdatedSummary: in.UpdatedSummary,
		SummaryStale:   in.SummaryStale,
	}, nil
}
