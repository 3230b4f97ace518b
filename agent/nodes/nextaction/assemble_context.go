package nextactionnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/suratin/leadpilot/agent/contract"
)

// AssembleContext loads the interaction log and rolling summary for a known
// customer, or synthesizes the first-contact context for a new one. Store
// read failures propagate; acting on silently incomplete context would be
// worse than failing the run.
func AssembleContext(
	ctx context.Context,
	in *GraphState,
	interactions contractx.InteractionStore,
	summaries contractx.SummaryStore,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if !in.History.HasHistory {
		in.Lead = contractx.LeadContext{
			Interactions: []contractx.InteractionRecord{},
			Summary:      contractx.FirstContactSummary,
		}
		return in, nil
	}

	records, err := interactions.Log(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	summaryText := ""
	summary, err := summaries.ReadSummary(ctx, in.CustomerID)
	switch {
	case err == nil:
		summaryText = summary.Summary
	case errors.Is(err, contractx.ErrSummaryNotFound):
		// History without a summary yet written degrades to empty.
	default:
		return nil, err
	}

	in.Lead = contractx.LeadContext{
		Interactions: records,
		Summary:      summaryText,
	}
	return in, nil
}
