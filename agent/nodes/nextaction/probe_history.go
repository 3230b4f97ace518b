package nextactionnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/suratin/leadpilot/agent/contract"
)

// ProbeHistory confirms the customer exists and counts prior interactions.
// A known customer with zero interactions is a normal has_history=false
// outcome, not an error.
func ProbeHistory(
	ctx context.Context,
	in *GraphState,
	customers contractx.CustomerStore,
	interactions contractx.InteractionStore,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	exists, err := customers.Exists(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: customer id=%s", contractx.ErrNotFound, in.CustomerID)
	}

	count, err := interactions.Count(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	in.History = contractx.HistoryReport{
		Exists:           true,
		HasHistory:       count > 0,
		InteractionCount: count,
	}

	log.Debug().
		Str("run_id", in.RunID).
		Str("customer_id", in.CustomerID).
		Bool("has_history", in.History.HasHistory).
		Int("interaction_count", count).
		Msg("probed customer history")

	return in, nil
}
