// Package responsenode contains the stage functions of the customer-response
// recorder: fetch context, append the inbound interaction, fold it into the
// rolling summary.
package responsenode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/suratin/leadpilot/agent/contract"
	promptx "github.com/suratin/leadpilot/agent/prompt"
)

const (
	noSummaryNote      = "No previous interactions recorded."
	noAgentMessageNote = "No previous agent message (this may be inbound inquiry)"
)

type GraphInput struct {
	CustomerID   string
	Kind         contractx.Kind
	ResponseText string
}

type GraphOutput struct {
	UpdatedSummary string
}

type GraphState struct {
	RunID        string
	CustomerID   string
	Kind         contractx.Kind
	ResponseText string
	Now          time.Time

	CurrentSummary string
	LastAgentNote  string
	UpdatedSummary string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is empty", contractx.ErrInvalidIdentifier)
	}
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: unsupported interaction kind=%q", contractx.ErrValidation, in.Kind)
	}
	if strings.TrimSpace(in.ResponseText) == "" {
		return nil, fmt.Errorf("%w: customer response text is empty", contractx.ErrValidation)
	}

	return &GraphState{
		RunID:        uuid.NewString(),
		CustomerID:   customerID,
		Kind:         in.Kind,
		ResponseText: strings.TrimSpace(in.ResponseText),
		Now:          nowFn().UTC(),
	}, nil
}

// FetchContext loads the current summary and the last agent-sent interaction
// so the regenerated summary keeps the thread of what the agent said last.
func FetchContext(
	ctx context.Context,
	in *GraphState,
	customers contractx.CustomerStore,
	interactions contractx.InteractionStore,
	summaries contractx.SummaryStore,
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

	summary, err := summaries.ReadSummary(ctx, in.CustomerID)
	switch {
	case err == nil:
		in.CurrentSummary = summary.Summary
	case errors.Is(err, contractx.ErrSummaryNotFound):
		in.CurrentSummary = noSummaryNote
	default:
		return nil, err
	}

	records, err := interactions.Log(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	in.LastAgentNote = lastAgentNote(records)

	return in, nil
}

func lastAgentNote(records []contractx.InteractionRecord) string {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Sender == contractx.SenderAgent {
			return fmt.Sprintf("Last agent message (%s): %s", records[i].Kind, records[i].Summary)
		}
	}
	return noAgentMessageNote
}

// StoreResponse appends the customer's reply as an interaction record.
func StoreResponse(
	ctx context.Context,
	in *GraphState,
	interactions contractx.InteractionStore,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	rec := contractx.InteractionRecord{
		Sender:  contractx.SenderCustomer,
		Kind:    in.Kind,
		Date:    in.Now,
		Summary: in.ResponseText,
	}
	if err := interactions.Append(ctx, in.CustomerID, rec); err != nil {
		return nil, err
	}
	return in, nil
}

// RegenerateSummary folds the customer response into the rolling summary.
// Generation failure falls back to the previous summary text, which is still
// written so last_updated reflects the new interaction.
func RegenerateSummary(
	ctx context.Context,
	in *GraphState,
	generator contractx.TextGenerator,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	p, err := promptx.RenderResponseSummary(in.CurrentSummary, in.LastAgentNote, in.Kind, in.ResponseText)
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
				Msg("response summary regeneration failed, keeping previous summary")
			in.UpdatedSummary = in.CurrentSummary
			return in, nil
		}
		return nil, err
	}

	in.UpdatedSummary = text
	return in, nil
}

func WriteSummary(
	ctx context.Context,
	in *GraphState,
	summaries contractx.SummaryStore,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if err := summaries.WriteSummary(ctx, in.CustomerID, in.UpdatedSummary, in.Now); err != nil {
		return nil, err
	}
	return in, nil
}

func FinalizeRecord(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return GraphOutput{UpdatedSummary: in.UpdatedSummary}, nil
}
