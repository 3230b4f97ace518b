package nextactionnode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	actionx "github.com/suratin/leadpilot/agent/action"
	contractx "github.com/suratin/leadpilot/agent/contract"
	promptx "github.com/suratin/leadpilot/agent/prompt"
)

// GenerateSuggestion asks the model for the next best action. A failed
// generation is fatal to the run; the approval gate never sees a partial
// suggestion.
func GenerateSuggestion(
	ctx context.Context,
	in *GraphState,
	generator contractx.TextGenerator,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	p, err := promptx.RenderNextAction(in.CustomerID, in.Lead, in.History.HasHistory, in.Feedback)
	if err != nil {
		return nil, err
	}

	text, err := generator.Generate(ctx, p)
	if err != nil {
		return nil, err
	}

	in.Suggestion = contractx.Suggestion{
		Text:           text,
		Recommendation: actionx.DetectRecommendation(text),
	}

	log.Debug().
		Str("run_id", in.RunID).
		Str("customer_id", in.CustomerID).
		Str("recommendation", string(in.Suggestion.Recommendation)).
		Bool("revision", in.Feedback != "").
		Msg("generated next-action suggestion")

	return in, nil
}

func FinalizeSuggestion(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Suggestion.Text == "" {
		return GraphOutput{}, fmt.Errorf("%w: suggestion text is empty", contractx.ErrGenerationFailed)
	}
	return GraphOutput{Suggestion: in.Suggestion}, nil
}
