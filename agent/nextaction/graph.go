package nextaction

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/suratin/leadpilot/agent/nodes/nextaction"
)

func (w *Workflow) compileSuggestGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, w.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("probe_history",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ProbeHistory(ctx, in, w.store, w.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node probe_history: %w", err)
	}

	if err := graph.AddLambdaNode("assemble_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AssembleContext(ctx, in, w.store, w.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node assemble_context: %w", err)
	}

	if err := graph.AddLambdaNode("generate_suggestion",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.GenerateSuggestion(ctx, in, w.generator)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_suggestion: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_suggestion",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeSuggestion(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_suggestion: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "probe_history"},
		{"probe_history", "assemble_context"},
		{"assemble_context", "generate_suggestion"},
		{"generate_suggestion", "finalize_suggestion"},
		{"finalize_suggestion", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("nextaction.suggest"))
	if err != nil {
		return nil, fmt.Errorf("compile suggest graph: %w", err)
	}
	return runner, nil
}

func (w *Workflow) compileCommitGraph(
	ctx context.Context,
) (compose.Runnable[nodex.CommitInput, nodex.CommitOutput], error) {
	graph := compose.NewGraph[nodex.CommitInput, nodex.CommitOutput]()

	if err := graph.AddLambdaNode("validate_commit",
		compose.InvokableLambda(func(ctx context.Context, in nodex.CommitInput) (*nodex.CommitState, error) {
			return nodex.ValidateCommit(in, w.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_commit: %w", err)
	}

	if err := graph.AddLambdaNode("load_previous_summary",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.CommitState) (*nodex.CommitState, error) {
			return nodex.LoadPreviousSummary(ctx, in, w.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_previous_summary: %w", err)
	}

	if err := graph.AddLambdaNode("append_action",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.CommitState) (*nodex.CommitState, error) {
			return nodex.AppendAction(ctx, in, w.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_action: %w", err)
	}

	if err := graph.AddLambdaNode("regenerate_summary",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.CommitState) (*nodex.CommitState, error) {
			return nodex.RegenerateSummary(ctx, in, w.generator)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node regenerate_summary: %w", err)
	}

	if err := graph.AddLambdaNode("persist_summary",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.CommitState) (*nodex.CommitState, error) {
			return nodex.PersistSummary(ctx, in, w.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_summary: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_commit",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.CommitState) (nodex.CommitOutput, error) {
			return nodex.FinalizeCommit(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_commit: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_commit"},
		{"validate_commit", "load_previous_summary"},
		{"load_previous_summary", "append_action"},
		{"append_action", "regenerate_summary"},
		{"regenerate_summary", "persist_summary"},
		{"persist_summary", "finalize_commit"},
		{"finalize_commit", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("nextaction.commit"))
	if err != nil {
		return nil, fmt.Errorf("compile commit graph: %w", err)
	}
	return runner, nil
}
