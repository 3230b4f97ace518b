package response

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/suratin/leadpilot/agent/nodes/response"
)

func (r *Recorder) compileRecordGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, r.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("fetch_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.FetchContext(ctx, in, r.store, r.store, r.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node fetch_context: %w", err)
	}

	if err := graph.AddLambdaNode("store_response",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.StoreResponse(ctx, in, r.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node store_response: %w", err)
	}

	if err := graph.AddLambdaNode("regenerate_summary",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RegenerateSummary(ctx, in, r.generator)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node regenerate_summary: %w", err)
	}

	if err := graph.AddLambdaNode("write_summary",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.WriteSummary(ctx, in, r.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node write_summary: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_record",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeRecord(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_record: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "fetch_context"},
		{"fetch_context", "store_response"},
		{"store_response", "regenerate_summary"},
		{"regenerate_summary", "write_summary"},
		{"write_summary", "finalize_record"},
		{"finalize_record", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("response.record"))
	if err != nil {
		return nil, fmt.Errorf("compile record graph: %w", err)
	}
	return runner, nil
}
