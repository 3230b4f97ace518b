// Package response records an inbound customer reply: it appends the reply
// to the interaction log and folds it into the rolling conversation summary.
package response

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/suratin/leadpilot/agent/contract"
	nodex "github.com/suratin/leadpilot/agent/nodes/response"
)

type Recorder struct {
	store     contractx.Store
	generator contractx.TextGenerator

	recordRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(store contractx.Store, generator contractx.TextGenerator) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("document store is required")
	}
	if generator == nil {
		return nil, errors.New("text generator is required")
	}

	r := &Recorder{
		store:     store,
		generator: generator,
		now:       time.Now,
	}

	recordRunner, err := r.compileRecordGraph(context.Background())
	if err != nil {
		return nil, err
	}
	r.recordRunner = recordRunner

	return r, nil
}

// Record appends the customer's reply and returns the regenerated summary.
// If summary regeneration fails the previous summary text is kept and
// rewritten; the appended record is never rolled back.
func (r *Recorder) Record(ctx context.Context, customerID string, kind contractx.Kind, responseText string) (string, error) {
	out, err := r.recordRunner.Invoke(ctx, nodex.GraphInput{
		CustomerID:   customerID,
		Kind:         kind,
		ResponseText: responseText,
	})
	if err != nil {
		return "", err
	}
	return out.UpdatedSummary, nil
}
