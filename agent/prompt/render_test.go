package prompt

import (
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/suratin/leadpilot/agent/contract"
)

func record(i int, kind contractx.Kind) contractx.InteractionRecord {
	return contractx.InteractionRecord{
		Sender:  contractx.SenderAgent,
		Kind:    kind,
		Date:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		Summary: fmt.Sprintf("interaction %d", i),
	}
}

func TestRenderNextActionFirstContact(t *testing.T) {
	t.Parallel()

	got, err := RenderNextAction("cust-1", contractx.LeadContext{
		Interactions: nil,
		Summary:      contractx.FirstContactSummary,
	}, false, "")
	if err != nil {
		t.Fatalf("RenderNextAction() error = %v", err)
	}

	if !strings.Contains(got, "CUSTOMER ID: cust-1") {
		t.Fatalf("prompt missing customer id:\n%s", got)
	}
	if !strings.Contains(got, "FIRST contact") {
		t.Fatalf("prompt missing first-contact context:\n%s", got)
	}
	if strings.Contains(got, "RECENT INTERACTIONS") {
		t.Fatalf("first-contact prompt must not list interactions:\n%s", got)
	}
	if strings.Contains(got, "ADDITIONAL INSTRUCTION") {
		t.Fatalf("prompt without feedback must not carry instruction block:\n%s", got)
	}
}

func TestRenderNextActionLimitsToRecentWindow(t *testing.T) {
	t.Parallel()

	var recs []contractx.InteractionRecord
	for i := 0; i < 8; i++ {
		recs = append(recs, record(i, contractx.KindEmail))
	}

	got, err := RenderNextAction("cust-2", contractx.LeadContext{
		Interactions: recs,
		Summary:      "warm lead, asked for pricing",
	}, true, "")
	if err != nil {
		t.Fatalf("RenderNextAction() error = %v", err)
	}

	if !strings.Contains(got, "warm lead, asked for pricing") {
		t.Fatalf("prompt missing summary:\n%s", got)
	}
	for i := 0; i < 3; i++ {
		if strings.Contains(got, fmt.Sprintf("interaction %d", i)) {
			t.Fatalf("prompt must not include interaction %d (outside window):\n%s", i, got)
		}
	}
	for i := 3; i < 8; i++ {
		if !strings.Contains(got, fmt.Sprintf("interaction %d", i)) {
			t.Fatalf("prompt missing interaction %d:\n%s", i, got)
		}
	}
}

func TestRenderNextActionAppendsLatestFeedbackOnly(t *testing.T) {
	t.Parallel()

	lead := contractx.LeadContext{
		Interactions: []contractx.InteractionRecord{record(0, contractx.KindCall)},
		Summary:      "s",
	}

	got, err := RenderNextAction("cust-3", lead, true, "make it shorter")
	if err != nil {
		t.Fatalf("RenderNextAction() error = %v", err)
	}
	if !strings.Contains(got, "Please modify the suggestion: make it shorter") {
		t.Fatalf("prompt missing feedback instruction:\n%s", got)
	}

	// A later pass with new feedback carries only that feedback.
	got2, err := RenderNextAction("cust-3", lead, true, "more formal tone")
	if err != nil {
		t.Fatalf("RenderNextAction() error = %v", err)
	}
	if strings.Contains(got2, "make it shorter") {
		t.Fatalf("prompt must not accumulate prior feedback:\n%s", got2)
	}
	if !strings.Contains(got2, "more formal tone") {
		t.Fatalf("prompt missing latest feedback:\n%s", got2)
	}
}

func TestRenderNextActionDeterministic(t *testing.T) {
	t.Parallel()

	lead := contractx.LeadContext{
		Interactions: []contractx.InteractionRecord{record(0, contractx.KindMeeting), record(1, contractx.KindEmail)},
		Summary:      "negotiating",
	}
	first, err := RenderNextAction("cust-4", lead, true, "")
	if err != nil {
		t.Fatalf("RenderNextAction() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := RenderNextAction("cust-4", lead, true, "")
		if err != nil {
			t.Fatalf("RenderNextAction() error = %v", err)
		}
		if again != first {
			t.Fatal("RenderNextAction is not deterministic for identical input")
		}
	}
}

func TestRenderSummaryUpdateEmptyPrevious(t *testing.T) {
	t.Parallel()

	got, err := RenderSummaryUpdate("   ", "call the lead on Monday")
	if err != nil {
		t.Fatalf("RenderSummaryUpdate() error = %v", err)
	}
	if !strings.Contains(got, "No previous summary") {
		t.Fatalf("empty previous summary must render placeholder:\n%s", got)
	}
	if !strings.Contains(got, "call the lead on Monday") {
		t.Fatalf("prompt missing action text:\n%s", got)
	}
	if !strings.Contains(got, "max 200 words") {
		t.Fatalf("prompt missing length bound:\n%s", got)
	}
}

func TestRenderResponseSummary(t *testing.T) {
	t.Parallel()

	got, err := RenderResponseSummary("they want a demo", "Last agent message (email): sent pricing", contractx.KindCall, "we need two more weeks")
	if err != nil {
		t.Fatalf("RenderResponseSummary() error = %v", err)
	}
	for _, want := range []string{"they want a demo", "sent pricing", "Type: call", "we need two more weeks", "max 250 words"} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt missing %q:\n%s", want, got)
		}
	}
}
