package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	contractx "github.com/suratin/leadpilot/agent/contract"
)

var (
	//go:embed template/next_action.txt
	nextActionRaw string

	//go:embed template/summary_update.txt
	summaryUpdateRaw string

	//go:embed template/response_summary.txt
	responseSummaryRaw string
)

var (
	nextActionTmpl      = template.Must(template.New("next_action").Parse(strings.TrimSpace(nextActionRaw)))
	summaryUpdateTmpl   = template.Must(template.New("summary_update").Parse(strings.TrimSpace(summaryUpdateRaw)))
	responseSummaryTmpl = template.Must(template.New("response_summary").Parse(strings.TrimSpace(responseSummaryRaw)))
)

// RecentWindow is how many trailing interaction records are rendered into the
// next-action prompt. The full log is never sent; the rolling summary carries
// the older history.
const RecentWindow = 5

const firstContactContext = "This is the FIRST contact with this lead. No previous interaction history."

// RenderNextAction builds the suggestion prompt deterministically from the
// assembled lead context. On a revision pass only the latest feedback is
// appended; earlier withdrawn suggestions are not carried over.
func RenderNextAction(customerID string, lead contractx.LeadContext, hasHistory bool, feedback string) (string, error) {
	data := struct {
		CustomerID string
		Context    string
		Feedback   string
	}{
		CustomerID: customerID,
		Context:    renderLeadContext(lead, hasHistory),
		Feedback:   strings.TrimSpace(feedback),
	}

	var b strings.Builder
	if err := nextActionTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("%w: render next-action prompt: %v", contractx.ErrValidation, err)
	}
	return b.String(), nil
}

// RenderSummaryUpdate builds the commit-stage prompt that folds an approved
// action into the rolling summary.
func RenderSummaryUpdate(previousSummary, actionText string) (string, error) {
	prev := strings.TrimSpace(previousSummary)
	if prev == "" {
		prev = "No previous summary"
	}

	data := struct {
		PreviousSummary string
		ActionText      string
	}{PreviousSummary: prev, ActionText: actionText}

	var b strings.Builder
	if err := summaryUpdateTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("%w: render summary prompt: %v", contractx.ErrValidation, err)
	}
	return b.String(), nil
}

// RenderResponseSummary builds the prompt that folds an inbound customer
// response into the rolling summary.
func RenderResponseSummary(currentSummary, lastAgentNote string, kind contractx.Kind, responseText string) (string, error) {
	data := struct {
		CurrentSummary string
		LastAgentNote  string
		Kind           contractx.Kind
		ResponseText   string
	}{
		CurrentSummary: currentSummary,
		LastAgentNote:  lastAgentNote,
		Kind:           kind,
		ResponseText:   responseText,
	}

	var b strings.Builder
	if err := responseSummaryTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("%w: render response summary prompt: %v", contractx.ErrValidation, err)
	}
	return b.String(), nil
}

func renderLeadContext(lead contractx.LeadContext, hasHistory bool) string {
	if !hasHistory {
		return firstContactContext
	}

	var b strings.Builder
	b.WriteString("CONVERSATION SUMMARY:\n")
	b.WriteString(lead.Summary)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "RECENT INTERACTIONS (Last %d):\n", RecentWindow)
	for _, rec := range lastN(lead.Interactions, RecentWindow) {
		fmt.Fprintf(&b, "- %s: [%s] %s: %s\n", rec.Date.UTC().Format(time.RFC3339), rec.Kind, rec.Sender, rec.Summary)
	}
	return strings.TrimRight(b.String(), "\n")
}

func lastN(records []contractx.InteractionRecord, n int) []contractx.InteractionRecord {
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}
