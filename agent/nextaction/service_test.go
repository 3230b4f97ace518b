package nextaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/suratin/leadpilot/agent/contract"
)

type fakeStore struct {
	customers map[string]bool
	logs      map[string][]contractx.InteractionRecord
	summaries map[string]contractx.ConversationSummary

	existsErr error
	logErr    error
	appendErr error
	countErr  error
	readErr   error
	writeErr  error

	appendCalls int
	writeCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: map[string]bool{},
		logs:      map[string][]contractx.InteractionRecord{},
		summaries: map[string]contractx.ConversationSummary{},
	}
}

func (f *fakeStore) Exists(ctx context.Context, customerID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.customers[customerID], nil
}

func (f *fakeStore) Log(ctx context.Context, customerID string) ([]contractx.InteractionRecord, error) {
	if f.logErr != nil {
		return nil, f.logErr
	}
	return append([]contractx.InteractionRecord(nil), f.logs[customerID]...), nil
}

func (f *fakeStore) Append(ctx context.Context, customerID string, rec contractx.InteractionRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appendCalls++
	f.logs[customerID] = append(f.logs[customerID], rec)
	return nil
}

func (f *fakeStore) Count(ctx context.Context, customerID string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.logs[customerID]), nil
}

func (f *fakeStore) ReadSummary(ctx context.Context, customerID string) (contractx.ConversationSummary, error) {
	if f.readErr != nil {
		return contractx.ConversationSummary{}, f.readErr
	}
	s, ok := f.summaries[customerID]
	if !ok {
		return contractx.ConversationSummary{}, contractx.ErrSummaryNotFound
	}
	return s, nil
}

func (f *fakeStore) WriteSummary(ctx context.Context, customerID string, summary string, at time.Time) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writeCalls++
	f.summaries[customerID] = contractx.ConversationSummary{
		CustomerID:  customerID,
		Summary:     summary,
		LastUpdated: at,
	}
	return nil
}

type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	idx := f.calls - 1
	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return "", fmt.Errorf("no generator response left at call=%d", f.calls)
}

type fakeApprover struct {
	inputs []string
	calls  int
}

func (f *fakeApprover) Review(ctx context.Context, s contractx.Suggestion) (string, error) {
	f.calls++
	idx := f.calls - 1
	if idx >= len(f.inputs) {
		return "", fmt.Errorf("no approver input left at call=%d", f.calls)
	}
	return f.inputs[idx], nil
}

func newTestWorkflow(t *testing.T, store *fakeStore, generator *fakeGenerator, cfg Config) *Workflow {
	t.Helper()
	w, err := New(store, generator, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w
}

func TestIsApproval(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  bool
	}{
		{"ok", true},
		{"OK", true},
		{"  Ok  ", true},
		{"", false},
		{"   ", false},
		{"okay", false},
		{"no, mention pricing", false},
	}
	for _, tc := range cases {
		if got := IsApproval(tc.input); got != tc.want {
			t.Fatalf("IsApproval(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNewRejectsNegativeRevisionCap(t *testing.T) {
	t.Parallel()

	_, err := New(newFakeStore(), &fakeGenerator{}, Config{MaxRevisions: -1})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestStartFirstContact(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.customers["c1"] = true
	generator := &fakeGenerator{
		responses: []string{"Send a short introduction email about our onboarding plan.\nRecommended Action: email"},
	}
	w := newTestWorkflow(t, store, generator, Config{})

	res, err := w.Start(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !res.NeedsApproval {
		t.Fatalf("expected NeedsApproval true")
	}
	if res.Suggestion.Recommendation != contractx.RecommendEmail {
		t.Fatalf("unexpected recommendation: %q", res.Suggestion.Recommendation)
	}
	if generator.calls != 1 {
		t.Fatalf("expected one generation, got %d", generator.calls)
	}
	if !strings.Contains(generator.prompts[0], "FIRST contact") {
		t.Fatalf("expected first-contact context in prompt, got:\n%s", generator.prompts[0])
	}
	if store.appendCalls != 0 || store.writeCalls != 0 {
		t.Fatalf("Start must not write, got appends=%d summary writes=%d", store.appendCalls, store.writeCalls)
	}
}

func TestStartUnknownCustomer(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	generator := &fakeGenerator{}
	w := newTestWorkflow(t, store, generator, Config{})

	_, err := w.Start(context.Background(), "missing")
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if generator.calls != 0 {
		t.Fatalf("expected no generation for unknown customer, got %d", generator.calls)
	}
	if store.appendCalls != 0 || store.writeCalls != 0 {
		t.Fatalf("unknown customer must cause no writes")
	}
}

func TestStartEmptyIdentifier(t *testing.T) {
	t.Parallel()

	w := newTestWorkflow(t, newFakeStore(), &fakeGenerator{}, Config{})

	_, err := w.Start(context.Background(), "   ")
	if !errors.Is(err, contractx.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestStartIncludesHistoryContext(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.customers["c1"] = true
	store.logs["c1"] = []contractx.InteractionRecord{
		{Sender: contractx.SenderAgent, Kind: contractx.KindEmail, Date: time.Now().UTC(), Summary: "sent pricing sheet"},
		{Sender: contractx.SenderCustomer, Kind: contractx.KindEmail, Date: time.Now().UTC(), Summary: "asked about volume discounts"},
	}
	store.summaries["c1"] = contractx.ConversationSummary{Summary: "Lead is evaluating the pro tier."}
	generator := &fakeGenerator{
		responses: []string{"Schedule a call to walk through volume pricing.\nRecommended Action: call"},
	}
	w := newTestWorkflow(t, store, generator, Config{})

	res, err := w.Start(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if res.Suggestion.Recommendation != contractx.RecommendCall {
		t.Fatalf("unexpected recommendation: %q", res.Suggestion.Recommendation)
	}

	prompt := generator.prompts[0]
	if !strings.Contains(prompt, "Lead is evaluating the pro tier.") {
		t.Fatalf("expected rolling summary in prompt, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "asked about volume discounts") {
		t.Fatalf("expected recent interaction in prompt, got:\n%s", prompt)
	}
	if store.appendCalls != 0 || store.writeCalls != 0 {
		t.Fatalf("Start must not write")
	}
}

func TestResumeApprovalCommitsOnce(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.customers["c1"] = true
	store.summaries["c1"] = contractx.ConversationSummary{Summary: "Lead asked for a demo."}
	generator := &fakeGenerator{
		responses: []string{"Lead asked for a demo; agent scheduled a discovery call for next week."},
	}
	w := newTestWorkflow(t, store, generator, Config{})

	pending := contractx.Suggestion{
		Text:           "Call the lead to set up a demo slot.",
		Recommendation: contractx.RecommendCall,
	}
	res, err := w.Resume(context.Background(), "c1", "  OK  ", pending)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if res.Status != contractx.StatusCommitted {
		t.Fatalf("expected committed, got %q", res.Status)
	}
	if res.SummaryStale {
		t.Fatalf("expected fresh summary")
	}
	if res.UpdatedSummary != generator.responses[0] {
		t.Fatalf("unexpected updated summary: %q", res.UpdatedSummary)
	}

	if store.appendCalls != 1 {
		t.Fatalf("expected exactly one appended record, got %d", store.appendCalls)
	}
	rec := store.logs["c1"][0]
	if rec.Sender != contractx.SenderAgent {
		t.Fatalf("expected agent sender, got %q", rec.Sender)
	}
	if rec.Kind != contractx.KindCall {
		t.Fatalf("expected call kind from action text, got %q", rec.Kind)
	}
	if rec.Summary != pending.Text {
		t.Fatalf("expected action text stored verbatim, got %q", rec.Summary)
	}

	if store.writeCalls != 1 {
		t.Fatalf("expected one summary write, got %d", store.writeCalls)
	}
	if store.summaries["c1"].Summary != res.UpdatedSummary {
		t.Fatalf("persisted summary mismatch: %q", store.summaries["c1"].Summary)
	}
	if !strings.Contains(generator.prompts[0], "Lead asked for a demo.") {
		t.Fatalf("expected previous summary in regeneration prompt, got:\n%s", generator.prompts[0])
	}
}

func TestResumeFeedbackRegeneratesWithoutWrites(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.customers["c1"] = true
	generator := &fakeGenerator{
		responses: []string{"Send a shorter follow-up email with one clear ask.\nRecommended Action: email"},
	}
	w := newTestWorkflow(t, store, generator, Config{})

	pending := contractx.Suggestion{Text: "Send a long detailed email."}
	res, err := w.Resume(context.Background(), "c1", "make it shorter", pending)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if res.Status != contractx.StatusNeedsApproval {
		t.Fatalf("expected needs_approval, got %q", res.Status)
	}
	if !res.NeedsApproval {
		t.Fatalf("expected NeedsApproval true")
	}
	if res.Suggestion.Text == "" {
		t.Fatalf("expected regenerated suggestion")
	}
	if !strings.Contains(generator.prompts[0], "make it shorter") {
		t.Fatalf("expected feedback in regeneration prompt, got:\n%s", generator.prompts[0])
	}
	if store.appendCalls != 0 || store.writeCalls != 0 {
		t.Fatalf("rejection must not write, got appends=%d summary writes=%d", store.appendCalls, store.writeCalls)
	}
}

func TestResumeEmptyInputIsFeedback(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.customers["c1"] = true
	generator := &fakeGenerator{
		responses: []string{"Email the lead a one-line check-in.\nRecommended Action: email"},
	}
	w := newTestWorkflow(t, store, generator, Config{})

	res, err := w.Resume(context.Background(), "c1", "", contractx.Suggestion{Text: "Call them."})
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if res.Status != contractx.StatusNeedsApproval {
		t.Fatalf("empty input must not commit, got %q", res.Status)
	}
	if store.appendCalls != 0 || store.writeCalls != 0 {
		t.Fatalf("empty input must cause no writes")
	}
}

func TestResumeCommitSummaryFailureDegrades(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.customers["c1"] = true
	store.summaries["c1"] = contractx.ConversationSummary{Summary: "Lead is comparing vendors."}
	generator := &fakeGenerator{
		errs: []error{fmt.Errorf("%w: upstream timeout", contractx.ErrGenerationFailed)},
	}
	w := newTestWorkflow(t, store, generator, Config{})

	res, err := w.Resume(context.Background(), "c1", "ok", contractx.Suggestion{Text: "Email a case study."})
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if res.Status != contractx.StatusCommitted {
		t.Fatalf("expected commit to survive summary failure, got %q", res.Status)
	}
	if !res.SummaryStale {
		t.Fatalf("expected SummaryStale true")
	}
	if res.UpdatedSummary != "Lead is comparing vendors." {
		t.Fatalf("expected previous summary carried through, got %q", res.UpdatedSummary)
	}
	if store.appendCalls != 1 {
		t.Fatalf("interaction record must stay committed, got appends=%d", store.appendCalls)
	}
	if store.writeCalls != 0 {
		t.Fatalf("stale summary must not be rewritten, got %d writes", store.writeCalls)
	}
}

func TestResumeCommitEmptyActionText(t *testing.T) {
	t.Parallel()

	w := newTestWorkflow(t, newFakeStore(), &fakeGenerator{}, Config{})

	_, err := w.Resume(context.Background(), "c1", "ok", contractx.Suggestion{Text: "   "})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRunApproveAfterRevision(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.customers["c1"] = true
	generator := &fakeGenerator{
		responses: []string{
			"Send a long intro email.\nRecommended Action: email",
			"Call the lead for a five-minute intro.\nRecommended Action: call",
			"Lead received an intro call proposal.",
		},
	}
	w := newTestWorkflow(t, store, generator, Config{})
	approver := &fakeApprover{inputs: []string{"prefer a call", "ok"}}

	res, err := w.Run(context.Background(), "c1", approver)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Status != contractx.StatusCommitted {
		t.Fatalf("expected committed, got %q", res.Status)
	}
	if approver.calls != 2 {
		t.Fatalf("expected two approval rounds, got %d", approver.calls)
	}
	if generator.calls != 3 {
		t.Fatalf("expected suggest, revision, summary generations, got %d", generator.calls)
	}
	if store.appendCalls != 1 {
		t.Fatalf("expected exactly one committed record, got %d", store.appendCalls)
	}
	if got := store.logs["c1"][0].Summary; got != "Call the lead for a five-minute intro.\nRecommended Action: call" {
		t.Fatalf("expected the revised suggestion committed, got %q", got)
	}
}

func TestRunRevisionLimit(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.customers["c1"] = true
	generator := &fakeGenerator{
		responses: []string{
			"Suggestion one.\nRecommended Action: email",
			"Suggestion two.\nRecommended Action: email",
			"Suggestion three.\nRecommended Action: email",
		},
	}
	w := newTestWorkflow(t, store, generator, Config{MaxRevisions: 2})
	approver := &fakeApprover{inputs: []string{"no", "still no", "still no"}}

	_, err := w.Run(context.Background(), "c1", approver)
	if !errors.Is(err, ErrRevisionLimit) {
		t.Fatalf("expected ErrRevisionLimit, got %v", err)
	}
	if store.appendCalls != 0 || store.writeCalls != 0 {
		t.Fatalf("hitting the revision cap must not write")
	}
}

func TestRunNilApprover(t *testing.T) {
	t.Parallel()

	w := newTestWorkflow(t, newFakeStore(), &fakeGenerator{}, Config{})

	_, err := w.Run(context.Background(), "c1", nil)
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCommittedActionVisibleOnNextStart(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.customers["c1"] = true
	generator := &fakeGenerator{
		responses: []string{
			"Lead was emailed an onboarding checklist.",
			"Call to confirm the checklist landed.\nRecommended Action: call",
		},
	}
	w := newTestWorkflow(t, store, generator, Config{})

	res, err := w.Resume(context.Background(), "c1", "ok", contractx.Suggestion{
		Text: "Email an onboarding checklist.",
	})
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if res.Status != contractx.StatusCommitted {
		t.Fatalf("expected committed, got %q", res.Status)
	}

	if _, err := w.Start(context.Background(), "c1"); err != nil {
		t.Fatalf("Start() after commit error = %v", err)
	}
	nextPrompt := generator.prompts[1]
	if !strings.Contains(nextPrompt, "Email an onboarding checklist.") {
		t.Fatalf("expected committed action in next run context, got:\n%s", nextPrompt)
	}
	if !strings.Contains(nextPrompt, "Lead was emailed an onboarding checklist.") {
		t.Fatalf("expected updated summary in next run context, got:\n%s", nextPrompt)
	}
}

func TestStorageErrorPropagates(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.customers["c1"] = true
	store.countErr = fmt.Errorf("%w: count interactions", contractx.ErrStorageUnavailable)
	w := newTestWorkflow(t, store, &fakeGenerator{}, Config{})

	_, err := w.Start(context.Background(), "c1")
	if !errors.Is(err, contractx.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
