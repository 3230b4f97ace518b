package contract

import "time"

// Sender identifies which side of the conversation produced an interaction.
type Sender string

const (
	SenderAgent    Sender = "agent"
	SenderCustomer Sender = "customer"
)

// Kind is the channel of a recorded interaction.
type Kind string

const (
	KindCall    Kind = "call"
	KindEmail   Kind = "email"
	KindMeeting Kind = "meeting"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCall, KindEmail, KindMeeting:
		return true
	default:
		return false
	}
}

// Recommendation is the action class a suggestion proposes. Unlike Kind it
// includes "drop", which is never persisted as an interaction.
type Recommendation string

const (
	RecommendCall    Recommendation = "call"
	RecommendEmail   Recommendation = "email"
	RecommendMeeting Recommendation = "meeting"
	RecommendDrop    Recommendation = "drop"
)

// Customer is the CRM record for a lead. It is created and maintained by the
// CRUD layer; this core only reads it to confirm the lead exists.
type Customer struct {
	ID            string `bson:"-" json:"id"`
	Name          string `bson:"name" json:"name"`
	Email         string `bson:"email,omitempty" json:"email,omitempty"`
	ContactNumber string `bson:"contact_number,omitempty" json:"contact_number,omitempty"`
	City          string `bson:"city,omitempty" json:"city,omitempty"`
}

// InteractionRecord is one exchange between agent and customer. Records are
// append-only and ordered by insertion within a per-customer log document.
type InteractionRecord struct {
	Sender  Sender    `bson:"sender" json:"sender"`
	Kind    Kind      `bson:"type" json:"type"`
	Date    time.Time `bson:"date" json:"date"`
	Summary string    `bson:"summary" json:"summary"`
}

// ConversationSummary is the rolling natural-language digest for one
// customer. At most one exists per customer; it is overwritten on every
// commit and is a lossy cache, never rebuilt from the interaction log.
type ConversationSummary struct {
	CustomerID  string    `bson:"-" json:"customer_id"`
	Summary     string    `bson:"summary" json:"summary"`
	LastUpdated time.Time `bson:"last_updated" json:"last_updated"`
}

// HistoryReport is the outcome of probing a customer's prior history.
type HistoryReport struct {
	Exists           bool `json:"exists"`
	HasHistory       bool `json:"has_history"`
	InteractionCount int  `json:"interaction_count"`
}

// FirstContactSummary is the sentinel summary used when a lead has no prior
// interactions, so downstream stages never see an absent summary.
const FirstContactSummary = "First contact with this lead"

// LeadContext is the assembled input for suggestion generation.
type LeadContext struct {
	Interactions []InteractionRecord `json:"interactions"`
	Summary      string              `json:"summary"`
}

// Suggestion is a generated next-best-action proposal awaiting approval.
type Suggestion struct {
	Text           string         `json:"text"`
	Recommendation Recommendation `json:"recommendation"`
}

type Status string

const (
	StatusCommitted     Status = "committed"
	StatusNeedsApproval Status = "needs_approval"
)

// StartResult is returned by Workflow.Start: a fresh suggestion that must be
// approved before anything is written.
type StartResult struct {
	Suggestion    Suggestion `json:"suggestion"`
	NeedsApproval bool       `json:"needs_approval"`
}

// ResumeResult is returned by Workflow.Resume: either the commit outcome or a
// regenerated suggestion awaiting another approval round.
type ResumeResult struct {
	Status         Status     `json:"status"`
	Suggestion     Suggestion `json:"suggestion,omitempty"`
	NeedsApproval  bool       `json:"needs_approval"`
	UpdatedSummary string     `json:"updated_summary,omitempty"`
	SummaryStale   bool       `json:"summary_stale,omitempty"`
}
