// Package action holds the keyword heuristics that read structure out of
// free-text model output. The model has no structured output contract, so
// classification is substring matching, kept pure so it can be unit-tested
// and later swapped for a schema-based parser.
package action

import (
	"strings"

	contractx "github.com/suratin/leadpilot/agent/contract"
)

// ClassifyKind infers the interaction kind to persist for an approved action.
// First match wins: "call", then "meeting", defaulting to "email". The checks
// are not mutually exclusive; text mentioning both call and meeting is a call.
func ClassifyKind(actionText string) contractx.Kind {
	lower := strings.ToLower(actionText)
	switch {
	case strings.Contains(lower, "call"):
		return contractx.KindCall
	case strings.Contains(lower, "meeting"):
		return contractx.KindMeeting
	default:
		return contractx.KindEmail
	}
}

// DetectRecommendation extracts the proposed action class from a suggestion.
// It prefers an explicit "Recommended Action:" line, then falls back to the
// same first-match keyword scan used for persistence, with "drop" recognized
// before the email default.
func DetectRecommendation(suggestionText string) contractx.Recommendation {
	if line, ok := recommendedActionLine(suggestionText); ok {
		if rec, ok := recommendationIn(line); ok {
			return rec
		}
	}
	if rec, ok := recommendationIn(suggestionText); ok {
		return rec
	}
	return contractx.RecommendEmail
}

func recommendedActionLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if idx := strings.Index(lower, "recommended action"); idx >= 0 {
			return lower[idx:], true
		}
	}
	return "", false
}

func recommendationIn(lower string) (contractx.Recommendation, bool) {
	lower = strings.ToLower(lower)
	switch {
	case strings.Contains(lower, "call"):
		return contractx.RecommendCall, true
	case strings.Contains(lower, "meeting"):
		return contractx.RecommendMeeting, true
	case strings.Contains(lower, "drop"):
		return contractx.RecommendDrop, true
	case strings.Contains(lower, "email"):
		return contractx.RecommendEmail, true
	default:
		return "", false
	}
}
