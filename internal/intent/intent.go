// Package intent classifies free-text user input into conversation intents.
//
// The primary path asks the FAST-tier model for a JSON verdict; when no
// client is available or the call fails, a deterministic keyword scorer
// takes over. Classification never fails: the worst case is a low-confidence
// chat result.
package intent

// Intent is the classified purpose of a user utterance.
type Intent string

const (
	IntentChat       Intent = "chat"
	IntentEmpathy    Intent = "empathy"
	IntentKnowledge  Intent = "knowledge"
	IntentDeepDive   Intent = "deep_dive"
	IntentBrainstorm Intent = "brainstorm"

	// IntentState is a lightweight self-report category assigned by the
	// ingestion pipeline, never by the classifier. It participates in
	// profiling but bypasses heavyweight response strategies.
	IntentState Intent = "state"
)

// classifiable lists the categories the classifier may produce, in
// enumeration order. Fallback ties resolve to the first match in this order.
var classifiable = []Intent{
	IntentChat,
	IntentEmpathy,
	IntentKnowledge,
	IntentDeepDive,
	IntentBrainstorm,
}

// ParseIntent maps a raw string to an Intent, defaulting to chat for
// anything unknown.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentChat, IntentEmpathy, IntentKnowledge, IntentDeepDive, IntentBrainstorm, IntentState:
		return Intent(s)
	default:
		return IntentChat
	}
}

// ClassificationResult is the ephemeral output of one classification.
type ClassificationResult struct {
	Intent     Intent
	Confidence float64
}
