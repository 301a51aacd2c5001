package workflow

import "regexp"

// Decision is the user proxy's verdict on the current draft.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionRevise  Decision = "REVISE"
	DecisionAbort   Decision = "ABORT"
)

var decisionTokenRe = regexp.MustCompile(`\b(APPROVE|REVISE|ABORT)\b`)

// ParseDecision scans text for the first literal decision token. Free-form
// prose around the token is ignored, and a missing or unrecognized token
// falls back to REVISE.
func ParseDecision(text string) Decision {
	if m := decisionTokenRe.FindString(text); m != "" {
		return Decision(m)
	}
	return DecisionRevise
}
