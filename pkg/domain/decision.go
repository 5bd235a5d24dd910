package domain

import dErrors "gatepass/pkg/domain-errors"

// Decision is the guard's terminal verdict on a pass.
// Invariant: the value must be one of the supported decisions.
//
// Usage: construct via ParseDecision at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionDenied   Decision = "denied"
)

// validDecisions is the single source of truth for valid decisions.
var validDecisions = map[Decision]bool{
	DecisionApproved: true,
	DecisionDenied:   true,
}

// ParseDecision constructs a Decision from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported; no
// other errors are expected.
func ParseDecision(s string) (Decision, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "decision cannot be empty")
	}
	d := Decision(s)
	if !d.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid decision")
	}
	return d, nil
}

// DecisionFromConfirmed maps the stored tri-state confirmed column to a
// Decision. A nil pointer means the scan is still pending and has no decision.
func DecisionFromConfirmed(confirmed *bool) (Decision, bool) {
	if confirmed == nil {
		return "", false
	}
	if *confirmed {
		return DecisionApproved, true
	}
	return DecisionDenied, true
}

// Confirmed returns the tri-state storage representation of the decision.
func (d Decision) Confirmed() *bool {
	v := d == DecisionApproved
	return &v
}

// IsValid checks if the decision is one of the supported enum values.
func (d Decision) IsValid() bool {
	return validDecisions[d]
}

// String returns the string representation of the decision.
func (d Decision) String() string {
	return string(d)
}
