package models

import (
	"time"

	id "gatepass/pkg/domain"
)

// ScanDecision is one guard's scan of one pass. Confirmed is tri-state:
// nil while the scan is an unconfirmed preview, then pinned to true or false
// by the single terminal decision for the pass.
type ScanDecision struct {
	ID        id.ScanID
	PassID    id.PassID
	GuardID   id.GuardID
	Confirmed *bool
	ScannedAt time.Time
}

// Decision reports the terminal outcome, or false when still unconfirmed.
func (s ScanDecision) Decision() (id.Decision, bool) {
	return id.DecisionFromConfirmed(s.Confirmed)
}

// ConfirmOutcome distinguishes a decision this guard just recorded from one
// that was already on file.
type ConfirmOutcome string

const (
	OutcomeRecorded       ConfirmOutcome = "recorded"
	OutcomeAlreadyDecided ConfirmOutcome = "already_decided"
)

// ConfirmResult carries the decision that stands for the pass after a confirm
// attempt. When Outcome is OutcomeAlreadyDecided, Scan is the earlier winning
// record, not the caller's attempt.
type ConfirmResult struct {
	Outcome ConfirmOutcome
	Scan    ScanDecision
}

// GuardStats summarizes one guard's confirmed decisions.
type GuardStats struct {
	GuardID       id.GuardID
	TotalScans    int
	TotalApproved int
	TotalDenied   int
}
