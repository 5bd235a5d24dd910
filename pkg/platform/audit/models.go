package audit

import (
	"time"

	id "gatepass/pkg/domain"
)

// Action labels what happened at the gate or in the pass lifecycle.
type Action string

const (
	ActionPassIssued     Action = "pass.issued"
	ActionPassRenewed    Action = "pass.renewed"
	ActionPassDeleted    Action = "pass.deleted"
	ActionAccessApproved Action = "access.approved"
	ActionAccessDenied   Action = "access.denied"
)

// Event is an append-only record of a gate or lifecycle action. Events are
// telemetry: losing one must never fail the request that produced it.
type Event struct {
	Action     Action
	PassID     id.PassID
	ScanID     id.ScanID
	GuardID    id.GuardID
	ResidentID id.ResidentID
	RequestID  string
	Timestamp  time.Time
}
