package models

import "time"

// ScanRequest previews a pass before the guard decides.
type ScanRequest struct {
	PassID string `json:"pass_id"`
}

// ConfirmRequest records the guard's terminal decision for a pass.
type ConfirmRequest struct {
	PassID  string `json:"pass_id"`
	Allowed bool   `json:"allowed"`
}

// ConfirmResponse reports the decision that stands for the pass.
type ConfirmResponse struct {
	ScanID    string    `json:"scan_id"`
	PassID    string    `json:"pass_id"`
	GuardID   string    `json:"guard_id"`
	Decision  string    `json:"decision"`
	ScannedAt time.Time `json:"scanned_at"`
	// AlreadyDecided is true when an earlier decision won; the fields above
	// then describe that earlier record.
	AlreadyDecided bool `json:"already_decided"`
}

// HistoryEntry is one row of a guard's scan history.
type HistoryEntry struct {
	ScanID    string    `json:"scan_id"`
	PassID    string    `json:"pass_id"`
	Decision  string    `json:"decision"`
	ScannedAt time.Time `json:"scanned_at"`
}

// StatsResponse is the guard's decision tally.
type StatsResponse struct {
	GuardID       string `json:"guard_id"`
	TotalScans    int    `json:"total_scans"`
	TotalApproved int    `json:"total_approved"`
	TotalDenied   int    `json:"total_denied"`
}
