package models

import (
	"time"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// ReportKind selects which rollup Aggregate produces.
type ReportKind string

const (
	KindUser     ReportKind = "user"     // per-resident issuance
	KindQRCode   ReportKind = "qrcode"   // pass usage
	KindActivity ReportKind = "activity" // gate traffic
	KindSecurity ReportKind = "security" // denials and approval ratio
)

var validKinds = map[ReportKind]bool{
	KindUser:     true,
	KindQRCode:   true,
	KindActivity: true,
	KindSecurity: true,
}

// ParseReportKind constructs a ReportKind from external input.
func ParseReportKind(s string) (ReportKind, error) {
	k := ReportKind(s)
	if !validKinds[k] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid report kind")
	}
	return k, nil
}

// Report is one residence-scoped rollup over [From, To].
type Report struct {
	Kind        ReportKind `json:"kind"`
	ResidenceID string     `json:"residence_id"`
	From        time.Time  `json:"from"`
	To          time.Time  `json:"to"`
	Summary     Summary    `json:"summary"`
	Details     []Detail   `json:"details"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Summary holds the counters for a report; each kind fills its own subset.
type Summary struct {
	TotalPasses    int     `json:"total_passes,omitempty"`
	ActivePasses   int     `json:"active_passes,omitempty"`
	UniqueVisitors int     `json:"unique_visitors,omitempty"`
	TotalScans     int     `json:"total_scans,omitempty"`
	Approved       int     `json:"approved,omitempty"`
	Denied         int     `json:"denied,omitempty"`
	ScansPerDay    float64 `json:"scans_per_day,omitempty"`
	PeakHour       int     `json:"peak_hour,omitempty"`
	SecurityScore  float64 `json:"security_score,omitempty"`
}

// Detail is one listing row; kinds populate the fields that apply.
type Detail struct {
	ResidentName string     `json:"resident_name,omitempty"`
	VisitorName  string     `json:"visitor_name,omitempty"`
	PassID       string     `json:"pass_id,omitempty"`
	Decision     string     `json:"decision,omitempty"`
	ScannedAt    *time.Time `json:"scanned_at,omitempty"`
	Count        int        `json:"count,omitempty"`
}

// PassRecord is the join of a pass with its host.
type PassRecord struct {
	PassID       id.PassID     `json:"pass_id"`
	ResidentID   id.ResidentID `json:"-"`
	ResidentName string        `json:"resident_name"`
	VisitorName  string        `json:"visitor_name"`
	VisitorPhone string        `json:"visitor_phone"`
	CreatedAt    time.Time     `json:"created_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

// PassPage is one page of the global pass roster.
type PassPage struct {
	Total  int          `json:"total"`
	Offset int          `json:"offset"`
	Passes []PassRecord `json:"passes"`
}

// ScanRecord is the residence-scoped join of a decision with its pass.
type ScanRecord struct {
	ScanID      id.ScanID
	PassID      id.PassID
	GuardID     id.GuardID
	ResidentID  id.ResidentID
	VisitorName string
	Approved    bool
	ScannedAt   time.Time
}

// Statistics is the global rollup behind /reports/statistics.
type Statistics struct {
	TotalPasses  int `json:"total_passes"`
	ActivePasses int `json:"active_passes"`
	TotalScans   int `json:"total_scans"`
}
