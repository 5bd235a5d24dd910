package models

import (
	"time"

	id "gatepass/pkg/domain"
)

// VisitorPass is a time-boxed visitor authorization tied to a resident.
// The validity window is closed-open: [CreatedAt, ExpiresAt).
type VisitorPass struct {
	ID              id.PassID
	ResidentID      id.ResidentID
	VisitorName     string
	VisitorPhone    string
	QRPayload       string
	DurationMinutes int
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// IsExpired reports whether now falls outside the validity window.
func (p VisitorPass) IsExpired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// ValidationReason explains a failed validation.
type ValidationReason string

const (
	ReasonNotFound ValidationReason = "not_found"
	ReasonExpired  ValidationReason = "expired"
)

// VisitorInfo is the visitor identity snapshot shown to the guard.
type VisitorInfo struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// ResidentInfo is the host identity snapshot shown to the guard.
type ResidentInfo struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Apartment   string `json:"apartment"`
}

// ValidationResult is the guard's preview of a pass. Producing it never
// mutates state; the terminal decision happens in the scan module.
type ValidationResult struct {
	Valid     bool
	Reason    ValidationReason
	Visitor   *VisitorInfo
	Resident  *ResidentInfo
	CreatedAt time.Time
	ExpiresAt time.Time
}
