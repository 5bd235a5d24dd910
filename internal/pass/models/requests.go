package models

import "time"

// CreatePassRequest is the issuance payload.
type CreatePassRequest struct {
	VisitorName     string `json:"visitor_name"`
	VisitorPhone    string `json:"visitor_phone"`
	DurationMinutes int    `json:"duration_minutes"`
}

// UpdatePassRequest edits visitor fields before expiry. Nil fields are left
// unchanged.
type UpdatePassRequest struct {
	VisitorName  *string `json:"visitor_name,omitempty"`
	VisitorPhone *string `json:"visitor_phone,omitempty"`
}

// RenewPassRequest resets the validity window.
type RenewPassRequest struct {
	DurationMinutes int `json:"duration_minutes"`
}

// PassResponse is the wire shape of a pass. QRCode carries the encoded
// payload ready for client-side rendering.
type PassResponse struct {
	ID              string    `json:"id"`
	VisitorName     string    `json:"visitor_name"`
	VisitorPhone    string    `json:"visitor_phone"`
	QRCode          string    `json:"qr_code"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// ValidationResponse is the guard preview envelope.
type ValidationResponse struct {
	Valid   bool            `json:"valid"`
	Message string          `json:"message"`
	Data    *ValidationData `json:"data,omitempty"`
}

// ValidationData carries the identity snapshots for a valid pass.
type ValidationData struct {
	Visitor   VisitorInfo  `json:"visitor"`
	Resident  ResidentInfo `json:"resident"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	PassID    string       `json:"pass_id"`
}
