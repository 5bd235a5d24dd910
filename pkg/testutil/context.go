package testutil

import (
	"net/http"
	"time"

	id "gatepass/pkg/domain"
	"gatepass/pkg/requestcontext"
)

// WithGuardID adds a guard ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// If the guardID is not a valid UUID, it will not be added to the context.
func WithGuardID(req *http.Request, guardID string) *http.Request {
	if parsed, err := id.ParseGuardID(guardID); err == nil {
		return req.WithContext(requestcontext.WithGuardID(req.Context(), parsed))
	}
	return req
}

// WithResidentID adds a resident ID to the request context.
// If the residentID is not a valid UUID, it will not be added to the context.
func WithResidentID(req *http.Request, residentID string) *http.Request {
	if parsed, err := id.ParseResidentID(residentID); err == nil {
		return req.WithContext(requestcontext.WithResidentID(req.Context(), parsed))
	}
	return req
}

// WithRequestTime pins the request-scoped clock for a handler test.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
