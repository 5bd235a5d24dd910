// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// The request time doubles as the injected clock: middleware pins one timestamp per
// request, services read it with Now(ctx), and tests simulate expiry with WithTime.
package requestcontext

import (
	"context"
	"time"

	id "gatepass/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	guardIDKey     struct{}
	residentIDKey  struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyGuardID     = guardIDKey{}
	ContextKeyResidentID  = residentIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// GuardID retrieves the authenticated guard ID from the context.
// Returns the zero value (nil UUID) if not set.
func GuardID(ctx context.Context) id.GuardID {
	if guardID, ok := ctx.Value(ContextKeyGuardID).(id.GuardID); ok {
		return guardID
	}
	return id.GuardID{}
}

// WithGuardID injects a guard ID into the context.
func WithGuardID(ctx context.Context, guardID id.GuardID) context.Context {
	return context.WithValue(ctx, ContextKeyGuardID, guardID)
}

// ResidentID retrieves the authenticated resident ID from the context.
// Returns the zero value (nil UUID) if not set.
func ResidentID(ctx context.Context) id.ResidentID {
	if residentID, ok := ctx.Value(ContextKeyResidentID).(id.ResidentID); ok {
		return residentID
	}
	return id.ResidentID{}
}

// WithResidentID injects a resident ID into the context.
func WithResidentID(ctx context.Context, residentID id.ResidentID) context.Context {
	return context.WithValue(ctx, ContextKeyResidentID, residentID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Simulating pass expiry without sleeping
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
