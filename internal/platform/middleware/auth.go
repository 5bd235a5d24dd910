package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "gatepass/pkg/domain"
	"gatepass/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	SubjectID string
	Role      string
}

// Subject roles accepted by the auth middleware.
const (
	RoleGuard    = "guard"
	RoleResident = "resident"
)

// RequireGuard authenticates a guard token and injects the guard ID.
func RequireGuard(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(validator, logger, RoleGuard)
}

// RequireResident authenticates a resident token and injects the resident ID.
func RequireResident(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(validator, logger, RoleResident)
}

func requireRole(validator JWTValidator, logger *slog.Logger, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				unauthorized(w)
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil || claims.Role != role {
				logger.WarnContext(ctx, "unauthorized access",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				unauthorized(w)
				return
			}
			switch role {
			case RoleGuard:
				guardID, err := id.ParseGuardID(claims.SubjectID)
				if err != nil {
					unauthorized(w)
					return
				}
				ctx = requestcontext.WithGuardID(ctx, guardID)
			case RoleResident:
				residentID, err := id.ParseResidentID(claims.SubjectID)
				if err != nil {
					unauthorized(w)
					return
				}
				ctx = requestcontext.WithResidentID(ctx, residentID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
