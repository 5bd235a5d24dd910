// Package auth is the thin login flow: phone plus password in, signed token
// out. Account management is out of scope; the directory store is read-only
// here.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"gatepass/internal/directory"
	"gatepass/internal/platform/middleware"
	"gatepass/pkg/credentials"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
)

// TokenIssuer signs access tokens for authenticated subjects.
type TokenIssuer interface {
	GenerateToken(subjectID uuid.UUID, role string) (string, error)
}

// Service authenticates guards and residents against the directory.
type Service struct {
	directory directory.Store
	verifier  credentials.Verifier
	tokens    TokenIssuer
}

func NewService(dir directory.Store, verifier credentials.Verifier, tokens TokenIssuer) *Service {
	return &Service{directory: dir, verifier: verifier, tokens: tokens}
}

// Login verifies the phone and password for the given role and issues a token.
// Unknown subjects and bad passwords produce the same error so the endpoint
// does not leak which phones are registered.
func (s *Service) Login(ctx context.Context, role, phone, password string) (string, error) {
	if phone == "" || password == "" {
		return "", dErrors.New(dErrors.CodeValidation, "phone and password are required")
	}

	var (
		subjectID uuid.UUID
		hash      string
		err       error
	)
	switch role {
	case middleware.RoleGuard:
		var guard directory.Guard
		guard, err = s.directory.FindGuardByPhone(ctx, phone)
		subjectID, hash = uuid.UUID(guard.ID), guard.PasswordHash
	case middleware.RoleResident:
		var resident directory.Resident
		resident, err = s.directory.FindResidentByPhone(ctx, phone)
		subjectID, hash = uuid.UUID(resident.ID), resident.PasswordHash
	default:
		return "", dErrors.New(dErrors.CodeValidation, "role must be guard or resident")
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}
	if !s.verifier.Verify(password, hash) {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateToken(subjectID, role)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return token, nil
}
