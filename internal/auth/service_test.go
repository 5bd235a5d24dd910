package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/directory"
	"gatepass/internal/jwtauth"
	"gatepass/internal/platform/middleware"
	"gatepass/pkg/credentials"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

func newService(t *testing.T) (*Service, *jwtauth.Service, directory.Guard, directory.Resident) {
	t.Helper()
	ctx := context.Background()
	dir := directory.NewInMemoryStore()

	guardHash, err := credentials.Hash("guard-secret")
	require.NoError(t, err)
	guard := directory.Guard{
		ID:           id.NewGuardID(),
		Name:         "Ibrahima Sarr",
		PhoneNumber:  "+221780000001",
		PasswordHash: guardHash,
		ResidenceID:  id.NewResidenceID(),
	}
	require.NoError(t, dir.SaveGuard(ctx, guard))

	residentHash, err := credentials.Hash("resident-secret")
	require.NoError(t, err)
	resident := directory.Resident{
		ID:           id.NewResidentID(),
		Name:         "Awa Ndiaye",
		PhoneNumber:  "+221770000001",
		Apartment:    "B12",
		PasswordHash: residentHash,
		ResidenceID:  guard.ResidenceID,
	}
	require.NoError(t, dir.SaveResident(ctx, resident))

	tokens := jwtauth.NewService("test-signing-key", time.Hour)
	return NewService(dir, credentials.BcryptVerifier{}, tokens), tokens, guard, resident
}

func TestLogin(t *testing.T) {
	svc, tokens, guard, resident := newService(t)
	ctx := context.Background()

	t.Run("guard login yields a guard token", func(t *testing.T) {
		token, err := svc.Login(ctx, middleware.RoleGuard, guard.PhoneNumber, "guard-secret")
		require.NoError(t, err)

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, middleware.RoleGuard, claims.Role)
		assert.Equal(t, guard.ID.String(), claims.SubjectID)
	})

	t.Run("resident login yields a resident token", func(t *testing.T) {
		token, err := svc.Login(ctx, middleware.RoleResident, resident.PhoneNumber, "resident-secret")
		require.NoError(t, err)

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, middleware.RoleResident, claims.Role)
		assert.Equal(t, resident.ID.String(), claims.SubjectID)
	})

	t.Run("wrong password and unknown phone are indistinguishable", func(t *testing.T) {
		_, err1 := svc.Login(ctx, middleware.RoleGuard, guard.PhoneNumber, "wrong")
		_, err2 := svc.Login(ctx, middleware.RoleGuard, "+221789999999", "guard-secret")
		require.Error(t, err1)
		require.Error(t, err2)
		assert.True(t, dErrors.HasCode(err1, dErrors.CodeUnauthorized))
		assert.True(t, dErrors.HasCode(err2, dErrors.CodeUnauthorized))
		assert.Equal(t, dErrors.MessageOf(err1), dErrors.MessageOf(err2))
	})

	t.Run("role mismatch is rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, middleware.RoleResident, guard.PhoneNumber, "guard-secret")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown role and missing fields are validation errors", func(t *testing.T) {
		_, err := svc.Login(ctx, "admin", guard.PhoneNumber, "guard-secret")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = svc.Login(ctx, middleware.RoleGuard, "", "guard-secret")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
