package jwtauth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/platform/middleware"
	dErrors "gatepass/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-signing-key", time.Hour)
	subject := uuid.New()

	token, err := svc.GenerateToken(subject, middleware.RoleGuard)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, subject.String(), claims.SubjectID)
	assert.Equal(t, middleware.RoleGuard, claims.Role)
}

func TestValidateRejects(t *testing.T) {
	svc := NewService("test-signing-key", time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("a token signed with another key", func(t *testing.T) {
		other := NewService("different-key", time.Hour)
		token, err := other.GenerateToken(uuid.New(), middleware.RoleResident)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("an expired token", func(t *testing.T) {
		expired := NewService("test-signing-key", -time.Minute)
		token, err := expired.GenerateToken(uuid.New(), middleware.RoleGuard)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
