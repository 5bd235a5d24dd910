package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

func TestParsePassID(t *testing.T) {
	t.Run("accepts a well-formed UUID", func(t *testing.T) {
		raw := uuid.NewString()
		passID, err := ParsePassID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, passID.String())
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParsePassID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParsePassID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects the nil UUID", func(t *testing.T) {
		_, err := ParsePassID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestNewPassIDIsNeverNil(t *testing.T) {
	assert.False(t, NewPassID().IsNil())
	assert.False(t, NewScanID().IsNil())
}

func TestDecision(t *testing.T) {
	t.Run("parses the supported verdicts", func(t *testing.T) {
		d, err := ParseDecision("approved")
		require.NoError(t, err)
		assert.Equal(t, DecisionApproved, d)

		d, err = ParseDecision("denied")
		require.NoError(t, err)
		assert.Equal(t, DecisionDenied, d)
	})

	t.Run("rejects anything else", func(t *testing.T) {
		_, err := ParseDecision("maybe")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = ParseDecision("")
		require.Error(t, err)
	})

	t.Run("nil confirmed means no decision", func(t *testing.T) {
		_, ok := DecisionFromConfirmed(nil)
		assert.False(t, ok)
	})

	t.Run("round-trips through the storage representation", func(t *testing.T) {
		d, ok := DecisionFromConfirmed(DecisionDenied.Confirmed())
		require.True(t, ok)
		assert.Equal(t, DecisionDenied, d)
	})
}
