package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

func newPass(phone string, createdAt time.Time) models.VisitorPass {
	return models.VisitorPass{
		ID:              id.NewPassID(),
		ResidentID:      id.NewResidentID(),
		VisitorName:     "Moussa Diop",
		VisitorPhone:    phone,
		QRPayload:       "payload",
		DurationMinutes: 30,
		CreatedAt:       createdAt,
		ExpiresAt:       createdAt.Add(30 * time.Minute),
	}
}

func TestCreateEnforcesPhoneUniqueness(t *testing.T) {
	s := NewInMemoryStore()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	first := newPass("+221771234567", base)
	require.NoError(t, s.Create(context.Background(), first))

	err := s.Create(context.Background(), newPass("+221771234567", base.Add(time.Minute)))
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	// Deleting the holder frees the phone.
	require.NoError(t, s.Delete(context.Background(), first.ID))
	assert.NoError(t, s.Create(context.Background(), newPass("+221771234567", base.Add(2*time.Minute))))
}

func TestUpdatePhoneOwnership(t *testing.T) {
	s := NewInMemoryStore()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	first := newPass("+221771234567", base)
	second := newPass("+221779999999", base)
	require.NoError(t, s.Create(context.Background(), first))
	require.NoError(t, s.Create(context.Background(), second))

	t.Run("keeping your own phone is not a conflict", func(t *testing.T) {
		first.VisitorName = "Moussa D. Diop"
		assert.NoError(t, s.Update(context.Background(), first))
	})

	t.Run("taking another pass's phone is", func(t *testing.T) {
		second.VisitorPhone = first.VisitorPhone
		assert.ErrorIs(t, s.Update(context.Background(), second), sentinel.ErrConflict)
	})

	t.Run("moving to a free phone releases the old one", func(t *testing.T) {
		first.VisitorPhone = "+221770000000"
		require.NoError(t, s.Update(context.Background(), first))
		assert.NoError(t, s.Create(context.Background(), newPass("+221771234567", base.Add(time.Minute))))
	})
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	s := NewInMemoryStore()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, s.Update(context.Background(), newPass("+221771234567", base)), sentinel.ErrNotFound)
	assert.ErrorIs(t, s.Delete(context.Background(), id.NewPassID()), sentinel.ErrNotFound)
	_, err := s.FindByID(context.Background(), id.NewPassID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestListAndCounts(t *testing.T) {
	s := NewInMemoryStore()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	residentID := id.NewResidentID()

	for i := 0; i < 3; i++ {
		pass := newPass(fmt.Sprintf("+22177000000%d", i+1), base.Add(time.Duration(i)*time.Minute))
		pass.ResidentID = residentID
		require.NoError(t, s.Create(context.Background(), pass))
	}

	byResident, err := s.ListByResident(context.Background(), residentID)
	require.NoError(t, err)
	require.Len(t, byResident, 3)
	assert.True(t, byResident[0].CreatedAt.Before(byResident[1].CreatedAt))

	page, err := s.List(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, byResident[1].ID, page[0].ID)

	total, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	// Each pass expires 30 minutes after its creation, so at +30m30s only the
	// first has lapsed.
	active, err := s.CountActive(context.Background(), base.Add(30*time.Minute+30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, active)
}
