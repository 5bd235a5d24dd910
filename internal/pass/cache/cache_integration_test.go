//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/testutil/containers"
)

func snapshot(now time.Time, ttl time.Duration) Snapshot {
	return Snapshot{
		Pass: models.VisitorPass{
			ID:              id.NewPassID(),
			ResidentID:      id.NewResidentID(),
			VisitorName:     "Moussa Diop",
			VisitorPhone:    "+221771234567",
			QRPayload:       "payload",
			DurationMinutes: int(ttl.Minutes()),
			CreatedAt:       now,
			ExpiresAt:       now.Add(ttl),
		},
		Resident: models.ResidentInfo{Name: "Awa Ndiaye", PhoneNumber: "+221770000001", Apartment: "B12"},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := New(containers.StartRedis(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	snap := snapshot(now, time.Hour)
	require.NoError(t, c.Set(ctx, snap, now))

	got, err := c.Get(ctx, snap.Pass.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Pass.ID, got.Pass.ID)
	assert.Equal(t, snap.Pass.VisitorPhone, got.Pass.VisitorPhone)
	assert.Equal(t, snap.Resident.Apartment, got.Resident.Apartment)

	require.NoError(t, c.Invalidate(ctx, snap.Pass.ID))
	_, err = c.Get(ctx, snap.Pass.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestCacheSkipsExpiredPasses(t *testing.T) {
	c := New(containers.StartRedis(t))
	ctx := context.Background()
	now := time.Now().UTC()

	// The window already lapsed, so there is nothing worth caching.
	snap := snapshot(now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, c.Set(ctx, snap, now))

	_, err := c.Get(ctx, snap.Pass.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestCacheMissOnUnknownPass(t *testing.T) {
	c := New(containers.StartRedis(t))
	_, err := c.Get(context.Background(), id.NewPassID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
