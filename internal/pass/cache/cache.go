// Package cache is a read-through Redis cache for validation lookups. It
// stores the pass record plus host snapshot, never the verdict: expiry is
// evaluated against the request clock on every read, so a cached entry can
// never resurrect an expired pass.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gatepass/internal/pass/models"
	redisclient "gatepass/internal/platform/redis"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// maxEntryTTL caps retention; entries also never outlive the pass itself.
const maxEntryTTL = 5 * time.Minute

// Snapshot is the cached view of a pass and its host.
type Snapshot struct {
	Pass     models.VisitorPass
	Resident models.ResidentInfo
}

// Cache is nil-safe: a nil *Cache behaves as a permanent miss so callers can
// wire it unconditionally.
type Cache struct {
	client *redisclient.Client
}

// New returns nil when Redis is not configured.
func New(client *redisclient.Client) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client}
}

func key(passID id.PassID) string {
	return "pass:snapshot:" + passID.String()
}

// Get returns the cached snapshot or sentinel.ErrNotFound on a miss. Redis
// outages degrade to misses; validation falls through to the store.
func (c *Cache) Get(ctx context.Context, passID id.PassID) (Snapshot, error) {
	if c == nil {
		return Snapshot{}, sentinel.ErrNotFound
	}
	raw, err := c.client.Get(ctx, key(passID)).Bytes()
	if err != nil {
		// goredis.Nil and transport errors alike read as a miss.
		return Snapshot{}, sentinel.ErrNotFound
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, sentinel.ErrNotFound
	}
	return snap, nil
}

// Set stores a snapshot with a TTL bounded by the pass expiry.
func (c *Cache) Set(ctx context.Context, snap Snapshot, now time.Time) error {
	if c == nil {
		return nil
	}
	ttl := snap.Pass.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	if ttl > maxEntryTTL {
		ttl = maxEntryTTL
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal pass snapshot: %w", err)
	}
	return c.client.Set(ctx, key(snap.Pass.ID), raw, ttl).Err()
}

// Invalidate drops the cached snapshot after renewal, edit, or deletion.
func (c *Cache) Invalidate(ctx context.Context, passID id.PassID) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, key(passID)).Err()
}
