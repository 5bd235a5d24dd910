package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

func TestNilCacheIsAPermanentMiss(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	_, err := c.Get(ctx, id.NewPassID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.NoError(t, c.Set(ctx, Snapshot{}, time.Now()))
	assert.NoError(t, c.Invalidate(ctx, id.NewPassID()))
}

func TestNewWithoutClientIsNil(t *testing.T) {
	assert.Nil(t, New(nil))
}
