package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
)

func TestProfileCacheRoundTrip(t *testing.T) {
	c := NewProfileCache(0, time.Minute)

	_, ok := c.Get("u-1")
	assert.False(t, ok)

	c.Set(domain.PublicProfile{ID: "u-1", FullName: "Alex Doe", Username: "alexd"})
	got, ok := c.Get("u-1")
	require.True(t, ok)
	assert.Equal(t, "Alex Doe", got.FullName)
	assert.Equal(t, "alexd", got.Username)
	assert.Equal(t, int64(1), c.Len())

	assert.True(t, c.Invalidate("u-1"))
	_, ok = c.Get("u-1")
	assert.False(t, ok)
}

func TestProfileCacheIgnoresEmptyID(t *testing.T) {
	c := NewProfileCache(0, 0)
	c.Set(domain.PublicProfile{FullName: "nobody"})
	assert.Zero(t, c.Len())
	assert.Equal(t, int(DefaultTTL/time.Second), c.ttlSeconds)
}

func TestProfileCacheDropsCorruptEntries(t *testing.T) {
	c := NewProfileCache(0, time.Minute)
	require.NoError(t, c.cache.Set(key("u-2"), []byte("{broken"), 60))

	_, ok := c.Get("u-2")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}
