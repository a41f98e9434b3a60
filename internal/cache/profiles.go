// Package cache keeps public profiles in memory between requests.
package cache

import (
	"encoding/json"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/a1dsv/NOVA-sub002/internal/domain"
)

const (
	megabyte = 1024 * 1024

	// DefaultSize is the memory reserved for profiles when none is configured.
	DefaultSize = 8 * megabyte
	// DefaultTTL bounds how stale a cached profile can get.
	DefaultTTL = 5 * time.Minute
)

var _ domain.ProfileCache = (*ProfileCache)(nil)

// ProfileCache is a freecache backed domain.ProfileCache.
type ProfileCache struct {
	cache      *freecache.Cache
	ttlSeconds int
}

// NewProfileCache reserves sizeBytes for entries that live for ttl.
// Non-positive values fall back to DefaultSize and DefaultTTL.
func NewProfileCache(sizeBytes int, ttl time.Duration) *ProfileCache {
	if sizeBytes <= 0 {
		sizeBytes = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return &ProfileCache{
		cache:      freecache.NewCache(sizeBytes),
		ttlSeconds: seconds,
	}
}

func key(id string) []byte {
	return []byte("profile::" + id)
}

// Get returns the cached profile of the user.
func (c *ProfileCache) Get(id string) (domain.PublicProfile, bool) {
	raw, err := c.cache.Get(key(id))
	if err != nil {
		return domain.PublicProfile{}, false
	}
	var profile domain.PublicProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		log.Errorf("failed to unmarshal cached profile %s: %s", id, err)
		c.cache.Del(key(id))
		return domain.PublicProfile{}, false
	}
	return profile, true
}

// Set stores the profile. Failures are logged and otherwise ignored.
func (c *ProfileCache) Set(profile domain.PublicProfile) {
	if profile.ID == "" {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		log.Errorf("failed to marshal profile %s: %s", profile.ID, err)
		return
	}
	if err := c.cache.Set(key(profile.ID), raw, c.ttlSeconds); err != nil {
		log.Errorf("failed to cache profile %s: %s", profile.ID, err)
	}
}

// Invalidate drops the cached profile of the user.
func (c *ProfileCache) Invalidate(id string) bool {
	return c.cache.Del(key(id))
}

// Len is the number of cached profiles.
func (c *ProfileCache) Len() int64 {
	return c.cache.EntryCount()
}
