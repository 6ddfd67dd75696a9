package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// PlaylistCache keeps the last successful playlists response in memory so the
// API can fall back to it when the desktop player rate-limits or errors.
// Constructed once by the composition root and injected where needed.
type PlaylistCache struct {
	mu        sync.RWMutex
	data      []byte
	count     int
	updatedAt time.Time
}

// NewPlaylistCache creates an empty playlist cache.
func NewPlaylistCache() *PlaylistCache {
	return &PlaylistCache{}
}

// Set stores the marshaled playlists response.
func (c *PlaylistCache) Set(data []byte, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.count = count
	c.updatedAt = time.Now()
	log.Debug().Int("playlists", count).Msg("Playlist cache updated")
}

// Get returns the cached response bytes, nil when nothing is cached.
func (c *PlaylistCache) Get() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// Has reports whether a non-empty response is cached.
func (c *PlaylistCache) Has() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data) > 0 && c.count > 0
}

// Age returns how old the cached response is, -1 when empty.
func (c *PlaylistCache) Age() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return -1
	}
	return time.Since(c.updatedAt)
}

// Clear drops the cached response.
func (c *PlaylistCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.count = 0
	c.updatedAt = time.Time{}
}
