package cache

import "time"

// CachedImage is a proxied image stored in the cache.
type CachedImage struct {
	Key          string    `json:"key"`          // MD5(normalized URL)
	URL          string    `json:"url"`          // Source URL
	Data         []byte    `json:"-"`            // Image bytes
	ContentType  string    `json:"contentType"`  // MIME type from upstream
	CacheControl string    `json:"cacheControl"` // Upstream Cache-Control, if any
	CachedAt     time.Time `json:"cachedAt"`     // Cache entry creation
}
