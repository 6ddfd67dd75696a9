// Package lyrics fetches song lyrics from lrclib.net with cache-first lookup,
// negative-result suppression and in-flight request dedupe.
package lyrics

import "time"

// SyncedLine is one time-stamped lyric line parsed from LRC format.
type SyncedLine struct {
	Time float64 `json:"time"`
	Text string  `json:"text"`
}

// Result is a successful lyrics lookup.
type Result struct {
	Lyrics    string       `json:"lyrics"`
	Synced    []SyncedLine `json:"synced,omitempty"`
	HasSynced bool         `json:"hasSynced"`
	Source    string       `json:"source"`
}

// Cached is a lyrics record as stored by a Store implementation.
type Cached struct {
	Lyrics    string
	Synced    []SyncedLine
	HasSynced bool
	Source    string
	CachedAt  time.Time
}

// Store persists lyrics keyed by (artist, title). Get returns nil without
// error on a miss or an expired entry.
type Store interface {
	GetLyrics(artist, title string) (*Cached, error)
	SetLyrics(artist, title string, c *Cached) error
}
