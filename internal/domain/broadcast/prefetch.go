package broadcast

import (
	"strings"
	"sync"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/player"
)

// LyricsFetcher warms the lyrics cache for a track. Implementations own their
// caching, negative-result suppression and in-flight dedupe; the prefetcher
// only prevents redundant calls for the same unchanged track.
type LyricsFetcher interface {
	Prefetch(artist, title string)
}

// TrackPrefetcher issues at most one lyrics prefetch per distinct track,
// no matter how many snapshots arrive for it. The fetch itself runs on its
// own goroutine so it never delays the broadcast decision.
type TrackPrefetcher struct {
	fetcher LyricsFetcher

	mu      sync.Mutex
	lastKey string
}

// NewTrackPrefetcher creates a prefetcher delegating to fetcher.
func NewTrackPrefetcher(fetcher LyricsFetcher) *TrackPrefetcher {
	return &TrackPrefetcher{fetcher: fetcher}
}

// OnSnapshot inspects the snapshot's track identity and schedules a prefetch
// when it names a track not seen before. The key is recorded before the fetch
// is scheduled, so rapid snapshots of the same track collapse to one call.
func (p *TrackPrefetcher) OnSnapshot(s *player.State) {
	artist := s.Video.Author
	title := s.Video.Title
	if strings.TrimSpace(artist) == "" || strings.TrimSpace(title) == "" {
		return
	}

	key := trackKey(artist, title)

	p.mu.Lock()
	if p.lastKey == key {
		p.mu.Unlock()
		return
	}
	p.lastKey = key
	p.mu.Unlock()

	go func() {
		// Re-check at execution time: the track may have changed again
		// while this goroutine was waiting to run.
		p.mu.Lock()
		stale := p.lastKey != key
		p.mu.Unlock()
		if stale {
			return
		}
		p.fetcher.Prefetch(artist, title)
	}()
}

// Reset forgets the last prefetched track. Called when a fresh upstream
// connection starts.
func (p *TrackPrefetcher) Reset() {
	p.mu.Lock()
	p.lastKey = ""
	p.mu.Unlock()
}

// trackKey normalizes a track identity to lower(artist)::lower(title).
func trackKey(artist, title string) string {
	return strings.ToLower(strings.TrimSpace(artist)) + "::" + strings.ToLower(strings.TrimSpace(title))
}
