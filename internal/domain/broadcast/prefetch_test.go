package broadcast

import (
	"sync"
	"testing"
	"time"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/player"
)

// countingFetcher records prefetch calls.
type countingFetcher struct {
	mu    sync.Mutex
	calls []string
}

func (f *countingFetcher) Prefetch(artist, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, artist+" - "+title)
}

func (f *countingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func trackSnapshot(artist, title string) *player.State {
	return &player.State{
		Video: player.Video{ID: "vid", Author: artist, Title: title},
	}
}

func TestPrefetchOncePerTrack(t *testing.T) {
	fetcher := &countingFetcher{}
	p := NewTrackPrefetcher(fetcher)

	for i := 0; i < 10; i++ {
		p.OnSnapshot(trackSnapshot("Artist", "Song"))
	}

	// The fetch runs on its own goroutine.
	time.Sleep(50 * time.Millisecond)

	if got := fetcher.count(); got != 1 {
		t.Errorf("expected 1 prefetch for repeated snapshots, got %d", got)
	}
}

func TestPrefetchAgainOnTrackChange(t *testing.T) {
	fetcher := &countingFetcher{}
	p := NewTrackPrefetcher(fetcher)

	for i := 0; i < 5; i++ {
		p.OnSnapshot(trackSnapshot("Artist", "Song A"))
	}

	// Let the first fetch run before the track changes.
	time.Sleep(50 * time.Millisecond)

	p.OnSnapshot(trackSnapshot("Artist", "Song B"))

	time.Sleep(50 * time.Millisecond)

	if got := fetcher.count(); got != 2 {
		t.Errorf("expected 2 prefetches after a title change, got %d", got)
	}

	fetcher.mu.Lock()
	last := fetcher.calls[len(fetcher.calls)-1]
	fetcher.mu.Unlock()
	if last != "Artist - Song B" {
		t.Errorf("second prefetch = %q, want the new track", last)
	}
}

func TestPrefetchSkipsStaleTrack(t *testing.T) {
	fetcher := &countingFetcher{}
	p := NewTrackPrefetcher(fetcher)

	// The track changes before the scheduled fetch gets to run, so only
	// the newest track is fetched.
	p.OnSnapshot(trackSnapshot("Artist", "Song A"))
	p.OnSnapshot(trackSnapshot("Artist", "Song B"))

	time.Sleep(50 * time.Millisecond)

	fetcher.mu.Lock()
	calls := append([]string(nil), fetcher.calls...)
	fetcher.mu.Unlock()

	if len(calls) != 1 {
		t.Fatalf("expected the superseded fetch to be skipped, got %d prefetches", len(calls))
	}
	if calls[0] != "Artist - Song B" {
		t.Errorf("prefetch = %q, want the newest track", calls[0])
	}
}

func TestPrefetchKeyIsCaseAndSpaceInsensitive(t *testing.T) {
	fetcher := &countingFetcher{}
	p := NewTrackPrefetcher(fetcher)

	p.OnSnapshot(trackSnapshot("Artist", "Song"))
	p.OnSnapshot(trackSnapshot("  ARTIST  ", "song "))

	time.Sleep(50 * time.Millisecond)

	if got := fetcher.count(); got != 1 {
		t.Errorf("expected normalized keys to dedupe, got %d prefetches", got)
	}
}

func TestPrefetchSkipsMissingMetadata(t *testing.T) {
	fetcher := &countingFetcher{}
	p := NewTrackPrefetcher(fetcher)

	p.OnSnapshot(trackSnapshot("", "Song"))
	p.OnSnapshot(trackSnapshot("Artist", ""))
	p.OnSnapshot(trackSnapshot("  ", "  "))

	time.Sleep(50 * time.Millisecond)

	if got := fetcher.count(); got != 0 {
		t.Errorf("expected no prefetch without artist and title, got %d", got)
	}
}

func TestPrefetchAfterReset(t *testing.T) {
	fetcher := &countingFetcher{}
	p := NewTrackPrefetcher(fetcher)

	p.OnSnapshot(trackSnapshot("Artist", "Song"))
	time.Sleep(50 * time.Millisecond)

	p.Reset()
	p.OnSnapshot(trackSnapshot("Artist", "Song"))
	time.Sleep(50 * time.Millisecond)

	if got := fetcher.count(); got != 2 {
		t.Errorf("expected a fresh prefetch after reset, got %d", got)
	}
}
