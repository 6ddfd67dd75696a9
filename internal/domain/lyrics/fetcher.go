package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the lrclib.net API base URL.
	DefaultBaseURL = "https://lrclib.net"

	// DefaultUserAgent identifies this app per lrclib guidelines.
	DefaultUserAgent = "YTM-Remote-Server/2.1 (https://github.com/D4ryB3rry/YTM-Remote-Server)"

	// DefaultTimeout for lyrics HTTP requests.
	DefaultTimeout = 15 * time.Second

	// DefaultNotFoundTTL suppresses repeat lookups for tracks without lyrics.
	DefaultNotFoundTTL = time.Hour
)

// ErrNotFound is returned when no provider has lyrics for the track.
var ErrNotFound = errors.New("lyrics not found")

// lrcLine matches [mm:ss.xx] or [mm:ss.xxx] timestamps.
var lrcLine = regexp.MustCompile(`^\[(\d{2}):(\d{2})\.(\d{2,3})\](.*)$`)

// Fetcher retrieves lyrics with a cache-first policy. Concurrent requests for
// the same track share one upstream call, and negative results are remembered
// for a while so a track without lyrics does not hammer the provider.
type Fetcher struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	store       Store
	notFoundTTL time.Duration

	mu       sync.Mutex
	inflight map[string]*call
	notFound map[string]time.Time
}

type call struct {
	done chan struct{}
	res  *Result
	err  error
}

// Option is a functional option for configuring the fetcher.
type Option func(*Fetcher)

// WithBaseURL sets a custom provider base URL (useful for testing).
func WithBaseURL(u string) Option {
	return func(f *Fetcher) {
		f.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithNotFoundTTL overrides the negative-result suppression window.
func WithNotFoundTTL(ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.notFoundTTL = ttl
	}
}

// NewFetcher creates a lyrics fetcher backed by store. A nil store disables
// persistent caching but keeps in-flight dedupe and negative suppression.
func NewFetcher(store Store, opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		store:       store,
		notFoundTTL: DefaultNotFoundTTL,
		inflight:    make(map[string]*call),
		notFound:    make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch returns lyrics for the track, from cache when possible. Returns
// ErrNotFound when the provider has none.
func (f *Fetcher) Fetch(ctx context.Context, artist, title string) (*Result, error) {
	key := trackKey(artist, title)

	if f.store != nil {
		cached, err := f.store.GetLyrics(artist, title)
		if err != nil {
			log.Error().Err(err).Str("artist", artist).Str("title", title).Msg("Lyrics cache read failed")
		} else if cached != nil {
			return &Result{
				Lyrics:    cached.Lyrics,
				Synced:    cached.Synced,
				HasSynced: cached.HasSynced,
				Source:    cached.Source + " (cached)",
			}, nil
		}
	}

	f.mu.Lock()
	if seen, ok := f.notFound[key]; ok && time.Since(seen) < f.notFoundTTL {
		f.mu.Unlock()
		return nil, ErrNotFound
	}
	if c, ok := f.inflight[key]; ok {
		f.mu.Unlock()
		select {
		case <-c.done:
			return c.res, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c := &call{done: make(chan struct{})}
	f.inflight[key] = c
	f.mu.Unlock()

	c.res, c.err = f.fetchAndCache(ctx, artist, title, key)
	close(c.done)

	f.mu.Lock()
	delete(f.inflight, key)
	f.mu.Unlock()

	return c.res, c.err
}

// Prefetch warms the cache without surfacing errors to the caller.
func (f *Fetcher) Prefetch(artist, title string) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	if _, err := f.Fetch(ctx, artist, title); err != nil && !errors.Is(err, ErrNotFound) {
		log.Debug().Err(err).Str("artist", artist).Str("title", title).Msg("Lyrics prefetch failed")
	}
}

func (f *Fetcher) fetchAndCache(ctx context.Context, artist, title, key string) (*Result, error) {
	res, err := f.fetchFromLRCLib(ctx, artist, title)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			f.mu.Lock()
			f.notFound[key] = time.Now()
			f.mu.Unlock()
		}
		return nil, err
	}

	f.mu.Lock()
	delete(f.notFound, key)
	f.mu.Unlock()

	if f.store != nil {
		cached := &Cached{
			Lyrics:    res.Lyrics,
			Synced:    res.Synced,
			HasSynced: res.HasSynced,
			Source:    res.Source,
			CachedAt:  time.Now(),
		}
		if err := f.store.SetLyrics(artist, title, cached); err != nil {
			log.Error().Err(err).Str("artist", artist).Str("title", title).Msg("Lyrics cache write failed")
		}
	}

	return res, nil
}

// lrclibResponse is the subset of the lrclib.net get response we consume.
type lrclibResponse struct {
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

func (f *Fetcher) fetchFromLRCLib(ctx context.Context, artist, title string) (*Result, error) {
	q := url.Values{}
	q.Set("artist_name", artist)
	q.Set("track_name", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/get?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building lyrics request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	log.Debug().Str("artist", artist).Str("title", title).Msg("Fetching lyrics from lrclib.net")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lyrics request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lrclib.net returned status %d", resp.StatusCode)
	}

	var data lrclibResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding lyrics response: %w", err)
	}

	if data.PlainLyrics == "" && data.SyncedLyrics == "" {
		return nil, ErrNotFound
	}

	res := &Result{
		Lyrics:    data.PlainLyrics,
		HasSynced: data.SyncedLyrics != "",
		Source:    "lrclib.net",
	}
	if res.Lyrics == "" {
		res.Lyrics = data.SyncedLyrics
	}
	if data.SyncedLyrics != "" {
		res.Synced = ParseLRC(data.SyncedLyrics)
	}

	return res, nil
}

// ParseLRC converts LRC-formatted lyrics into time-stamped lines. Lines
// without a timestamp are skipped.
func ParseLRC(lrc string) []SyncedLine {
	var parsed []SyncedLine

	for _, line := range strings.Split(lrc, "\n") {
		m := lrcLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		frac := m[3]
		if len(frac) > 2 {
			frac = frac[:2]
		}
		centis, _ := strconv.Atoi(frac)

		parsed = append(parsed, SyncedLine{
			Time: float64(minutes)*60 + float64(seconds) + float64(centis)/100,
			Text: strings.TrimSpace(m[4]),
		})
	}

	return parsed
}

// trackKey normalizes a track identity for dedupe maps.
func trackKey(artist, title string) string {
	return strings.ToLower(strings.TrimSpace(artist)) + "::" + strings.ToLower(strings.TrimSpace(title))
}
