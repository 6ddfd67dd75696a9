package cache

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/lyrics"
)

// DAO provides data access operations for the cache. It implements
// lyrics.Store. Expired rows read as misses; Prune removes them for real.
type DAO struct {
	db     *DB
	maxAge time.Duration
}

// NewDAO creates a DAO over db. A non-positive maxAge uses DefaultMaxAge.
func NewDAO(db *DB, maxAge time.Duration) *DAO {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &DAO{db: db, maxAge: maxAge}
}

// --- Lyrics Operations ---

// GetLyrics returns cached lyrics, or nil on a miss or an expired entry.
func (dao *DAO) GetLyrics(artist, title string) (*lyrics.Cached, error) {
	db := dao.db.DB()
	if db == nil {
		return nil, fmt.Errorf("database not open")
	}

	var (
		body, source, cachedAt string
		synced                 sql.NullString
		hasSynced              int
	)
	err := db.QueryRow(`
		SELECT lyrics, synced, has_synced, source, cached_at FROM lyrics WHERE key = ?
	`, lyricsKey(artist, title)).Scan(&body, &synced, &hasSynced, &source, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	at, err := time.Parse(time.RFC3339, cachedAt)
	if err != nil || time.Since(at) > dao.maxAge {
		log.Debug().Str("artist", artist).Str("title", title).Msg("Lyrics cache entry expired")
		return nil, nil
	}

	cached := &lyrics.Cached{
		Lyrics:    body,
		HasSynced: hasSynced == 1,
		Source:    source,
		CachedAt:  at,
	}
	if synced.Valid && synced.String != "" {
		if err := json.Unmarshal([]byte(synced.String), &cached.Synced); err != nil {
			return nil, fmt.Errorf("decoding synced lyrics: %w", err)
		}
	}

	return cached, nil
}

// SetLyrics inserts or replaces a lyrics entry.
func (dao *DAO) SetLyrics(artist, title string, c *lyrics.Cached) error {
	db := dao.db.DB()
	if db == nil {
		return fmt.Errorf("database not open")
	}

	var synced any
	if len(c.Synced) > 0 {
		data, err := json.Marshal(c.Synced)
		if err != nil {
			return fmt.Errorf("encoding synced lyrics: %w", err)
		}
		synced = string(data)
	}

	hasSynced := 0
	if c.HasSynced {
		hasSynced = 1
	}
	cachedAt := c.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}

	_, err := db.Exec(`
		INSERT INTO lyrics (key, artist, title, lyrics, synced, has_synced, source, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			lyrics = ?, synced = ?, has_synced = ?, source = ?, cached_at = ?
	`,
		lyricsKey(artist, title), artist, title, c.Lyrics, synced, hasSynced, c.Source, cachedAt.Format(time.RFC3339),
		c.Lyrics, synced, hasSynced, c.Source, cachedAt.Format(time.RFC3339),
	)
	return err
}

// --- Image Operations ---

// GetImage returns a cached image by source URL, or nil on a miss or an
// expired entry.
func (dao *DAO) GetImage(url string) (*CachedImage, error) {
	db := dao.db.DB()
	if db == nil {
		return nil, fmt.Errorf("database not open")
	}

	img := &CachedImage{Key: imageKey(url)}
	var cacheControl sql.NullString
	var cachedAt string

	err := db.QueryRow(`
		SELECT url, data, content_type, cache_control, cached_at FROM images WHERE key = ?
	`, img.Key).Scan(&img.URL, &img.Data, &img.ContentType, &cacheControl, &cachedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	at, err := time.Parse(time.RFC3339, cachedAt)
	if err != nil || time.Since(at) > dao.maxAge {
		return nil, nil
	}

	img.CachedAt = at
	if cacheControl.Valid {
		img.CacheControl = cacheControl.String
	}
	return img, nil
}

// SetImage inserts or replaces an image entry.
func (dao *DAO) SetImage(url string, data []byte, contentType, cacheControl string) error {
	db := dao.db.DB()
	if db == nil {
		return fmt.Errorf("database not open")
	}

	now := time.Now().Format(time.RFC3339)
	_, err := db.Exec(`
		INSERT INTO images (key, url, data, content_type, cache_control, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			url = ?, data = ?, content_type = ?, cache_control = ?, cached_at = ?
	`,
		imageKey(url), url, data, contentType, cacheControl, now,
		url, data, contentType, cacheControl, now,
	)
	return err
}

// lyricsKey hashes the normalized artist::title pair.
func lyricsKey(artist, title string) string {
	normalized := strings.ToLower(strings.TrimSpace(artist)) + "::" + strings.ToLower(strings.TrimSpace(title))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// imageKey hashes the normalized source URL.
func imageKey(url string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(url))))
	return hex.EncodeToString(sum[:])
}
