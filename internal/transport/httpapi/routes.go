// Package httpapi provides the REST API used by the web client.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/lyrics"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/player"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/infra/cache"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/infra/ytm"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/version"
)

const (
	// maxProxyImageSize caps downloads through the image proxy.
	maxProxyImageSize = 10 << 20 // 10 MiB

	// defaultImageCacheControl is applied when upstream sends none.
	defaultImageCacheControl = "public, max-age=86400"
)

// DesktopClient is the slice of the desktop player client the API needs.
type DesktopClient interface {
	PlayerState(ctx context.Context) (*player.State, error)
	Playlists(ctx context.Context) ([]ytm.Playlist, error)
	SendCommand(ctx context.Context, command string, data any) error
	Authenticate(ctx context.Context) error
}

// AuthState exposes the current authentication status.
type AuthState interface {
	IsAuthenticated() bool
}

// StateSource provides the latest broadcast player state.
type StateSource interface {
	Current() *player.State
}

// LyricsService fetches lyrics for a track.
type LyricsService interface {
	Fetch(ctx context.Context, artist, title string) (*lyrics.Result, error)
}

// ImageStore caches proxied artwork.
type ImageStore interface {
	GetImage(rawURL string) (*cache.CachedImage, error)
	SetImage(rawURL string, data []byte, contentType, cacheControl string) error
}

// Kicker forces the realtime link to redial, used after re-authentication.
type Kicker interface {
	Kick()
	Connected() bool
}

// Handler bundles the API's dependencies.
type Handler struct {
	desktop   DesktopClient
	auth      AuthState
	source    StateSource
	lyrics    LyricsService
	images    ImageStore
	playlists *cache.PlaylistCache
	link      Kicker
	proxy     *http.Client
}

// NewHandler creates the REST API handler.
func NewHandler(desktop DesktopClient, auth AuthState, source StateSource, lyricsSvc LyricsService, images ImageStore, playlists *cache.PlaylistCache, link Kicker) *Handler {
	return &Handler{
		desktop:   desktop,
		auth:      auth,
		source:    source,
		lyrics:    lyricsSvc,
		images:    images,
		playlists: playlists,
		link:      link,
		proxy: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Routes builds the chi router with CORS applied.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.handleStatus)
		r.Get("/state", h.handleState)
		r.Get("/playlists", h.handlePlaylists)
		r.Post("/command", h.handleCommand)
		r.Post("/reauth", h.handleReauth)
		r.Get("/lyrics", h.handleLyrics)
		r.Get("/proxy/image", h.handleProxyImage)
		r.Get("/version", h.handleVersion)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"connected": h.auth.IsAuthenticated() && h.link.Connected(),
		"hasState":  h.source.Current() != nil,
	})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	if !h.auth.IsAuthenticated() {
		writeError(w, http.StatusUnauthorized, "not authenticated with desktop player")
		return
	}

	// Prefer the realtime snapshot; fall back to a REST poll.
	if state := h.source.Current(); state != nil {
		writeJSON(w, http.StatusOK, state)
		return
	}

	state, err := h.desktop.PlayerState(r.Context())
	if err != nil {
		if errors.Is(err, ytm.ErrUnauthorized) || errors.Is(err, ytm.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "not authenticated with desktop player")
			return
		}
		writeError(w, http.StatusBadGateway, "desktop player unreachable")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.desktop.Playlists(r.Context())
	if err == nil {
		if data, merr := json.Marshal(playlists); merr == nil {
			h.playlists.Set(data, len(playlists))
		}
		writeJSON(w, http.StatusOK, playlists)
		return
	}

	// Serve the cached copy when the desktop player is unavailable.
	if data := h.playlists.Get(); data != nil {
		log.Warn().Err(err).Msg("Serving cached playlists")
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "stale")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	if errors.Is(err, ytm.ErrUnauthorized) || errors.Is(err, ytm.ErrNotAuthenticated) {
		writeError(w, http.StatusUnauthorized, "not authenticated with desktop player")
		return
	}
	writeError(w, http.StatusBadGateway, "desktop player unreachable")
}

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Command string `json:"command"`
		Data    any    `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Command == "" {
		writeError(w, http.StatusBadRequest, "command is required")
		return
	}

	if err := h.desktop.SendCommand(r.Context(), body.Command, body.Data); err != nil {
		if errors.Is(err, ytm.ErrUnauthorized) || errors.Is(err, ytm.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "not authenticated with desktop player")
			return
		}
		writeError(w, http.StatusBadGateway, "command failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleReauth(w http.ResponseWriter, r *http.Request) {
	log.Info().Msg("Re-authentication requested")

	if err := h.desktop.Authenticate(r.Context()); err != nil {
		log.Error().Err(err).Msg("Re-authentication failed")
		writeError(w, http.StatusBadGateway, "authentication failed")
		return
	}

	// Redial the realtime stream with the fresh token.
	h.link.Kick()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleLyrics(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	title := r.URL.Query().Get("title")
	if artist == "" || title == "" {
		writeError(w, http.StatusBadRequest, "artist and title are required")
		return
	}

	result, err := h.lyrics.Fetch(r.Context(), artist, title)
	if err != nil {
		if errors.Is(err, lyrics.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lyrics not found")
			return
		}
		log.Error().Err(err).Str("artist", artist).Str("title", title).Msg("Lyrics fetch failed")
		writeError(w, http.StatusBadGateway, "lyrics provider unreachable")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleProxyImage(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeError(w, http.StatusBadRequest, "invalid image url")
		return
	}

	if img, err := h.images.GetImage(rawURL); err == nil && img != nil {
		serveImage(w, img, "hit")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image url")
		return
	}

	resp, err := h.proxy.Do(req)
	if err != nil {
		writeError(w, http.StatusBadGateway, "image fetch failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		writeError(w, http.StatusBadGateway, "image fetch failed")
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyImageSize))
	if err != nil {
		writeError(w, http.StatusBadGateway, "image fetch failed")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	cacheControl := resp.Header.Get("Cache-Control")
	if cacheControl == "" {
		cacheControl = defaultImageCacheControl
	}

	if err := h.images.SetImage(rawURL, data, contentType, cacheControl); err != nil {
		log.Warn().Err(err).Msg("Failed to cache image")
	}

	serveImage(w, &cache.CachedImage{
		Data:         data,
		ContentType:  contentType,
		CacheControl: cacheControl,
	}, "miss")
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    version.Name,
		"version": version.Version,
	})
}

func serveImage(w http.ResponseWriter, img *cache.CachedImage, cacheStatus string) {
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", img.CacheControl)
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
