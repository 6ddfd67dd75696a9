// Package main is the entry point for the YTM remote server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/auth"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/broadcast"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/lyrics"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/infra/cache"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/infra/ytm"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/transport/httpapi"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/transport/socketio"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/version"
)

func main() {
	// Command line flags
	port := flag.String("port", "3000", "HTTP server port")
	ytmHost := flag.String("ytm-host", "localhost", "Desktop player host")
	ytmPort := flag.Int("ytm-port", 9863, "Desktop player API port")
	throttleMs := flag.Int("throttle-ms", 100, "Minimum interval between progress broadcasts in milliseconds")
	tokenFile := flag.String("token-file", auth.DefaultTokenFile, "Auth token file path")
	cachePath := flag.String("cache", cache.DefaultDBPath, "SQLite cache database path")
	cacheTTLHours := flag.Int("cache-ttl-hours", 168, "Cache entry lifetime in hours")
	maxExternal := flag.Int("max-external", 1, "Maximum concurrent non-localhost Socket.io clients")
	staticDir := flag.String("static", "", "Directory to serve static files from (optional)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Print startup banner
	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Remote control server for the desktop music player")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("port", *port).
		Str("ytm_host", *ytmHost).
		Int("ytm_port", *ytmPort).
		Int("throttle_ms", *throttleMs).
		Int("max_external", *maxExternal).
		Msg("Configuration")

	cacheTTL := time.Duration(*cacheTTLHours) * time.Hour

	// Open SQLite cache
	db := cache.NewDB(*cachePath)
	if err := db.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer db.Close()

	if err := db.Prune(cacheTTL); err != nil {
		log.Warn().Err(err).Msg("Cache prune failed")
	}

	dao := cache.NewDAO(db, cacheTTL)
	playlistCache := cache.NewPlaylistCache()

	// Load the stored auth token, if any
	authMgr := auth.NewManager(*tokenFile)
	if token, err := authMgr.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load auth token")
	} else if token != "" {
		log.Info().Msg("Loaded saved auth token")
	}

	// Desktop player API client
	ytmBaseURL := fmt.Sprintf("http://%s:%d", *ytmHost, *ytmPort)
	ytmClient := ytm.NewClient(authMgr, ytm.WithBaseURL(ytmBaseURL))

	// Lyrics fetcher backed by the SQLite cache
	lyricsFetcher := lyrics.NewFetcher(dao)

	// Broadcast pipeline: prefetcher -> scheduler -> Socket.io fan-out
	prefetcher := broadcast.NewTrackPrefetcher(lyricsFetcher)

	socketServer, err := socketio.NewServer(nil, ytmClient, *maxExternal)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	scheduler := broadcast.NewScheduler(socketServer, prefetcher, time.Duration(*throttleMs)*time.Millisecond)
	socketServer.SetSource(scheduler)

	// Realtime link to the desktop player
	link := ytm.NewLink(authMgr, scheduler.OnSnapshot, scheduler.Reset,
		ytm.WithLinkBaseURL(ytmBaseURL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Authenticate in the background so the HTTP server comes up immediately
	go initializeAuth(ctx, authMgr, ytmClient)
	go link.Run(ctx)

	// Setup HTTP server
	api := httpapi.NewHandler(ytmClient, authMgr, scheduler, lyricsFetcher, dao, playlistCache, link)

	apiRoutes := api.Routes()

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", socketServer)
	mux.Handle("/health", apiRoutes)
	mux.Handle("/api/", apiRoutes)

	// Serve static files if directory specified (SPA mode)
	if *staticDir != "" {
		log.Info().Str("dir", *staticDir).Msg("Serving static files")
		fs := http.FileServer(http.Dir(*staticDir))
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := *staticDir + r.URL.Path
			if r.URL.Path == "/" {
				path = *staticDir + "/index.html"
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				// For SPA routing, serve index.html for non-existing paths
				http.ServeFile(w, r, *staticDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
	}

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", ":"+*port).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}

// initializeAuth validates the saved token or runs the auth flow, retrying
// until the desktop player becomes reachable.
func initializeAuth(ctx context.Context, authMgr *auth.Manager, client *ytm.Client) {
	for {
		if authMgr.IsAuthenticated() {
			// Validate the saved token with a state poll
			if _, err := client.PlayerState(ctx); err == nil {
				log.Info().Msg("Saved auth token is valid")
				return
			}
			// A 401 clears the token; anything else means the player is down
			if authMgr.IsAuthenticated() {
				log.Warn().Msg("Desktop player not reachable, retrying")
			}
		} else {
			if err := client.Authenticate(ctx); err != nil {
				log.Warn().Err(err).Msg("Authentication failed, retrying")
			} else {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}
