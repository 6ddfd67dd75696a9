package ytm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/player"
)

const (
	// DefaultReconnectDelay between connection attempts.
	DefaultReconnectDelay = 3 * time.Second

	// realtimePath is the desktop player's state stream endpoint.
	realtimePath = "/api/v1/realtime"
)

// envelope is the wire frame of the realtime stream.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Link maintains the WebSocket connection to the desktop player and feeds
// decoded state snapshots into onSnapshot. It reconnects on its own until
// the context is cancelled.
type Link struct {
	baseURL    string
	auth       TokenStore
	dialer     *websocket.Dialer
	reconnect  time.Duration
	onSnapshot func(*player.State)
	onConnect  func()

	connected atomic.Bool

	mu   sync.Mutex
	conn *websocket.Conn
	kick chan struct{}
}

// LinkOption is a functional option for configuring the link.
type LinkOption func(*Link)

// WithLinkBaseURL sets the desktop player base URL (http scheme, converted
// to ws internally).
func WithLinkBaseURL(u string) LinkOption {
	return func(l *Link) {
		l.baseURL = u
	}
}

// WithReconnectDelay overrides the delay between connection attempts.
func WithReconnectDelay(d time.Duration) LinkOption {
	return func(l *Link) {
		l.reconnect = d
	}
}

// NewLink creates the realtime link. onSnapshot receives every decoded state
// update; onConnect fires after each successful (re)connect, before the first
// snapshot of that session.
func NewLink(auth TokenStore, onSnapshot func(*player.State), onConnect func(), opts ...LinkOption) *Link {
	l := &Link{
		baseURL:    DefaultBaseURL,
		auth:       auth,
		dialer:     websocket.DefaultDialer,
		reconnect:  DefaultReconnectDelay,
		onSnapshot: onSnapshot,
		onConnect:  onConnect,
		kick:       make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Connected reports whether the realtime stream is currently up.
func (l *Link) Connected() bool {
	return l.connected.Load()
}

// Kick drops the current connection (if any) and forces an immediate redial.
// Used after re-authentication so the stream picks up the new token.
func (l *Link) Kick() {
	l.mu.Lock()
	if l.conn != nil {
		l.conn.Close()
	}
	l.mu.Unlock()

	select {
	case l.kick <- struct{}{}:
	default:
	}
}

// Run drives the connect-read-reconnect loop until ctx is cancelled.
func (l *Link) Run(ctx context.Context) {
	for {
		token := l.auth.Token()
		if token == "" {
			if !l.wait(ctx) {
				return
			}
			continue
		}

		if err := l.session(ctx, token); err != nil {
			log.Warn().Err(err).Msg("Realtime connection lost")
		}

		if ctx.Err() != nil {
			return
		}
		if !l.wait(ctx) {
			return
		}
	}
}

// wait sleeps for the reconnect delay, returning false when ctx is done.
// A Kick cuts the wait short.
func (l *Link) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-l.kick:
		return true
	case <-time.After(l.reconnect):
		return true
	}
}

// session dials the stream and reads until the connection drops.
func (l *Link) session(ctx context.Context, token string) error {
	wsURL, err := realtimeURL(l.baseURL)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", token)

	conn, resp, err := l.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			log.Warn().Msg("Realtime handshake rejected, clearing auth token")
			l.auth.Clear()
			if derr := l.auth.Delete(); derr != nil {
				log.Error().Err(derr).Msg("Failed to delete auth token")
			}
		}
		return err
	}

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	l.connected.Store(true)
	log.Info().Msg("Connected to desktop player realtime stream")

	if l.onConnect != nil {
		l.onConnect()
	}

	defer func() {
		l.connected.Store(false)
		l.mu.Lock()
		l.conn = nil
		l.mu.Unlock()
		conn.Close()
	}()

	// Close the socket when ctx is cancelled so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		l.handleMessage(msg)
	}
}

func (l *Link) handleMessage(msg []byte) {
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Debug().Err(err).Msg("Discarding malformed realtime frame")
		return
	}

	switch env.Event {
	case "state-update":
		var state player.State
		if err := json.Unmarshal(env.Data, &state); err != nil {
			log.Debug().Err(err).Msg("Discarding malformed state update")
			return
		}
		if l.onSnapshot != nil {
			l.onSnapshot(&state)
		}
	default:
		// Other events are not part of the state stream.
	}
}

// realtimeURL converts the HTTP base URL into the ws endpoint URL.
func realtimeURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + realtimePath
	return u.String(), nil
}
