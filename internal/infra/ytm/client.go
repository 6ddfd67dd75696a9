// Package ytm talks to the desktop player's local remote-control API: the
// REST surface for auth, state, playlists and commands, and the realtime
// WebSocket state stream.
package ytm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/player"
)

const (
	// DefaultBaseURL is the desktop player's local API address.
	DefaultBaseURL = "http://localhost:9863"

	// DefaultTimeout for REST requests against the local API.
	DefaultTimeout = 10 * time.Second

	// App identity sent during the authentication handshake.
	AppID      = "ytmremoteserver"
	AppName    = "YTM Remote Server"
	AppVersion = "2.1.3"
)

// Sentinel errors callers branch on.
var (
	// ErrNotAuthenticated is returned when no token is available.
	ErrNotAuthenticated = errors.New("not authenticated with desktop player")

	// ErrUnauthorized is returned when the desktop player rejects the token.
	// The stored token has already been cleared when this is returned.
	ErrUnauthorized = errors.New("desktop player rejected auth token")
)

// TokenStore is the slice of the auth manager the client needs.
type TokenStore interface {
	Token() string
	Save(token string) error
	Clear()
	Delete() error
}

// AppInfo is the desktop player's identity from the query endpoint.
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Playlist is one user playlist as reported by the desktop player.
type Playlist struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Author     string             `json:"author"`
	VideoCount int                `json:"videoCount"`
	Thumbnails []player.Thumbnail `json:"thumbnails"`
}

// Client is the REST client for the desktop player API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       TokenStore
}

// ClientOption is a functional option for configuring the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a desktop player API client using auth for tokens.
func NewClient(auth TokenStore, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		auth: auth,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AppInfo queries the desktop player's identity. Succeeding means the app is
// running with remote control enabled.
func (c *Client) AppInfo(ctx context.Context) (*AppInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying desktop player: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("desktop player query returned status %d", resp.StatusCode)
	}

	var info AppInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding app info: %w", err)
	}
	return &info, nil
}

// RequestAuthCode starts the authentication flow. The user must accept the
// request inside the desktop player.
func (c *Client) RequestAuthCode(ctx context.Context) (string, error) {
	body := map[string]string{
		"appId":      AppID,
		"appName":    AppName,
		"appVersion": AppVersion,
	}

	var out struct {
		Code string `json:"code"`
	}
	if err := c.postJSON(ctx, "/api/v1/auth/requestcode", "", body, &out); err != nil {
		return "", fmt.Errorf("requesting auth code: %w", err)
	}
	return out.Code, nil
}

// RequestAuthToken exchanges an accepted auth code for a token.
func (c *Client) RequestAuthToken(ctx context.Context, code string) (string, error) {
	body := map[string]string{
		"appId": AppID,
		"code":  code,
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.postJSON(ctx, "/api/v1/auth/request", "", body, &out); err != nil {
		return "", fmt.Errorf("requesting auth token: %w", err)
	}
	return out.Token, nil
}

// Authenticate runs the full code-token flow and persists the token.
func (c *Client) Authenticate(ctx context.Context) error {
	if _, err := c.AppInfo(ctx); err != nil {
		return fmt.Errorf("desktop player not reachable: %w", err)
	}

	log.Info().Msg("Desktop player detected, requesting authorization - accept the request in the app")

	code, err := c.RequestAuthCode(ctx)
	if err != nil {
		return err
	}

	token, err := c.RequestAuthToken(ctx, code)
	if err != nil {
		return err
	}
	if token == "" {
		return errors.New("desktop player returned an empty token")
	}

	if err := c.auth.Save(token); err != nil {
		return err
	}

	log.Info().Msg("Authentication successful")
	return nil
}

// PlayerState fetches the current player state snapshot over REST.
func (c *Client) PlayerState(ctx context.Context) (*player.State, error) {
	var state player.State
	if err := c.getJSON(ctx, "/api/v1/state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Playlists fetches the user's playlists.
func (c *Client) Playlists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist
	if err := c.getJSON(ctx, "/api/v1/playlists", &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// SendCommand submits a playback command. A nil data sends the bare command.
func (c *Client) SendCommand(ctx context.Context, command string, data any) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	body := map[string]any{"command": command}
	if data != nil {
		body["data"] = data
	}

	log.Debug().Str("command", command).Interface("data", data).Msg("Sending command to desktop player")
	return c.postJSON(ctx, "/api/v1/command", token, body, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	token := c.auth.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("desktop player request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("desktop player request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// checkStatus maps HTTP errors, clearing the stored token on 401 so the next
// startup re-runs the auth flow.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn().Msg("Auth token invalid or expired")
		c.auth.Clear()
		if err := c.auth.Delete(); err != nil {
			log.Error().Err(err).Msg("Failed to delete auth token")
		}
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("desktop player returned status %d", resp.StatusCode)
	}
	return nil
}
