// Package auth manages the desktop player auth token: held in memory for the
// process, persisted to a token file across restarts.
package auth

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultTokenFile is the token file path relative to the working directory.
const DefaultTokenFile = "authToken.txt"

// Manager holds the auth token and its on-disk copy. Safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewManager creates a manager persisting to path. An empty path uses
// DefaultTokenFile.
func NewManager(path string) *Manager {
	if path == "" {
		path = DefaultTokenFile
	}
	return &Manager{path: path}
}

// Token returns the current token, empty when not authenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// IsAuthenticated reports whether a token is held.
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// Load reads the token file into memory. A missing file is not an error;
// it returns an empty token.
func (m *Manager) Load() (string, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", nil
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	log.Info().Str("path", m.path).Msg("Auth token loaded")
	return token, nil
}

// Save writes the token to the file and memory.
func (m *Manager) Save(token string) error {
	if err := os.WriteFile(m.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	log.Info().Str("path", m.path).Msg("Auth token saved")
	return nil
}

// Delete removes the token file and clears memory.
func (m *Manager) Delete() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()

	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting token file: %w", err)
	}

	log.Info().Str("path", m.path).Msg("Auth token deleted")
	return nil
}

// Clear drops the token from memory, leaving the file in place.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}
