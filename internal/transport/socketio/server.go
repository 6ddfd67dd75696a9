// Package socketio provides the Socket.io server that fans player state out
// to connected web clients.
package socketio

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/player"
)

// StateSource provides the latest known player state for late joiners.
type StateSource interface {
	Current() *player.State
}

// CommandSender forwards playback commands to the desktop player.
type CommandSender interface {
	SendCommand(ctx context.Context, command string, data any) error
}

// Server handles Socket.io connections and state fan-out.
type Server struct {
	io       *socket.Server
	source   StateSource
	commands CommandSender
	limiter  *ConnectionLimiter
	mu       sync.RWMutex
	clients  map[string]*socket.Socket
}

// NewServer creates a new Socket.io server. maxExternal caps concurrent
// non-localhost clients. source may be set later via SetSource when it
// depends on the server itself.
func NewServer(source StateSource, commands CommandSender, maxExternal int) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := socket.NewServer(nil, opts)

	s := &Server{
		io:       server,
		source:   source,
		commands: commands,
		limiter:  NewConnectionLimiter(maxExternal),
		clients:  make(map[string]*socket.Socket),
	}

	s.setupHandlers()

	return s, nil
}

// SetSource installs the state source. Call before serving traffic.
func (s *Server) SetSource(source StateSource) {
	s.mu.Lock()
	s.source = source
	s.mu.Unlock()
}

// currentState reads the latest snapshot, tolerating a missing source.
func (s *Server) currentState() *player.State {
	s.mu.RLock()
	source := s.source
	s.mu.RUnlock()

	if source == nil {
		return nil
	}
	return source.Current()
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())
		remoteIP := client.Handshake().Address

		allowed, evictedID := s.limiter.TryAdd(clientID, remoteIP)
		if !allowed {
			log.Warn().Str("id", clientID).Str("ip", remoteIP).Msg("Connection rejected")
			client.Disconnect(true)
			return
		}
		if evictedID != "" {
			s.evict(evictedID)
		}

		log.Info().Str("id", clientID).Str("ip", remoteIP).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		// Late joiners get the current state right away.
		if state := s.currentState(); state != nil {
			client.Emit("state-update", state)
		}

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.limiter.Remove(clientID)
			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		client.On("getState", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getState")
			if state := s.currentState(); state != nil {
				client.Emit("state-update", state)
			}
		})

		client.On("command", func(args ...any) {
			if len(args) == 0 {
				return
			}
			m, ok := args[0].(map[string]interface{})
			if !ok {
				return
			}
			command, ok := m["command"].(string)
			if !ok || command == "" {
				return
			}
			data := m["data"]

			log.Debug().Str("id", clientID).Str("command", command).Msg("command")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.commands.SendCommand(ctx, command, data); err != nil {
				log.Error().Err(err).Str("command", command).Msg("Command failed")
			}
		})
	})
}

// evict disconnects a client that was bumped by the connection limiter.
func (s *Server) evict(clientID string) {
	s.mu.Lock()
	client := s.clients[clientID]
	delete(s.clients, clientID)
	s.mu.Unlock()

	if client != nil {
		log.Info().Str("id", clientID).Msg("Evicting oldest external client")
		client.Emit("connection-replaced")
		client.Disconnect(true)
	}
}

// Broadcast sends a state snapshot to all connected clients.
func (s *Server) Broadcast(state *player.State) {
	if state == nil {
		return
	}

	s.io.Emit("state-update", state)

	if log.Debug().Enabled() {
		data, _ := json.Marshal(state)
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().RawJSON("state", data).Int("clients", clientCount).Msg("Broadcast state")
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close closes the Socket.io server.
func (s *Server) Close() error {
	s.io.Close(nil)
	return nil
}
