// Package broadcast decides when received player snapshots are fanned out to
// connected web clients, throttling pure progress ticks while keeping state
// transitions instant.
package broadcast

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/player"
)

// DefaultThrottleInterval is the minimum spacing between pure-progress
// broadcasts. State transitions bypass it.
const DefaultThrottleInterval = 100 * time.Millisecond

// Sink receives snapshots selected for fan-out to all subscribers.
type Sink interface {
	Broadcast(state *player.State)
}

// Scheduler owns the broadcast bookkeeping for one upstream connection:
// the last broadcast snapshot and time, and the latest received snapshot
// served to late-joining clients. OnSnapshot must be called from a single
// goroutine (the upstream read loop); the mutex exists because Current is
// read concurrently from HTTP and socket handlers.
type Scheduler struct {
	sink       Sink
	prefetcher *TrackPrefetcher
	throttle   time.Duration
	now        func() time.Time

	mu              sync.Mutex
	current         *player.State
	lastBroadcast   *player.State
	lastBroadcastAt time.Time
}

// NewScheduler creates a scheduler delivering to sink. prefetcher may be nil.
// A non-positive throttle falls back to DefaultThrottleInterval.
func NewScheduler(sink Sink, prefetcher *TrackPrefetcher, throttle time.Duration) *Scheduler {
	if throttle <= 0 {
		throttle = DefaultThrottleInterval
	}
	return &Scheduler{
		sink:       sink,
		prefetcher: prefetcher,
		throttle:   throttle,
		now:        time.Now,
	}
}

// OnSnapshot processes one snapshot from the upstream link, in arrival order.
// The snapshot is always recorded as the latest received state; it is fanned
// out either immediately (state transition) or when the throttle window since
// the last broadcast has elapsed.
func (s *Scheduler) OnSnapshot(cur *player.State) {
	if cur == nil {
		return
	}

	if s.prefetcher != nil {
		s.prefetcher.OnSnapshot(cur)
	}

	s.mu.Lock()
	s.current = cur

	emit := player.ShouldBroadcastImmediately(s.lastBroadcast, cur)
	now := s.now()
	if !emit && now.Sub(s.lastBroadcastAt) >= s.throttle {
		emit = true
	}
	if emit {
		s.lastBroadcast = cur
		s.lastBroadcastAt = now
	}
	s.mu.Unlock()

	if emit {
		s.sink.Broadcast(cur)
	}
}

// Current returns the latest received snapshot, which is at least as fresh as
// the last broadcast one. Nil before the first snapshot of a connection.
func (s *Scheduler) Current() *player.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Reset tears the bookkeeping down for a fresh upstream connection. The next
// snapshot broadcasts unconditionally and the lyrics prefetch key is cleared.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.current = nil
	s.lastBroadcast = nil
	s.lastBroadcastAt = time.Time{}
	s.mu.Unlock()

	if s.prefetcher != nil {
		s.prefetcher.Reset()
	}
	log.Debug().Msg("Broadcast state reset")
}
