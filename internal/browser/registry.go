package browser

import (
	"context"
	"sync"
	"time"

	"github.com/denisAlshanov/vidgrab/internal/services/backend"
	"github.com/denisAlshanov/vidgrab/internal/services/storage"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// Session pairs a controller with the alerts waiting for its user.
type Session struct {
	ID         string
	Controller *Controller
	// Alerts is nil for front ends that deliver alerts immediately.
	Alerts *AlertQueue

	lastSeen time.Time
}

// Factory builds the session for a new id.
type Factory func(id string) *Session

// QueuedSessions builds sessions whose alerts wait in an AlertQueue until
// the front end collects them.
func QueuedSessions(client backend.Client, saver storage.Saver, journal Journal, opts Options) Factory {
	return func(id string) *Session {
		alerts := NewAlertQueue()
		o := opts
		o.SessionID = id
		return &Session{
			Controller: NewController(client, saver, alerts, journal, o),
			Alerts:     alerts,
		}
	}
}

// Registry keeps one session per id and forgets sessions idle for longer
// than its TTL.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	factory  Factory
	now      func() time.Time
}

func NewRegistry(ttl time.Duration, factory Factory) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the session for id, creating it on first use.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		s = r.factory(id)
		s.ID = id
		r.sessions[id] = s
	}
	s.lastSeen = r.now()
	return s
}

// Lookup returns an existing session without creating one.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops idle sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every TTL until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	if r.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(r.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				utils.LogDebug(ctx, "Expired idle sessions", utils.Fields{"removed": n, "remaining": r.Len()})
			}
		}
	}
}
