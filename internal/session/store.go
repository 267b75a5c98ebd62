// Package session keeps one browse.Controller per browser, keyed by a
// random id carried in a cookie. Nothing is persisted.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_clips/internal/browse"
	"github.com/anatolykoptev/go_clips/internal/engine"
)

// CookieName carries the session id.
const CookieName = "clips_sid"

type entry struct {
	ctrl     *browse.Controller
	lastSeen time.Time
}

// Store maps session ids to controllers. Idle sessions expire after ttl;
// when max is reached the least recently used session is dropped.
type Store struct {
	newController func() *browse.Controller
	ttl           time.Duration
	max           int
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewStore creates a store. newController must return a fresh, unstarted controller.
func NewStore(newController func() *browse.Controller, ttl time.Duration, max int) *Store {
	return &Store{
		newController: newController,
		ttl:           ttl,
		max:           max,
		now:           time.Now,
		sessions:      make(map[string]*entry),
	}
}

// Get returns the controller for id and marks the session as used.
func (s *Store) Get(id string) (*browse.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.ctrl, true
}

// GetOrCreate returns the session for id, or starts a new one when id is
// unknown or malformed. created reports whether a new id was issued.
// setup, if not nil, runs on a new controller.
func (s *Store) GetOrCreate(id string, setup func(*browse.Controller)) (sid string, ctrl *browse.Controller, created bool) {
	if _, err := uuid.Parse(id); err == nil {
		if ctrl, ok := s.Get(id); ok {
			return id, ctrl, false
		}
	}
	sid, ctrl = s.Create(setup)
	return sid, ctrl, true
}

// Create registers a new session. The controller is not started: nothing is
// fetched until the session is used again with the issued id.
func (s *Store) Create(setup func(*browse.Controller)) (string, *browse.Controller) {
	id := uuid.NewString()
	ctrl := s.newController()
	if setup != nil {
		setup(ctrl)
	}

	s.mu.Lock()
	var evicted *browse.Controller
	if s.max > 0 && len(s.sessions) >= s.max {
		evicted = s.evictOldestLocked()
	}
	s.sessions[id] = &entry{ctrl: ctrl, lastSeen: s.now()}
	s.mu.Unlock()

	if evicted != nil {
		evicted.Close()
	}
	engine.IncrSessionsCreated()
	return id, ctrl
}

func (s *Store) evictOldestLocked() *browse.Controller {
	var oldestID string
	var oldest time.Time
	for id, e := range s.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID == "" {
		return nil
	}
	ctrl := s.sessions[oldestID].ctrl
	delete(s.sessions, oldestID)
	slog.Debug("session: evicted least recently used", slog.String("id", oldestID))
	return ctrl
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions idle for longer than ttl and returns how many.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*browse.Controller
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.ctrl)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Close()
		engine.IncrSessionsExpired()
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("session: expired idle sessions", slog.Int("count", n), slog.Int("live", s.Len()))
			}
		}
	}
}

// Close shuts down every session.
func (s *Store) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()
	for _, e := range all {
		e.ctrl.Close()
	}
}
