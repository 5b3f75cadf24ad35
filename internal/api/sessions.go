package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tahcohcat/healplay/internal/game"
	"github.com/tahcohcat/healplay/internal/logger"
	"github.com/tahcohcat/healplay/internal/models"
)

type playSession struct {
	parentID string
	session  *game.Session

	mu     sync.Mutex
	result *models.GameResult // set once the completed session is saved
}

func (ps *playSession) recorded() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.result != nil
}

// sessionStore keeps in-progress game sessions in memory.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*playSession
	ttl      time.Duration
	now      func() time.Time
	logger   *logger.Log
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*playSession),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.New(),
	}
}

func (s *sessionStore) put(id string, ps *playSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = ps
}

func (s *sessionStore) get(id string) (*playSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, ok := s.sessions[id]
	return ps, ok
}

func (s *sessionStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// evict drops sessions idle for longer than the ttl and returns how many
// were removed.
func (s *sessionStore) evict() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, ps := range s.sessions {
		if ps.session.LastActivity().Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// janitor evicts idle sessions until ctx is cancelled.
func (s *sessionStore) janitor(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evict(); n > 0 {
				s.logger.Debug(fmt.Sprintf("Evicted %d idle game sessions", n))
			}
		}
	}
}
