package redis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vocab-quiz-service/internal/app"

	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Session state itself stays in a local map; sessions do not survive a restart.
//   - Redis holds a liveness marker per session with the idle TTL, refreshed on
//     every lookup. A lookup whose marker has expired (or was deleted by an
//     operator) evicts the local session.
//   - Local sessions nobody looks up again are swept once they exceed the TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time

	mu        sync.Mutex
	sessions  map[string]*storedSession
	lastSweep time.Time
}

type storedSession struct {
	session  *app.Session
	lastSeen time.Time
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]*storedSession),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string, create func() *app.Session) *app.Session {
	ctx := context.Background()
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.sweepLocked(now)
	stored, ok := s.liveLocked(ctx, sessionID, now)
	if !ok {
		stored = &storedSession{session: create()}
		s.sessions[sessionID] = stored
	}
	stored.lastSeen = now
	s.touch(ctx, sessionID)
	return stored.session
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	ctx := context.Background()
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.sweepLocked(now)
	stored, ok := s.liveLocked(ctx, sessionID, now)
	if !ok {
		return nil, false
	}
	stored.lastSeen = now
	s.touch(ctx, sessionID)
	return stored.session, true
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// liveLocked returns the local session if its marker still exists and it has
// not idled past the TTL; otherwise the session is evicted.
func (s *SessionStore) liveLocked(ctx context.Context, sessionID string, now time.Time) (*storedSession, bool) {
	stored, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	if s.expired(stored, now) {
		delete(s.sessions, sessionID)
		return nil, false
	}
	n, err := s.client.Exists(ctx, s.key(sessionID)).Result()
	if err != nil {
		// redis unavailable: the local idle TTL still bounds the session
		slog.WarnContext(ctx, "session marker lookup failed", "session", sessionID, "error", err)
		return stored, true
	}
	if n == 0 {
		delete(s.sessions, sessionID)
		return nil, false
	}
	return stored, true
}

// sweepLocked drops idle local sessions at most once per TTL.
func (s *SessionStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < s.ttl {
		return
	}
	s.lastSweep = now
	for id, stored := range s.sessions {
		if s.expired(stored, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *SessionStore) expired(stored *storedSession, now time.Time) bool {
	return s.ttl > 0 && now.Sub(stored.lastSeen) >= s.ttl
}

// best-effort liveness marker
func (s *SessionStore) touch(ctx context.Context, sessionID string) {
	_ = s.client.Set(ctx, s.key(sessionID), "1", s.ttl).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "vocab:session:" + sessionID
}
