package memory

import (
	"sync"
	"time"

	"vocab-quiz-service/internal/app"
)

// SessionStore keeps sessions in process memory and evicts the ones that
// have not been looked up for idleTTL. A non-positive idleTTL disables eviction.
type SessionStore struct {
	idleTTL time.Duration
	clock   func() time.Time

	mu        sync.Mutex
	sessions  map[string]*storedSession
	lastSweep time.Time
}

type storedSession struct {
	session  *app.Session
	lastSeen time.Time
}

func NewSessionStore(idleTTL time.Duration) *SessionStore {
	return &SessionStore{
		idleTTL:  idleTTL,
		clock:    time.Now,
		sessions: make(map[string]*storedSession),
	}
}

func (s *SessionStore) GetOrCreate(sessionID string, create func() *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.sweepLocked(now)
	if stored, ok := s.liveLocked(sessionID, now); ok {
		stored.lastSeen = now
		return stored.session
	}
	session := create()
	s.sessions[sessionID] = &storedSession{session: session, lastSeen: now}
	return session
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.sweepLocked(now)
	stored, ok := s.liveLocked(sessionID, now)
	if !ok {
		return nil, false
	}
	stored.lastSeen = now
	return stored.session, true
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *SessionStore) liveLocked(sessionID string, now time.Time) (*storedSession, bool) {
	stored, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	if s.expired(stored, now) {
		delete(s.sessions, sessionID)
		return nil, false
	}
	return stored, true
}

// sweepLocked drops idle sessions at most once per idleTTL.
func (s *SessionStore) sweepLocked(now time.Time) {
	if s.idleTTL <= 0 || now.Sub(s.lastSweep) < s.idleTTL {
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
	return s.idleTTL > 0 && now.Sub(stored.lastSeen) >= s.idleTTL
}
