package store

import (
	"sync"
	"time"
)

// sweepInterval is how often the background goroutine scans for expired
// challenges and sessions. Independent of the per-record TTLs themselves;
// expired-but-not-yet-swept records are still treated as absent by reads
// and by TakeChallenge (lazy eviction), so this interval only bounds
// memory growth, not correctness.
const sweepInterval = time.Minute

// MemoryStore is an in-memory Store implementation: three maps guarded by
// a single mutex, with a background goroutine periodically evicting
// expired challenges and sessions. Suitable for a single verifier
// process; state does not survive restart and is not shared across
// instances.
type MemoryStore struct {
	mu sync.Mutex

	users      map[string]User
	challenges map[string]Challenge
	sessions   map[string]Session

	challengeTTL time.Duration
	sessionTTL   time.Duration

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// NewMemoryStore creates an empty store with the given TTLs and starts its
// background sweep goroutine.
func NewMemoryStore(challengeTTL, sessionTTL time.Duration) *MemoryStore {
	s := &MemoryStore{
		users:        make(map[string]User),
		challenges:   make(map[string]Challenge),
		sessions:     make(map[string]Session),
		challengeTTL: challengeTTL,
		sessionTTL:   sessionTTL,
		stopSweep:    make(chan struct{}),
	}

	go s.sweepLoop()

	return s
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopSweep:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.challenges {
		if now.Sub(c.CreatedAt) > s.challengeTTL {
			delete(s.challenges, id)
		}
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) > s.sessionTTL {
			delete(s.sessions, id)
		}
	}
}

// UpsertUser inserts or overwrites a user record.
func (s *MemoryStore) UpsertUser(user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = user
	return nil
}

// GetUser returns a copy of the user record, or ErrUserNotFound.
func (s *MemoryStore) GetUser(userID string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// PutChallenge inserts a fresh challenge record, stamping CreatedAt if it
// is zero.
func (s *MemoryStore) PutChallenge(challenge Challenge) error {
	if challenge.CreatedAt.IsZero() {
		challenge.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challenge.AuthID] = challenge
	return nil
}

// TakeChallenge atomically removes and returns the challenge record. An
// expired-but-not-yet-swept entry is treated as absent.
func (s *MemoryStore) TakeChallenge(authID string) (Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[authID]
	if !ok {
		return Challenge{}, ErrChallengeNotFound
	}
	delete(s.challenges, authID)

	if time.Since(c.CreatedAt) > s.challengeTTL {
		return Challenge{}, ErrChallengeNotFound
	}

	return c, nil
}

// PutSession inserts a fresh session record, stamping CreatedAt if it is
// zero.
func (s *MemoryStore) PutSession(session Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.SessionID] = session
	return nil
}

// GetSession returns a copy of the session record, or ErrSessionNotFound
// if it is absent or expired.
func (s *MemoryStore) GetSession(sessionID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if time.Since(sess.CreatedAt) > s.sessionTTL {
		return Session{}, ErrSessionNotFound
	}

	return sess, nil
}

// Close stops the background sweep goroutine. Safe to call once.
func (s *MemoryStore) Close() error {
	s.sweepOnce.Do(func() {
		close(s.stopSweep)
	})
	return nil
}

// Stats reports current record counts, useful for a server admin/health
// endpoint.
func (s *MemoryStore) Stats() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]int{
		"users":      len(s.users),
		"challenges": len(s.challenges),
		"sessions":   len(s.sessions),
	}
}
