package blogfront

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionCache keeps live sessions in memory in front of a SessionStore.
// Sessions idle longer than the TTL are dropped from memory; their records
// stay in the store until pruned.
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	store    *SessionStore
	log      *zap.Logger
}

// NewSessionCache creates a SessionCache backed by the given store.
func NewSessionCache(s *SessionStore, ttl time.Duration, log *zap.Logger) *SessionCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionCache{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		store:    s,
		log:      log,
	}
}

// Get returns the session for id, restoring it from the store when it is
// not in memory. Unknown ids start an empty session under that id.
// It tries a read lock first; only takes a write lock on a miss.
func (c *SessionCache) Get(id string) *Session {
	c.mu.RLock()
	sess, ok := c.sessions[id]
	c.mu.RUnlock()
	if ok {
		sess.touch()
		return sess
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if sess, ok := c.sessions[id]; ok {
		sess.touch()
		return sess
	}
	rec, err := c.store.Load(id)
	switch {
	case err == nil:
		sess = sessionFromRecord(rec)
	case errors.Is(err, ErrNotFound):
		sess = newSession(id)
	default:
		c.log.Warn("session restore failed", zap.String("session", id), zap.Error(err))
		sess = newSession(id)
	}
	c.sessions[id] = sess
	return sess
}

// Save persists sess. Callers must hold the session's handler lock.
func (c *SessionCache) Save(sess *Session) error {
	return c.store.Save(sess.record())
}

// Forget drops a session from memory and storage.
func (c *SessionCache) Forget(id string) error {
	c.mu.Lock()
	delete(c.sessions, id)
	c.mu.Unlock()
	return c.store.Delete(id)
}

// Len returns the number of sessions held in memory.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// Evict drops sessions idle longer than the TTL and returns how many went.
func (c *SessionCache) Evict(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, sess := range c.sessions {
		if sess.idleSince(now) > c.ttl {
			delete(c.sessions, id)
			n++
		}
	}
	return n
}

// Sweep evicts idle sessions and prunes stored records older than
// retention.
func (c *SessionCache) Sweep(now time.Time, retention time.Duration) {
	evicted := c.Evict(now)
	pruned, err := c.store.Prune(now.Add(-retention))
	if err != nil {
		c.log.Warn("session prune failed", zap.Error(err))
		return
	}
	if evicted > 0 || pruned > 0 {
		c.log.Debug("session sweep", zap.Int("evicted", evicted), zap.Int64("pruned", pruned))
	}
}
