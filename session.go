package blogfront

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/blogfront/token"
)

// Session is the server-side half of one browser tab: its session storage
// (the bearer credential), its list State, and the bookkeeping that keeps a
// slow view from overwriting a newer one. It is keyed by the browser's
// cookie id plus the tab id the shell keeps in window.sessionStorage, so
// tabs of one browser never share state.
//
// Handlers for a session run one at a time (Lock/Unlock), mirroring the
// single event loop of a browser tab. State may only be touched while the
// lock is held.
type Session struct {
	ID string

	run sync.Mutex

	mu         sync.Mutex
	values     map[string]string
	state      *State
	generation uint64
	cancel     context.CancelFunc
	lastSeen   time.Time
	ended      bool
}

// tabSessionID joins a browser id and a tab id into a Session id.
func tabSessionID(browser, tab string) string {
	return browser + ":" + tab
}

func newSession(id string) *Session {
	return &Session{
		ID:       id,
		values:   make(map[string]string),
		state:    NewState(),
		lastSeen: time.Now(),
	}
}

// Get implements token.Storage.
func (s *Session) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set implements token.Storage.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Delete implements token.Storage.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Tokens returns a token reader over the session storage.
func (s *Session) Tokens() *token.Reader {
	return token.NewReader(s)
}

// Lock serializes handlers for this session.
func (s *Session) Lock() { s.run.Lock() }

// Unlock releases the handler lock.
func (s *Session) Unlock() { s.run.Unlock() }

// State returns the list state. Callers must hold the handler lock.
func (s *Session) State() *State {
	return s.state
}

// Navigate starts a new navigation: it bumps the generation and cancels the
// context of the navigation in flight, if any. Call it before Lock so a
// running handler is interrupted rather than waited for.
//
// Generations are persisted and never fall below the wall clock in
// milliseconds, so a session restored from the store or recreated after
// logout never reissues a generation its tab has already applied.
func (s *Session) Navigate(parent context.Context) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation = max(s.generation+1, uint64(now.UnixMilli()))
	s.cancel = cancel
	s.lastSeen = now
	return ctx, s.generation, cancel
}

// Generation returns the current navigation generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Live returns a func reporting whether gen is still the current
// generation.
func (s *Session) Live(gen uint64) func() bool {
	return func() bool {
		return s.Generation() == gen
	}
}

// End marks the session for removal when its handler releases it.
func (s *Session) End() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
}

// Ended reports whether End was called.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// record snapshots what survives a restart. Callers must hold the handler
// lock.
func (s *Session) record() SessionRecord {
	return SessionRecord{
		ID:         s.ID,
		Token:      s.Get(token.StorageKey),
		Page:       s.state.Page,
		Category:   s.state.Category,
		Generation: s.Generation(),
		UpdatedAt:  time.Now(),
	}
}

func sessionFromRecord(rec SessionRecord) *Session {
	s := newSession(rec.ID)
	if rec.Token != "" {
		s.values[token.StorageKey] = rec.Token
	}
	s.state.Category = rec.Category
	s.state.SetPage(rec.Page)
	s.generation = rec.Generation
	return s
}
