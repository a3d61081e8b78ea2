package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/explorer/internal/table"
)

var (
	// ErrNoTable is returned for selection events on a session with nothing loaded.
	ErrNoTable = errors.New("no table loaded")

	// ErrSessionNotFound is returned for an unknown or expired session ID.
	ErrSessionNotFound = errors.New("session not found")
)

// State is where a session is in its lifecycle.
type State int

const (
	StateEmpty State = iota
	StateLoaded
)

func (s State) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "empty"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Session is one user's exploration: at most one table and its selection.
// All fields are guarded by mu; the Controller holds it for the whole of
// each interaction, so a session handles one interaction at a time.
type Session struct {
	ID      string
	Created time.Time

	mu     sync.Mutex
	state  State
	table  *table.Table
	class  Classification
	sel    Selection
	loaded time.Time
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Table returns the loaded table, or nil when Empty.
func (s *Session) Table() *table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// set moves to Loaded with a fresh selection. Caller holds mu.
func (s *Session) set(t *table.Table, now time.Time) {
	s.state = StateLoaded
	s.table = t
	s.class = ClassifyColumns(t)
	s.sel = Reconcile(s.class, Selection{})
	s.loaded = now
}

// clear drops the table and selection. Caller holds mu.
func (s *Session) clear() {
	s.state = StateEmpty
	s.table = nil
	s.class = Classification{}
	s.sel = Selection{}
	s.loaded = time.Time{}
}

type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// SessionStore keeps sessions in memory. Sessions idle longer than ttl
// expire; when max sessions exist the least recently used one is evicted
// to make room.
type SessionStore struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewSessionStore creates a store. A zero ttl or max disables that limit.
func NewSessionStore(ttl time.Duration, max int) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		max:      max,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Create starts a new Empty session.
func (st *SessionStore) Create() *Session {
	now := st.now()
	s := &Session{ID: uuid.NewString(), Created: now}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.max > 0 && len(st.sessions) >= st.max {
		st.evictOldestLocked()
	}
	st.sessions[s.ID] = &sessionEntry{session: s, lastSeen: now}
	return s
}

// Get returns a live session and marks it used.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := st.now()
	if st.expired(e, now) {
		delete(st.sessions, id)
		return nil, ErrSessionNotFound
	}
	e.lastSeen = now
	return e.session, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown
// or expired. created reports which.
func (st *SessionStore) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, err := st.Get(id); err == nil {
			return s, false
		}
	}
	return st.Create(), true
}

// Delete removes a session.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of stored sessions, expired ones included until swept.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, e := range st.sessions {
		if st.expired(e, now) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps expired sessions every interval until ctx is done.
func (st *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	slog.Info("session janitor started", "interval", interval, "ttl", st.ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				slog.Debug("expired sessions removed", "count", n, "remaining", st.Len())
			}
		}
	}
}

func (st *SessionStore) expired(e *sessionEntry, now time.Time) bool {
	return st.ttl > 0 && now.Sub(e.lastSeen) > st.ttl
}

func (st *SessionStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range st.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(st.sessions, oldestID)
		slog.Debug("session evicted", "session_id", oldestID)
	}
}
