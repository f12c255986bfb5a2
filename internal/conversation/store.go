package conversation

import (
	"log"
	"strings"
	"sync"
	"time"
)

// Store keeps a bounded sliding window of turns per session, in memory.
// Sessions idle longer than the timeout are evicted opportunistically on the
// next store operation; no background sweeper is needed because per-session
// memory is already bounded by the history size.
//
// Writes to one session are serialized by a per-session mutex; different
// sessions never block each other beyond the brief map lookup.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*session
	historySize int
	timeout     time.Duration
	logger      *log.Logger
	onEvict     func(n int)
}

type session struct {
	mu           sync.Mutex
	turns        []Turn
	lastActivity time.Time
}

// NewStore builds a store with the given window size and idle timeout.
func NewStore(historySize int, timeout time.Duration) *Store {
	return &Store{
		sessions:    make(map[string]*session),
		historySize: historySize,
		timeout:     timeout,
		logger:      log.New(log.Writer(), "[CONV] ", log.LstdFlags),
	}
}

// OnEvict registers a callback invoked with the number of sessions removed by
// timeout eviction. Used to feed metrics.
func (s *Store) OnEvict(fn func(n int)) { s.onEvict = fn }

// Append inserts a turn, evicting the oldest once the window exceeds the
// history size, and refreshes the session's last activity.
//
// The session lock is acquired before the map lock is released; otherwise a
// concurrent evictExpired could read the still-stale lastActivity, drop the
// session, and the turn would land on an orphaned entry.
func (s *Store) Append(sessionID string, turn Turn) {
	s.evictExpired()

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.mu.Lock()
	sess.lastActivity = time.Now()
	s.mu.Unlock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, turn)
	for len(sess.turns) > s.historySize {
		sess.turns = sess.turns[1:]
	}
}

// History returns a copy of the session's turns, oldest first. Unknown
// sessions yield an empty slice, never nil ambiguity the caller must handle.
func (s *Store) History(sessionID string) []Turn {
	s.evictExpired()

	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return []Turn{}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]Turn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// Clear removes all state for a session.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	s.logger.Printf("cleared session %s", sessionID)
}

// ContextText renders the most recent turns as resolver context: user lines
// verbatim, assistant lines only when they carry a generated query.
func (s *Store) ContextText(sessionID string, limit int) string {
	history := s.History(sessionID)
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	var lines []string
	for _, turn := range history {
		switch {
		case turn.Role == RoleUser:
			lines = append(lines, "User: "+turn.Text)
		case turn.Role == RoleAssistant && turn.Query != "":
			lines = append(lines, "Assistant generated query: "+turn.Query)
		}
	}
	return strings.Join(lines, "\n")
}

// evictExpired drops sessions idle past the timeout. It runs in front of
// every store operation, so eviction is observable without a scheduler.
func (s *Store) evictExpired() {
	cutoff := time.Now().Add(-s.timeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		stale := sess.lastActivity.Before(cutoff)
		sess.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Printf("evicted %d idle sessions", removed)
		if s.onEvict != nil {
			s.onEvict(removed)
		}
	}
}
