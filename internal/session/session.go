// Package session tracks per-user assistant conversation threads. Each
// thread carries a short transcript of recent exchanges that expires with
// the thread, so followup small talk keeps its context for at most TTL.
package session

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TTL is how long a thread stays active after it starts.
const TTL = time.Hour

// maxHistoryLines bounds the transcript kept per thread (user and
// assistant lines counted separately).
const maxHistoryLines = 10

type entry struct {
	threadID  string
	startedAt time.Time
	history   []string
}

// Manager hands out per-user thread ids, starting a fresh thread once the
// previous one expires. The transcript is discarded with its thread.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewManager creates a Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// thread returns the active entry for userID, rotating in a fresh one when
// none exists or the previous one expired. Caller holds mu.
func (m *Manager) thread(userID string) *entry {
	e, ok := m.sessions[userID]
	if !ok || m.now().Sub(e.startedAt) >= TTL {
		e = &entry{
			threadID:  ulid.Make().String(),
			startedAt: m.now(),
		}
		m.sessions[userID] = e
	}
	return e
}

// ThreadID returns the active thread id for userID, creating one if none is
// active.
func (m *Manager) ThreadID(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thread(userID).threadID
}

// Remember records one user/assistant exchange on userID's active thread,
// dropping the oldest lines once the transcript is full.
func (m *Manager) Remember(userID, message, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.thread(userID)
	e.history = append(e.history, "User: "+message, "Assistant: "+reply)
	if len(e.history) > maxHistoryLines {
		e.history = e.history[len(e.history)-maxHistoryLines:]
	}
}

// History returns a copy of the transcript for userID's active thread,
// oldest first, or nil when no thread is active.
func (m *Manager) History(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[userID]
	if !ok || m.now().Sub(e.startedAt) >= TTL {
		return nil
	}
	return append([]string(nil), e.history...)
}
