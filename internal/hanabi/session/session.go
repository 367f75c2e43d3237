// Package session multiplexes the single-threaded agent across many users.
// Each (room, sender) pair owns an isolated Session with its own context
// window, memory, and agent instance, so sessions cannot see each other's
// state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bdobrica/Hanabi/internal/hanabi/agent"
	"github.com/bdobrica/Hanabi/internal/hanabi/convo"
	"github.com/bdobrica/Hanabi/internal/hanabi/llm"
)

// Factory builds the agent and context window for a new session. It is
// called once per (room, sender) key, under the manager lock, and receives
// the key so it can seed the session from persisted state.
type Factory func(room, sender string) (*agent.Agent, *convo.Context)

// IDFor derives the session identifier for a (room, sender) pair. The ID is
// stable across process restarts, which is what lets a new process find the
// transcript and summary a previous one persisted for the same user.
func IDFor(room, sender string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(room+"\x00"+sender)).String()
}

// Session is one user's conversation state. Turns within a session are
// serialized by an internal mutex; sessions proceed independently of each
// other.
type Session struct {
	// ID identifies the session in logs and in the persistent store. It is
	// derived from (room, sender), see IDFor.
	ID string
	// Room and Sender identify the conversation surface this session serves.
	Room   string
	Sender string

	mu         sync.Mutex
	agent      *agent.Agent
	window     *convo.Context
	createdAt  time.Time
	lastActive time.Time
}

// Process runs one user turn through the session's agent and returns the
// reply. Concurrent calls on the same session queue up behind each other.
func (s *Session) Process(ctx context.Context, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()
	msg := llm.Message{Role: llm.RoleUser, Content: text}
	return s.agent.Process(ctx, msg, s.window)
}

// Summary returns the session's current memory summary.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent.Memory().Summary()
}

// Reset clears the session's context window and long-term memory.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window.Clear()
	s.agent.Memory().Reset()
}

// LastActive reports when the session last processed a turn.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Manager hands out sessions keyed by (room, sender), creating them on
// first use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  Factory
}

// NewManager creates an empty Manager that builds sessions with factory.
func NewManager(factory Factory) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

func key(room, sender string) string {
	return room + ":" + sender
}

// Get returns the session for (room, sender), creating it if necessary.
func (m *Manager) Get(room, sender string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(room, sender)
	if s, ok := m.sessions[k]; ok {
		return s
	}

	ag, window := m.factory(room, sender)
	now := time.Now()
	s := &Session{
		ID:         IDFor(room, sender),
		Room:       room,
		Sender:     sender,
		agent:      ag,
		window:     window,
		createdAt:  now,
		lastActive: now,
	}
	m.sessions[k] = s
	return s
}

// Peek returns the session for (room, sender) without creating one, or nil.
func (m *Manager) Peek(room, sender string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[key(room, sender)]
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Remove drops the session for (room, sender), if any.
func (m *Manager) Remove(room, sender string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key(room, sender))
}
