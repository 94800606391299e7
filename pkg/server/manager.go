package server

import (
	"log/slog"
	"sync"

	"github.com/vortex-oo/clouddrop/internal/errors"
)

// SessionManager tracks live sessions by ID.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	metrics *metrics
	logger  *slog.Logger
}

// newSessionManager creates an empty SessionManager.
func newSessionManager(m *metrics, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		metrics:  m,
		logger:   logger.With("component", "session_manager"),
	}
}

// Add registers a session.
func (m *SessionManager) Add(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.metrics.sessionOpened()
	m.logger.Debug("session added", "session_id", s.ID, "active", count)
}

// Get returns the live session with id, or an E060 error.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || s.IsClosed() {
		return nil, errors.New("E060")
	}
	return s, nil
}

// Remove unregisters a session. Removing an unknown session is a no-op.
func (m *SessionManager) Remove(s *Session) {
	m.mu.Lock()
	_, ok := m.sessions[s.ID]
	delete(m.sessions, s.ID)
	m.mu.Unlock()

	if ok {
		m.metrics.sessionClosed()
	}
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown closes every session.
func (m *SessionManager) Shutdown() {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.Close()
	}
	m.logger.Info("sessions closed", "count", len(sessions))
}
