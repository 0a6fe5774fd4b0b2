// Package session tracks per-conversation state between otherwise
// stateless requests: at most one pending multi-turn action plus an HR
// authentication flag. Sessions live in memory and are identified by
// UUIDs handed to the transport layer.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PendingAction is the tagged union of in-flight multi-turn actions.
// Exactly one variant (or none) exists per session at any time.
type PendingAction interface {
	pendingAction()
}

// LocationUpdate waits for the employee's remote/on-site choice before
// committing a town change. Both fields commit together once the choice
// arrives.
type LocationUpdate struct {
	NewTown string
}

func (LocationUpdate) pendingAction() {}

// EmailDraft waits for an explicit send or cancel.
type EmailDraft struct {
	Subject       string
	Body          string
	RecipientRole string
}

func (EmailDraft) pendingAction() {}

// Session is one active user interaction. All access goes through the
// owning Manager's lock.
type Session struct {
	ID              string
	EmployeeID      string
	HRAuthenticated bool
	CreatedAt       time.Time

	pending PendingAction
}

// Manager owns all active sessions. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session and returns it. The ID is a fresh UUID.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	m.sessions[s.ID] = s
	return s
}

// Get returns the session with the given ID, or nil if it does not exist.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// GetOrCreate returns the session with the given ID, creating one when the
// ID is unknown or empty.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	m.sessions[s.ID] = s
	return s
}

// SetPending stores a pending action on the session, replacing any
// outstanding one. Replacement is last-write-wins: the prior action is
// lost with no cancellation notice.
func (m *Manager) SetPending(sessionID string, action PendingAction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	s.pending = action
	return true
}

// Pending returns the session's outstanding action, or nil when idle.
func (m *Manager) Pending(sessionID string) PendingAction {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	return s.pending
}

// ClearPending resets the session to idle and returns the action that was
// outstanding, if any.
func (m *Manager) ClearPending(sessionID string) PendingAction {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	prev := s.pending
	s.pending = nil
	return prev
}

// SetEmployee binds the resolved employee ID to the session.
func (m *Manager) SetEmployee(sessionID, employeeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.EmployeeID = employeeID
	}
}

// SetHRAuthenticated marks the session as an authenticated HR user.
func (m *Manager) SetHRAuthenticated(sessionID string, authenticated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.HRAuthenticated = authenticated
	}
}

// HRAuthenticated reports whether the session passed HR login.
func (m *Manager) HRAuthenticated(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	return ok && s.HRAuthenticated
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Delete removes a session entirely.
func (m *Manager) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}
