package auth

import (
	"time"

	"github.com/google/uuid"

	"quill/pkg/models"
)

// CreateSession stores a session and returns its id.
func (m *Manager) CreateSession(session *models.Session) string {
	sessionID := uuid.NewString()

	m.sessionsMutex.Lock()
	m.sessions[sessionID] = session
	m.sessionsMutex.Unlock()

	return sessionID
}

// ValidateSession reports whether a session exists and has not expired.
// Expired sessions are removed on the way out.
func (m *Manager) ValidateSession(sessionID string) bool {
	m.sessionsMutex.RLock()
	session, exists := m.sessions[sessionID]
	m.sessionsMutex.RUnlock()

	if !exists {
		return false
	}
	if time.Now().After(session.ExpiresAt) {
		m.DeleteSession(sessionID)
		return false
	}
	return true
}

// DeleteSession removes a session.
func (m *Manager) DeleteSession(sessionID string) {
	m.sessionsMutex.Lock()
	delete(m.sessions, sessionID)
	if m.currentSessionID == sessionID {
		m.currentSessionID = ""
	}
	m.sessionsMutex.Unlock()
}

// CurrentSession returns the active session, if one exists and is valid.
func (m *Manager) CurrentSession() (*models.Session, bool) {
	m.sessionsMutex.RLock()
	session, exists := m.sessions[m.currentSessionID]
	m.sessionsMutex.RUnlock()

	if !exists || time.Now().After(session.ExpiresAt) {
		return nil, false
	}
	return session, true
}

// CurrentUserID returns the signed-in user id, or "" when unauthenticated.
func (m *Manager) CurrentUserID() string {
	session, ok := m.CurrentSession()
	if !ok {
		return ""
	}
	return session.UserID
}

// CurrentToken returns the active access token, or "" when unauthenticated.
func (m *Manager) CurrentToken() string {
	session, ok := m.CurrentSession()
	if !ok {
		return ""
	}
	return session.Token
}

// Logout drops the active session.
func (m *Manager) Logout() {
	m.sessionsMutex.RLock()
	sessionID := m.currentSessionID
	m.sessionsMutex.RUnlock()

	if sessionID != "" {
		m.DeleteSession(sessionID)
	}
}

// CleanupExpiredSessions removes all sessions past their expiry.
func (m *Manager) CleanupExpiredSessions() {
	now := time.Now()

	m.sessionsMutex.Lock()
	defer m.sessionsMutex.Unlock()

	for id, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, id)
			if m.currentSessionID == id {
				m.currentSessionID = ""
			}
		}
	}
}
