package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/santorini/game/board"
	"github.com/wricardo/santorini/game/clock"
	"github.com/wricardo/santorini/game/engine"
	"github.com/wricardo/santorini/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxIDAttempts bounds the retries when a generated ID collides
const maxIDAttempts = 16

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	now      func() time.Time
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return NewManagerWithClock(time.Now)
}

// NewManagerWithClock creates a session manager whose turn clocks and access
// times read from now
func NewManagerWithClock(now func() time.Time) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		now:      now,
	}
}

// Create creates a new table with the given ID and configuration. An empty
// ID gets a generated one.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if strings.TrimSpace(id) != id {
		return nil, ErrInvalidSessionID
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	ids := make([]board.PlayerID, 0, len(eng.Players()))
	for _, p := range eng.Players() {
		ids = append(ids, p.ID)
	}
	clk := clock.New(time.Duration(config.TimeBankSeconds)*time.Second, ids, m.now)
	if !eng.IsGameOver() {
		clk.Start(eng.CurrentPlayer().ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		for attempt := 0; attempt < maxIDAttempts; attempt++ {
			id = m.generateSessionID()
			if !m.sessionExists(id) {
				break
			}
		}
	}
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		Clock:          clk,
		CreatedAt:      m.now(),
		LastAccessedAt: m.now(),
	}
	m.sessions[strings.ToLower(id)] = session

	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}
	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = m.now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0
	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
