package repo

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
)

// MemorySessions keeps sessions in process memory. Used with the CSV backend,
// where a restart logging everybody out is acceptable.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.Session
}

var _ store.SessionStore = (*MemorySessions)(nil)

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[uuid.UUID]models.Session)}
}

func (m *MemorySessions) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.ID]; exists {
		return store.ErrConflict
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemorySessions) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, exists := m.sessions[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (m *MemorySessions) RotateSession(_ context.Context, id uuid.UUID, oldHash, newHash string, expiresAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, exists := m.sessions[id]
	if !exists || s.Revoked || s.RefreshHash != oldHash {
		return store.ErrNotFound
	}
	s.RefreshHash = newHash
	s.ExpiresAt = expiresAt
	m.sessions[id] = s
	return nil
}

func (m *MemorySessions) RevokeSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, exists := m.sessions[id]; exists {
		s.Revoked = true
		m.sessions[id] = s
	}
	return nil
}
