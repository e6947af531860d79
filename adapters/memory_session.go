package adapters

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satriahrh/isyarat/domain/entities"
	"github.com/satriahrh/isyarat/domain/repositories"
)

// MemorySessionRepository is an in-memory implementation of SessionRepository.
// Sessions only live as long as the process; nothing is persisted.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entities.Session // id -> session mapping
}

var _ repositories.SessionRepository = (*MemorySessionRepository)(nil)

// NewMemorySessionRepository creates a new in-memory session repository
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*entities.Session),
	}
}

// Create implements SessionRepository interface
func (m *MemorySessionRepository) Create(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	if err := session.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Generate ID if not provided
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	if _, exists := m.sessions[session.ID]; exists {
		return errors.New("session with this ID already exists")
	}

	sessionCopy := *session
	m.sessions[session.ID] = &sessionCopy

	return nil
}

// GetByID implements SessionRepository interface
func (m *MemorySessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	if id == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, entities.ErrSessionNotFound
	}

	// Return a copy to prevent external modifications
	sessionCopy := *session
	return &sessionCopy, nil
}

// Update implements SessionRepository interface
func (m *MemorySessionRepository) Update(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	if session.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	if err := session.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.sessions[session.ID]
	if !exists {
		return entities.ErrSessionNotFound
	}

	sessionCopy := *session
	sessionCopy.CreatedAt = existing.CreatedAt // Preserve original creation time
	m.sessions[session.ID] = &sessionCopy

	return nil
}

// Delete implements SessionRepository interface
func (m *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("session ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return entities.ErrSessionNotFound
	}

	delete(m.sessions, id)
	return nil
}

// ListExpired implements SessionRepository interface
func (m *MemorySessionRepository) ListExpired(ctx context.Context, now time.Time) ([]*entities.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*entities.Session, 0)
	for _, session := range m.sessions {
		if session.Status == entities.SessionStatusActive && now.After(session.ExpiresAt) {
			sessionCopy := *session
			result = append(result, &sessionCopy)
		}
	}

	// Oldest first keeps cleanup logs stable
	sort.Slice(result, func(i, j int) bool {
		return result[i].ExpiresAt.Before(result[j].ExpiresAt)
	})

	return result, nil
}
