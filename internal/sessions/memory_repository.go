package sessions

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps attempts in process memory. It only works for a
// single instance and is used when Redis is not configured.
type MemoryRepository struct {
	mu       sync.Mutex
	attempts map[string]Attempt
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{attempts: make(map[string]Attempt)}
}

func (m *MemoryRepository) Create(ctx context.Context, a *Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for id, old := range m.attempts {
		if now.After(old.ExpiresAt) {
			delete(m.attempts, id)
		}
	}
	m.attempts[a.ID] = *a
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok || time.Now().UTC().After(a.ExpiresAt) {
		return nil, nil
	}
	return &a, nil
}

func (m *MemoryRepository) Take(ctx context.Context, id string) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, nil
	}
	delete(m.attempts, id)
	if time.Now().UTC().After(a.ExpiresAt) {
		return nil, nil
	}
	return &a, nil
}
