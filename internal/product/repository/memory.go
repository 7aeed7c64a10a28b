package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gogotex/admin-service/internal/models"
)

// MemoryRepo is an in-memory Repository used as a fake by the product and
// dashboard handler tests. The server always wires GORMRepo.
type MemoryRepo struct {
	mu    sync.RWMutex
	next  uint
	store map[uint]*models.Product
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[uint]*models.Product)}
}

func (m *MemoryRepo) Create(ctx context.Context, p *models.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	p.ID = m.next
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

// List returns copies ordered by id.
func (m *MemoryRepo) List(ctx context.Context) ([]*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Product, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
