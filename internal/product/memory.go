package product

import (
	"context"
	"sync"
)

// InMemory implements Store for tests and local development.
type InMemory struct {
	mu       sync.RWMutex
	products map[string]*Product
	order    []string
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{products: make(map[string]*Product)}
}

func (s *InMemory) Create(ctx context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

func (s *InMemory) Get(ctx context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return *p, nil
}

func (s *InMemory) ListByCooperative(ctx context.Context, cooperativeID string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Product
	for _, id := range s.order {
		p := s.products[id]
		if p.CooperativeID == cooperativeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}
