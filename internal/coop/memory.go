package coop

import (
	"context"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety. Useful for
// tests and local development without PostgreSQL.
type InMemory struct {
	mu    sync.RWMutex
	coops map[string]*Cooperative
	order []string
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{coops: make(map[string]*Cooperative)}
}

func (s *InMemory) Create(ctx context.Context, c *Cooperative) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.coops[c.ID] = &cp
	s.order = append(s.order, c.ID)
	return nil
}

func (s *InMemory) Get(ctx context.Context, id string) (Cooperative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.coops[id]
	if !ok {
		return Cooperative{}, ErrNotFound
	}
	return *c, nil
}

func (s *InMemory) List(ctx context.Context, status Status) ([]Cooperative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Cooperative
	for _, id := range s.order {
		c := s.coops[id]
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *InMemory) Transition(ctx context.Context, id string, from, to Status, reason string) (Cooperative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coops[id]
	if !ok {
		return Cooperative{}, ErrNotFound
	}
	if c.Status != from || !from.CanTransition(to) {
		return Cooperative{}, ErrInvalidTransition
	}
	c.Status = to
	c.StatusReason = reason
	c.UpdatedAt = time.Now().UTC()
	return *c, nil
}
