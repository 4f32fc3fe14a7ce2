package member

import (
	"context"
	"sync"
)

// InMemory implements Store for tests and local development.
type InMemory struct {
	mu      sync.RWMutex
	members map[string]*Member
	order   []string
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{members: make(map[string]*Member)}
}

func (s *InMemory) Create(ctx context.Context, m *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.members {
		if existing.CooperativeID == m.CooperativeID && existing.Email == m.Email {
			return ErrConflict
		}
	}
	cp := *m
	s.members[m.ID] = &cp
	s.order = append(s.order, m.ID)
	return nil
}

func (s *InMemory) Get(ctx context.Context, id string) (Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return *m, nil
}

func (s *InMemory) ListByCooperative(ctx context.Context, cooperativeID string) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Member
	for _, id := range s.order {
		m := s.members[id]
		if m.CooperativeID == cooperativeID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, m *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[m.ID]; !ok {
		return ErrNotFound
	}
	cp := *m
	s.members[m.ID] = &cp
	return nil
}
