package approval

import (
	"context"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety. Useful for
// tests and local development without PostgreSQL.
type InMemory struct {
	mu       sync.RWMutex
	requests map[string]*Request
	order    []string
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{requests: make(map[string]*Request)}
}

func (s *InMemory) Create(ctx context.Context, r *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	cp.Decisions = append([]Decision(nil), r.Decisions...)
	s.requests[r.ID] = &cp
	s.order = append(s.order, r.ID)
	return nil
}

func (s *InMemory) Get(ctx context.Context, id string) (Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return cloneRequest(r), nil
}

func (s *InMemory) List(ctx context.Context, filter Filter) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Request
	for _, id := range s.order {
		r := s.requests[id]
		if filter.CooperativeID != "" && r.CooperativeID != filter.CooperativeID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, cloneRequest(r))
	}
	return out, nil
}

func (s *InMemory) AppendDecision(ctx context.Context, requestID string, d Decision) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok {
		return Request{}, ErrNotFound
	}
	if r.Status.Terminal() {
		return Request{}, ErrTerminal
	}
	for _, existing := range r.Decisions {
		if existing.ReviewerID == d.ReviewerID {
			return Request{}, ErrDuplicateDecision
		}
	}
	r.Decisions = append(r.Decisions, d)
	r.Status = Reduce(r.RequiredApprovals, r.Decisions)
	if r.Status.Terminal() {
		at := time.Now().UTC()
		r.DecidedAt = &at
	}
	return cloneRequest(r), nil
}

func cloneRequest(r *Request) Request {
	cp := *r
	cp.Decisions = append([]Decision(nil), r.Decisions...)
	if r.DecidedAt != nil {
		at := *r.DecidedAt
		cp.DecidedAt = &at
	}
	return cp
}
