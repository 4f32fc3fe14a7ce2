package coop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coopra.org/internal/ids"
)

// Store describes persistence operations for cooperatives.
type Store interface {
	Create(ctx context.Context, c *Cooperative) error
	Get(ctx context.Context, id string) (Cooperative, error)
	List(ctx context.Context, status Status) ([]Cooperative, error)
	// Transition atomically moves a cooperative from one status to another.
	// It returns ErrNotFound for an unknown id and ErrInvalidTransition when
	// the current status differs from the expected one.
	Transition(ctx context.Context, id string, from, to Status, reason string) (Cooperative, error)
}

// Service owns cooperative registration and the status state machine.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// RegisterParams carries the fields needed to register a cooperative.
type RegisterParams struct {
	Name           string
	RegistrationNo string
	Region         string
	AdminID        string
}

// Register creates a cooperative in PENDING status.
func (s *Service) Register(ctx context.Context, p RegisterParams) (Cooperative, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Cooperative{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	p.AdminID = strings.TrimSpace(p.AdminID)
	if p.AdminID == "" {
		return Cooperative{}, fmt.Errorf("%w: admin_id is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	c := Cooperative{
		ID:             ids.New(),
		Name:           p.Name,
		RegistrationNo: strings.TrimSpace(p.RegistrationNo),
		Region:         strings.TrimSpace(p.Region),
		AdminID:        p.AdminID,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, &c); err != nil {
		return Cooperative{}, err
	}
	return c, nil
}

// Get loads a cooperative by id.
func (s *Service) Get(ctx context.Context, id string) (Cooperative, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cooperative{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// List returns cooperatives, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status) ([]Cooperative, error) {
	return s.store.List(ctx, status)
}

// Approve moves a PENDING cooperative to APPROVED.
func (s *Service) Approve(ctx context.Context, id string) (Cooperative, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cooperative{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.Transition(ctx, id, StatusPending, StatusApproved, "")
}

// Reject moves a PENDING cooperative to REJECTED. The reason is mandatory and
// is stored with the record so the tenant admin can see it.
func (s *Service) Reject(ctx context.Context, id, reason string) (Cooperative, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cooperative{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Cooperative{}, fmt.Errorf("%w: rejection reason is required", ErrInvalidInput)
	}
	return s.store.Transition(ctx, id, StatusPending, StatusRejected, reason)
}

// Suspend moves an APPROVED cooperative to SUSPENDED.
func (s *Service) Suspend(ctx context.Context, id string) (Cooperative, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cooperative{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.Transition(ctx, id, StatusApproved, StatusSuspended, "")
}

// RequireApproved returns ErrNotApproved unless the cooperative is APPROVED.
// Write paths for tenant-scoped resources call this before mutating anything.
func (s *Service) RequireApproved(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Status != StatusApproved {
		return ErrNotApproved
	}
	return nil
}
