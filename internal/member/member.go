package member

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coopra.org/internal/ids"
	"coopra.org/internal/rbac"
)

// Member is one person registered under a cooperative.
type Member struct {
	ID            string          `json:"id"`
	CooperativeID string          `json:"cooperative_id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          rbac.MemberRole `json:"role"`
	Status        string          `json:"status"`
	JoinedAt      time.Time       `json:"joined_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	ErrNotFound     = errors.New("member: not found")
	ErrInvalidInput = errors.New("member: invalid input")
	ErrConflict     = errors.New("member: already exists")
)

// Store describes persistence for members.
type Store interface {
	Create(ctx context.Context, m *Member) error
	Get(ctx context.Context, id string) (Member, error)
	ListByCooperative(ctx context.Context, cooperativeID string) ([]Member, error)
	Update(ctx context.Context, m *Member) error
}

// StatusChecker gates writes on the owning cooperative's status.
type StatusChecker interface {
	RequireApproved(ctx context.Context, cooperativeID string) error
}

// Service owns the member registry of a cooperative. All writes require the
// cooperative to be approved; reads are always allowed so pending tenants can
// still see their own data.
type Service struct {
	store Store
	gate  StatusChecker
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store Store, gate StatusChecker) *Service {
	return &Service{store: store, gate: gate, now: time.Now}
}

// AddParams carries the fields needed to register a member.
type AddParams struct {
	CooperativeID string
	Name          string
	Email         string
	Role          rbac.MemberRole
}

// Add registers a new active member.
func (s *Service) Add(ctx context.Context, p AddParams) (Member, error) {
	p.CooperativeID = strings.TrimSpace(p.CooperativeID)
	if p.CooperativeID == "" {
		return Member{}, fmt.Errorf("%w: cooperative_id is required", ErrInvalidInput)
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Member{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		return Member{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if p.Role == "" {
		p.Role = rbac.MemberRolePlain
	}
	if err := s.gate.RequireApproved(ctx, p.CooperativeID); err != nil {
		return Member{}, err
	}
	now := s.now().UTC()
	m := Member{
		ID:            ids.New(),
		CooperativeID: p.CooperativeID,
		Name:          p.Name,
		Email:         p.Email,
		Role:          p.Role,
		Status:        StatusActive,
		JoinedAt:      now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, &m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// Get loads a member by id.
func (s *Service) Get(ctx context.Context, id string) (Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Member{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// List returns a cooperative's members.
func (s *Service) List(ctx context.Context, cooperativeID string) ([]Member, error) {
	cooperativeID = strings.TrimSpace(cooperativeID)
	if cooperativeID == "" {
		return nil, fmt.Errorf("%w: cooperative_id is required", ErrInvalidInput)
	}
	return s.store.ListByCooperative(ctx, cooperativeID)
}

// Deactivate marks a member inactive. The record is retained.
func (s *Service) Deactivate(ctx context.Context, id string) (Member, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return Member{}, err
	}
	if err := s.gate.RequireApproved(ctx, m.CooperativeID); err != nil {
		return Member{}, err
	}
	m.Status = StatusInactive
	m.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, &m); err != nil {
		return Member{}, err
	}
	return m, nil
}
