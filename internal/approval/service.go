package approval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"coopra.org/internal/ids"
	"coopra.org/internal/rbac"
)

// Filter controls request listing.
type Filter struct {
	CooperativeID string
	Status        Status
}

// Store describes persistence for approval requests.
type Store interface {
	Create(ctx context.Context, r *Request) error
	Get(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, filter Filter) ([]Request, error)
	// AppendDecision durably records a decision and re-derives the request
	// status from the full ordered decision sequence in the same atomic step.
	// It returns ErrTerminal when the request is already decided and
	// ErrDuplicateDecision when the reviewer has decided before. The returned
	// request reflects confirmed state only.
	AppendDecision(ctx context.Context, requestID string, d Decision) (Request, error)
}

// Service owns the approval request lifecycle.
type Service struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewService constructs a Service over the given store.
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "approval").Logger(),
		now:   time.Now,
	}
}

// CreateParams carries the fields needed to open an approval request.
type CreateParams struct {
	CooperativeID     string
	Type              Type
	Title             string
	Description       string
	Amount            int64
	InitiatorID       string
	InitiatorName     string
	RequiredApprovals int
}

// Create opens a new request in pending status with an empty decision
// sequence.
func (s *Service) Create(ctx context.Context, p CreateParams) (Request, error) {
	p.CooperativeID = strings.TrimSpace(p.CooperativeID)
	if p.CooperativeID == "" {
		return Request{}, fmt.Errorf("%w: cooperative_id is required", ErrInvalidInput)
	}
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return Request{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	p.InitiatorID = strings.TrimSpace(p.InitiatorID)
	if p.InitiatorID == "" {
		return Request{}, fmt.Errorf("%w: initiator_id is required", ErrInvalidInput)
	}
	if !KnownType(p.Type) {
		return Request{}, fmt.Errorf("%w: unknown request type %q", ErrInvalidInput, p.Type)
	}
	if p.RequiredApprovals < 1 {
		return Request{}, fmt.Errorf("%w: required_approvals must be at least 1", ErrInvalidInput)
	}
	if p.Amount < 0 {
		return Request{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	r := Request{
		ID:                ids.New(),
		CooperativeID:     p.CooperativeID,
		Type:              p.Type,
		Title:             p.Title,
		Description:       strings.TrimSpace(p.Description),
		Amount:            p.Amount,
		InitiatorID:       p.InitiatorID,
		InitiatorName:     strings.TrimSpace(p.InitiatorName),
		RequiredApprovals: p.RequiredApprovals,
		Status:            StatusPending,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.store.Create(ctx, &r); err != nil {
		return Request{}, err
	}
	s.log.Info().
		Str("request_id", r.ID).
		Str("cooperative_id", r.CooperativeID).
		Str("type", string(r.Type)).
		Int("required_approvals", r.RequiredApprovals).
		Msg("approval request created")
	return r, nil
}

// Get loads a request by id.
func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// List returns requests matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Request, error) {
	return s.store.List(ctx, filter)
}

// Decide records a reviewer verdict on a pending request.
//
// All preconditions are checked before anything is persisted, and the
// in-memory view only changes through the store's confirmed result: a failed
// persistence call leaves the request exactly as it was. Plain members may
// not decide requests, including their own; a rejection must carry notes; a
// reviewer gets exactly one decision per request.
func (s *Service) Decide(ctx context.Context, requestID string, reviewer rbac.Actor, approved bool, notes string) (Request, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return Request{}, fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}
	if reviewer.ID == "" {
		return Request{}, fmt.Errorf("%w: reviewer is required", ErrInvalidInput)
	}
	if reviewer.MemberRole == rbac.MemberRolePlain || reviewer.Role == rbac.RoleMember || reviewer.Role == rbac.RoleBuyer {
		return Request{}, ErrMemberCannotDecide
	}
	notes = strings.TrimSpace(notes)
	if !approved && notes == "" {
		return Request{}, ErrNotesRequired
	}

	d := Decision{
		ID:           ids.New(),
		RequestID:    requestID,
		ReviewerID:   reviewer.ID,
		ReviewerName: reviewer.Name,
		ReviewerRole: string(reviewer.Role),
		Approved:     approved,
		Notes:        notes,
		CreatedAt:    s.now().UTC(),
	}
	updated, err := s.store.AppendDecision(ctx, requestID, d)
	if err != nil {
		return Request{}, err
	}
	s.log.Info().
		Str("request_id", updated.ID).
		Str("reviewer_id", reviewer.ID).
		Bool("approved", approved).
		Str("status", string(updated.Status)).
		Msg("decision recorded")
	return updated, nil
}
