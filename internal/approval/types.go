package approval

import (
	"errors"
	"time"
)

// Status of an approval request. approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no further decisions may be accepted.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Type categorizes what the request signs off on.
type Type string

const (
	TypeTransaction    Type = "transaction"
	TypeMemberApproval Type = "member_approval"
	TypeLoan           Type = "loan"
	TypePolicyChange   Type = "policy_change"
	TypeOther          Type = "other"
)

// KnownType reports whether t is one of the defined request types.
func KnownType(t Type) bool {
	switch t {
	case TypeTransaction, TypeMemberApproval, TypeLoan, TypePolicyChange, TypeOther:
		return true
	}
	return false
}

// Decision is one reviewer's recorded verdict. Decisions are append-only:
// once recorded they are never mutated or removed.
type Decision struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	ReviewerID   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	ReviewerRole string    `json:"reviewer_role,omitempty"`
	Approved     bool      `json:"approved"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Request is an auditable record of a proposed action awaiting quota-based
// multi-reviewer sign-off. Requests are retained forever; they are never
// deleted.
type Request struct {
	ID                string     `json:"id"`
	CooperativeID     string     `json:"cooperative_id"`
	Type              Type       `json:"type"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Amount            int64      `json:"amount,omitempty"` // minor units
	InitiatorID       string     `json:"initiator_id"`
	InitiatorName     string     `json:"initiator_name,omitempty"`
	RequiredApprovals int        `json:"required_approvals"`
	Decisions         []Decision `json:"decisions"`
	Status            Status     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
}

var (
	ErrNotFound          = errors.New("approval: not found")
	ErrInvalidInput      = errors.New("approval: invalid input")
	ErrTerminal          = errors.New("approval: request already decided")
	ErrDuplicateDecision = errors.New("approval: reviewer already decided")
	ErrNotesRequired     = errors.New("approval: rejection requires notes")
	ErrMemberCannotDecide = errors.New("approval: members may not decide requests")
)

// Reduce folds an ordered decision sequence into the request status. It is
// the single transition function: stores re-derive status from it after each
// append, and a replay of the same sequence always lands on the same status.
// A rejection vetoes the request outright; approvals count toward the quota.
func Reduce(requiredApprovals int, decisions []Decision) Status {
	approvals := 0
	for _, d := range decisions {
		if !d.Approved {
			return StatusRejected
		}
		approvals++
		if approvals >= requiredApprovals {
			return StatusApproved
		}
	}
	return StatusPending
}

// Approvals counts affirmative decisions.
func (r Request) Approvals() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Approved {
			n++
		}
	}
	return n
}

// Progress is the display-only completion percentage, clamped at 100. It is
// derived from the decision sequence and never persisted.
func (r Request) Progress() int {
	if r.RequiredApprovals <= 0 {
		return 0
	}
	pct := r.Approvals() * 100 / r.RequiredApprovals
	if pct > 100 {
		pct = 100
	}
	return pct
}

// HasDecisionBy reports whether the reviewer already decided on the request.
func (r Request) HasDecisionBy(reviewerID string) bool {
	for _, d := range r.Decisions {
		if d.ReviewerID == reviewerID {
			return true
		}
	}
	return false
}
