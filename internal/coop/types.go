package coop

import (
	"errors"
	"time"
)

// Status gates whether a cooperative's members may perform write actions.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusSuspended Status = "SUSPENDED"
)

// CanTransition reports whether moving from s to the target status is legal.
// PENDING may become APPROVED or REJECTED; APPROVED may become SUSPENDED.
// REJECTED and SUSPENDED are terminal.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusSuspended
	default:
		return false
	}
}

// Cooperative is a tenant organization on the platform.
type Cooperative struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	RegistrationNo string    `json:"registration_no,omitempty"`
	Region         string    `json:"region,omitempty"`
	AdminID        string    `json:"admin_id"`
	Status         Status    `json:"status"`
	StatusReason   string    `json:"status_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var (
	ErrNotFound          = errors.New("coop: not found")
	ErrInvalidInput      = errors.New("coop: invalid input")
	ErrInvalidTransition = errors.New("coop: invalid status transition")
	ErrNotApproved       = errors.New("coop: cooperative is not approved")
)

// GateView describes how gated tenant content should be presented: approved
// tenants get interactive content with no banner, everything else gets a
// status-specific warning banner above inert content. Content is never
// unmounted so tenant state stays visible.
type GateView struct {
	Interactive bool   `json:"interactive"`
	Banner      string `json:"banner,omitempty"`
}

// Gate returns the presentation decision for a tenant status.
func Gate(status Status) GateView {
	switch status {
	case StatusApproved:
		return GateView{Interactive: true}
	case StatusPending:
		return GateView{Banner: "This cooperative is awaiting approval. Actions are disabled until a platform administrator approves the registration."}
	case StatusRejected:
		return GateView{Banner: "This cooperative's registration was rejected. Contact the platform administrator for details."}
	case StatusSuspended:
		return GateView{Banner: "This cooperative is suspended. Write actions are disabled until the suspension is lifted."}
	default:
		return GateView{Banner: "This cooperative's status is unknown. Actions are disabled."}
	}
}
