package rbac

import "fmt"

// Actor is the authenticated identity in scope for a request.
type Actor struct {
	ID            string
	Name          string
	Role          Role
	CooperativeID string
	MemberRole    MemberRole
}

// DecisionKind classifies the outcome of a role gate.
type DecisionKind int

const (
	// DecisionAllowed grants access to the protected resource.
	DecisionAllowed DecisionKind = iota
	// DecisionUnauthenticated means no actor is present.
	DecisionUnauthenticated
	// DecisionDenied means the actor's role is not in the allow-list.
	DecisionDenied
)

// Decision is the result of evaluating a role gate for an actor.
type Decision struct {
	Kind DecisionKind
	// Reason carries a human-readable description of the actor's role for
	// denied outcomes, suitable for an access-denied message.
	Reason string
}

// GuardRoles evaluates an allow-list of roles against the current actor.
// A nil actor yields an unauthenticated decision; a role outside the list
// yields a denial that names the actor's role.
func GuardRoles(actor *Actor, allowed ...Role) Decision {
	if actor == nil || actor.ID == "" {
		return Decision{Kind: DecisionUnauthenticated}
	}
	for _, role := range allowed {
		if actor.Role == role {
			return Decision{Kind: DecisionAllowed}
		}
	}
	return Decision{
		Kind:   DecisionDenied,
		Reason: fmt.Sprintf("access denied for role %s", DescribeRole(actor.Role)),
	}
}

// GuardCapability reports whether the actor may use the capability. Denial is
// silent: absent actors and missing capabilities simply yield false.
func (t *Table) GuardCapability(actor *Actor, cap Capability) bool {
	if actor == nil || actor.ID == "" {
		return false
	}
	return t.HasPermission(actor.Role, cap)
}

// CanDecideApprovals reports whether the actor may record decisions on
// approval requests. Plain members may initiate requests but never decide
// them, including their own.
func (t *Table) CanDecideApprovals(actor *Actor) bool {
	if !t.GuardCapability(actor, CapApproveRequests) {
		return false
	}
	return actor.MemberRole != MemberRolePlain
}

// NavEntry is one visible navigation section for an actor.
type NavEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Navigation computes the visible navigation entries for an actor in fixed
// priority order. The list is recomputed per call; roles do not change within
// a session so no caching is needed.
func (t *Table) Navigation(actor *Actor) []NavEntry {
	if actor == nil || actor.ID == "" {
		return nil
	}
	role := actor.Role
	entries := []NavEntry{{Key: "dashboard", Label: "Dashboard"}}
	if t.CanApproveCooperatives(role) {
		entries = append(entries, NavEntry{Key: "approvals", Label: "Registration Approvals"})
	}
	if t.CanManageMembers(role) {
		entries = append(entries, NavEntry{Key: "cooperative", Label: "Cooperative Management"})
	}
	if (t.CanPlaceOrders(role) || t.CanManageProducts(role)) &&
		role != RoleSuperAdmin && role != RoleAuditor {
		entries = append(entries, NavEntry{Key: "marketplace", Label: "Marketplace"})
	}
	if t.HasPermission(role, CapManageAnnouncements) {
		entries = append(entries, NavEntry{Key: "announcements", Label: "Announcements"})
	}
	if t.HasPermission(role, CapManagePayments) {
		entries = append(entries, NavEntry{Key: "payments", Label: "Payments"})
	}
	return entries
}
