package rbac

import "strings"

// Role is a system-wide actor category determining baseline capabilities.
// It is assigned at authentication time and never changes within a session.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleAuditor        Role = "auditor"
	RoleCoopAdmin      Role = "coop_admin"
	RoleCoopSecretary  Role = "coop_secretary"
	RoleCoopAccountant Role = "coop_accountant"
	RoleMember         Role = "member"
	RoleBuyer          Role = "buyer"
)

// MemberRole is the finer-grained intra-cooperative role layered on top of the
// system role, used only for tenant-local gating.
type MemberRole string

const (
	MemberRoleAdmin      MemberRole = "admin"
	MemberRoleSecretary  MemberRole = "secretary"
	MemberRoleAccountant MemberRole = "accountant"
	MemberRolePlain      MemberRole = "member"
)

// Capability names a single permit.
type Capability string

const (
	CapApproveRegistrations Capability = "approve_registrations"
	CapManageUsers          Capability = "manage_users"
	CapManageMembers        Capability = "manage_members"
	CapManageFinances       Capability = "manage_finances"
	CapManageProducts       Capability = "manage_products"
	CapApproveRequests      Capability = "approve_requests"
	CapPlaceOrders          Capability = "place_orders"
	CapRateProducts         Capability = "rate_products"
	CapViewAuditLogs        Capability = "view_audit_logs"
	CapManageAnnouncements  Capability = "manage_announcements"
	CapManagePayments       Capability = "manage_payments"
	CapViewReports          Capability = "view_reports"
)

var roleDescriptions = map[Role]string{
	RoleSuperAdmin:     "System Administrator",
	RoleAuditor:        "Regulatory Auditor",
	RoleCoopAdmin:      "Cooperative Administrator",
	RoleCoopSecretary:  "Cooperative Secretary",
	RoleCoopAccountant: "Cooperative Accountant",
	RoleMember:         "Cooperative Member",
	RoleBuyer:          "External Buyer",
}

// defaultGrants is the process-wide role to capability matrix. It is copied
// into an immutable Table at startup and never mutated afterwards.
var defaultGrants = map[Role][]Capability{
	RoleSuperAdmin: {
		CapApproveRegistrations,
		CapManageUsers,
		CapViewAuditLogs,
		CapViewReports,
		CapManageAnnouncements,
	},
	RoleAuditor: {
		CapViewAuditLogs,
		CapViewReports,
	},
	RoleCoopAdmin: {
		CapManageMembers,
		CapManageFinances,
		CapManageProducts,
		CapApproveRequests,
		CapManageAnnouncements,
		CapManagePayments,
		CapViewReports,
	},
	RoleCoopSecretary: {
		CapManageMembers,
		CapApproveRequests,
		CapManageAnnouncements,
	},
	RoleCoopAccountant: {
		CapManageFinances,
		CapApproveRequests,
		CapManagePayments,
		CapViewReports,
	},
	RoleMember: {
		CapPlaceOrders,
		CapRateProducts,
	},
	RoleBuyer: {
		CapPlaceOrders,
		CapRateProducts,
	},
}

// Table answers role/capability questions against a fixed grant matrix.
// Construct one at process start and pass it by reference; lookups never fail
// and an unknown role simply holds nothing.
type Table struct {
	grants map[Role]map[Capability]struct{}
}

// NewTable builds the default permission table.
func NewTable() *Table {
	return NewTableFromGrants(defaultGrants)
}

// NewTableFromGrants builds a table from an explicit matrix. Grants are
// deduplicated; the input map is not retained.
func NewTableFromGrants(grants map[Role][]Capability) *Table {
	t := &Table{grants: make(map[Role]map[Capability]struct{}, len(grants))}
	for role, caps := range grants {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		t.grants[role] = set
	}
	return t
}

// ParseRole normalizes a raw role tag. Unknown tags are returned as-is so that
// lookups against them deny rather than error.
func ParseRole(raw string) Role {
	return Role(strings.TrimSpace(strings.ToLower(raw)))
}

// ParseMemberRole normalizes a raw intra-cooperative role tag.
func ParseMemberRole(raw string) MemberRole {
	return MemberRole(strings.TrimSpace(strings.ToLower(raw)))
}

// KnownRole reports whether the role exists in the table.
func (t *Table) KnownRole(role Role) bool {
	_, ok := t.grants[role]
	return ok
}

// HasPermission reports whether the role holds the capability. Unknown roles
// and capabilities yield false, never an error.
func (t *Table) HasPermission(role Role, cap Capability) bool {
	set, ok := t.grants[role]
	if !ok {
		return false
	}
	_, ok = set[cap]
	return ok
}

// HasAnyPermission reports whether at least one capability is held.
func (t *Table) HasAnyPermission(role Role, caps ...Capability) bool {
	for _, c := range caps {
		if t.HasPermission(role, c) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every capability is held.
func (t *Table) HasAllPermissions(role Role, caps ...Capability) bool {
	for _, c := range caps {
		if !t.HasPermission(role, c) {
			return false
		}
	}
	return true
}

// Capabilities returns the role's capability set as a sorted-free slice copy.
func (t *Table) Capabilities(role Role) []Capability {
	set, ok := t.grants[role]
	if !ok {
		return nil
	}
	out := make([]Capability, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// DescribeRole returns the human-readable description for a role, or the raw
// tag when the role is unknown.
func DescribeRole(role Role) string {
	if d, ok := roleDescriptions[role]; ok {
		return d
	}
	return string(role)
}

// Named shortcuts hard-coded to specific checks. Functionally redundant with
// HasPermission but kept as self-documenting call sites.

func (t *Table) CanApproveCooperatives(role Role) bool {
	return t.HasPermission(role, CapApproveRegistrations)
}

func (t *Table) CanManageUsers(role Role) bool {
	return t.HasPermission(role, CapManageUsers)
}

func (t *Table) CanManageMembers(role Role) bool {
	return t.HasPermission(role, CapManageMembers)
}

func (t *Table) CanManageProducts(role Role) bool {
	return t.HasPermission(role, CapManageProducts)
}

func (t *Table) CanApproveRequests(role Role) bool {
	return t.HasPermission(role, CapApproveRequests)
}

func (t *Table) CanPlaceOrders(role Role) bool {
	return t.HasPermission(role, CapPlaceOrders)
}

func (t *Table) CanRateProducts(role Role) bool {
	return t.HasPermission(role, CapRateProducts)
}

func (t *Table) CanViewAuditLogs(role Role) bool {
	return t.HasPermission(role, CapViewAuditLogs)
}

func (t *Table) IsReadOnly(role Role) bool {
	return role == RoleAuditor
}
