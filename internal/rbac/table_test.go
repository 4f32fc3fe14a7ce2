package rbac

import "testing"

func TestHasPermissionUnknownRoleAndCapability(t *testing.T) {
	table := NewTable()

	if table.HasPermission(Role("ghost"), CapManageMembers) {
		t.Fatal("unknown role must hold nothing")
	}
	if table.HasPermission(RoleMember, Capability("teleport")) {
		t.Fatal("unknown capability must not be held")
	}
	if table.KnownRole(Role("ghost")) {
		t.Fatal("ghost should not be a known role")
	}
}

func TestEveryRoleHasNonEmptyGrantSet(t *testing.T) {
	table := NewTable()
	roles := []Role{
		RoleSuperAdmin, RoleAuditor, RoleCoopAdmin, RoleCoopSecretary,
		RoleCoopAccountant, RoleMember, RoleBuyer,
	}
	for _, role := range roles {
		if !table.KnownRole(role) {
			t.Fatalf("role %s missing from table", role)
		}
		if len(table.Capabilities(role)) == 0 {
			t.Fatalf("role %s has an empty capability set", role)
		}
	}
}

func TestConveniencePredicatesMatchTable(t *testing.T) {
	table := NewTable()
	roles := []Role{
		RoleSuperAdmin, RoleAuditor, RoleCoopAdmin, RoleCoopSecretary,
		RoleCoopAccountant, RoleMember, RoleBuyer, Role("ghost"),
	}
	for _, role := range roles {
		if table.CanApproveCooperatives(role) != table.HasPermission(role, CapApproveRegistrations) {
			t.Fatalf("CanApproveCooperatives inconsistent for %s", role)
		}
		if table.CanManageMembers(role) != table.HasPermission(role, CapManageMembers) {
			t.Fatalf("CanManageMembers inconsistent for %s", role)
		}
		if table.CanApproveRequests(role) != table.HasPermission(role, CapApproveRequests) {
			t.Fatalf("CanApproveRequests inconsistent for %s", role)
		}
		if table.CanPlaceOrders(role) != table.HasPermission(role, CapPlaceOrders) {
			t.Fatalf("CanPlaceOrders inconsistent for %s", role)
		}
	}
	if !table.CanApproveCooperatives(RoleSuperAdmin) {
		t.Fatal("super admin must approve registrations")
	}
	if table.CanApproveCooperatives(RoleCoopAdmin) {
		t.Fatal("coop admin must not approve registrations")
	}
	if !table.IsReadOnly(RoleAuditor) || table.IsReadOnly(RoleSuperAdmin) {
		t.Fatal("IsReadOnly must single out the auditor")
	}
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	table := NewTable()

	if !table.HasAnyPermission(RoleCoopAdmin, CapViewAuditLogs, CapManageMembers) {
		t.Fatal("expected at least one capability held")
	}
	if table.HasAnyPermission(RoleBuyer, CapManageMembers, CapViewAuditLogs) {
		t.Fatal("buyer holds neither capability")
	}
	if !table.HasAllPermissions(RoleCoopAdmin, CapManageMembers, CapManageProducts) {
		t.Fatal("coop admin holds both capabilities")
	}
	if table.HasAllPermissions(RoleCoopSecretary, CapManageMembers, CapManageProducts) {
		t.Fatal("secretary does not manage products")
	}
	if !table.HasAllPermissions(RoleMember) {
		t.Fatal("empty capability list is vacuously held")
	}
}

func TestNewTableFromGrantsDeduplicates(t *testing.T) {
	table := NewTableFromGrants(map[Role][]Capability{
		RoleMember: {CapPlaceOrders, CapPlaceOrders, CapRateProducts},
	})
	if got := len(table.Capabilities(RoleMember)); got != 2 {
		t.Fatalf("expected 2 deduplicated capabilities, got %d", got)
	}
}

func TestParseRoleNormalizes(t *testing.T) {
	if ParseRole("  Coop_Admin ") != RoleCoopAdmin {
		t.Fatal("role tag not normalized")
	}
	if ParseMemberRole("SECRETARY") != MemberRoleSecretary {
		t.Fatal("member role tag not normalized")
	}
}
