package member

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"coopra.org/internal/coop"
	"coopra.org/internal/rbac"
)

func approvedCoop(t *testing.T) (*coop.Service, string) {
	t.Helper()
	svc := coop.NewService(coop.NewInMemory())
	c, err := svc.Register(context.Background(), coop.RegisterParams{Name: "Tani Sejahtera", AdminID: "adm-1"})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), c.ID)
	require.NoError(t, err)
	return svc, c.ID
}

func TestAddMember(t *testing.T) {
	gate, coopID := approvedCoop(t)
	svc := NewService(NewInMemory(), gate)

	m, err := svc.Add(context.Background(), AddParams{
		CooperativeID: coopID,
		Name:          "Budi Santoso",
		Email:         "Budi@Example.com",
	})
	require.NoError(t, err)
	require.Equal(t, StatusActive, m.Status)
	require.Equal(t, "budi@example.com", m.Email)
	require.Equal(t, rbac.MemberRolePlain, m.Role)
}

func TestAddMemberRefusedWhilePending(t *testing.T) {
	gate := coop.NewService(coop.NewInMemory())
	c, err := gate.Register(context.Background(), coop.RegisterParams{Name: "Pending Coop", AdminID: "adm-1"})
	require.NoError(t, err)

	svc := NewService(NewInMemory(), gate)
	_, err = svc.Add(context.Background(), AddParams{
		CooperativeID: c.ID,
		Name:          "Budi",
		Email:         "budi@example.com",
	})
	require.ErrorIs(t, err, coop.ErrNotApproved)

	members, err := svc.List(context.Background(), c.ID)
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestAddMemberValidation(t *testing.T) {
	gate, coopID := approvedCoop(t)
	svc := NewService(NewInMemory(), gate)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddParams{CooperativeID: coopID, Name: "", Email: "x@y.z"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Add(ctx, AddParams{CooperativeID: coopID, Name: "Budi", Email: "not-an-email"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDuplicateEmailConflicts(t *testing.T) {
	gate, coopID := approvedCoop(t)
	svc := NewService(NewInMemory(), gate)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddParams{CooperativeID: coopID, Name: "Budi", Email: "budi@example.com"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, AddParams{CooperativeID: coopID, Name: "Budi Again", Email: "budi@example.com"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestDeactivate(t *testing.T) {
	gate, coopID := approvedCoop(t)
	svc := NewService(NewInMemory(), gate)
	ctx := context.Background()

	m, err := svc.Add(ctx, AddParams{CooperativeID: coopID, Name: "Budi", Email: "budi@example.com"})
	require.NoError(t, err)

	got, err := svc.Deactivate(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInactive, got.Status)

	_, err = svc.Deactivate(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
