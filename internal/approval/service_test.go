package approval

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"coopra.org/internal/rbac"
)

func newTestService(t *testing.T) (*Service, *InMemory) {
	t.Helper()
	store := NewInMemory()
	return NewService(store, zerolog.Nop()), store
}

func createRequest(t *testing.T, svc *Service, required int) Request {
	t.Helper()
	r, err := svc.Create(context.Background(), CreateParams{
		CooperativeID:     "coop-1",
		Type:              TypeLoan,
		Title:             "Equipment loan",
		Amount:            250_000_00,
		InitiatorID:       "member-7",
		InitiatorName:     "Budi",
		RequiredApprovals: required,
	})
	require.NoError(t, err)
	return r
}

func reviewer(id string, role rbac.Role, memberRole rbac.MemberRole) rbac.Actor {
	return rbac.Actor{ID: id, Name: id, Role: role, CooperativeID: "coop-1", MemberRole: memberRole}
}

var (
	adminReviewer      = reviewer("adm-1", rbac.RoleCoopAdmin, rbac.MemberRoleAdmin)
	secretaryReviewer  = reviewer("sec-1", rbac.RoleCoopSecretary, rbac.MemberRoleSecretary)
	accountantReviewer = reviewer("acc-1", rbac.RoleCoopAccountant, rbac.MemberRoleAccountant)
	plainMember        = reviewer("mem-1", rbac.RoleMember, rbac.MemberRolePlain)
)

func TestCreateStartsPendingWithEmptyDecisions(t *testing.T) {
	svc, _ := newTestService(t)
	r := createRequest(t, svc, 2)

	require.Equal(t, StatusPending, r.Status)
	require.Empty(t, r.Decisions)
	require.Equal(t, 2, r.RequiredApprovals)
	require.Nil(t, r.DecidedAt)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{CooperativeID: "c", Title: "t", InitiatorID: "i", Type: TypeLoan, RequiredApprovals: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateParams{CooperativeID: "c", Title: "t", InitiatorID: "i", Type: Type("banana"), RequiredApprovals: 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateParams{CooperativeID: "c", Title: "  ", InitiatorID: "i", Type: TypeOther, RequiredApprovals: 1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestQuotaOfTwoApprovals(t *testing.T) {
	svc, _ := newTestService(t)
	r := createRequest(t, svc, 2)
	ctx := context.Background()

	r1, err := svc.Decide(ctx, r.ID, adminReviewer, true, "")
	require.NoError(t, err)
	require.Equal(t, StatusPending, r1.Status)
	require.Equal(t, 50, r1.Progress())

	r2, err := svc.Decide(ctx, r.ID, secretaryReviewer, true, "")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, r2.Status)
	require.Equal(t, 100, r2.Progress())
	require.NotNil(t, r2.DecidedAt)

	// Terminal: a third decision is refused and changes nothing.
	_, err = svc.Decide(ctx, r.ID, accountantReviewer, true, "")
	require.ErrorIs(t, err, ErrTerminal)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, got.Status)
	require.Len(t, got.Decisions, 2)
}

func TestSingleRejectionVetoes(t *testing.T) {
	svc, _ := newTestService(t)
	r := createRequest(t, svc, 3)
	ctx := context.Background()

	_, err := svc.Decide(ctx, r.ID, adminReviewer, true, "")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, r.ID, secretaryReviewer, true, "")
	require.NoError(t, err)

	rejected, err := svc.Decide(ctx, r.ID, accountantReviewer, false, "numbers do not add up")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, rejected.Status)

	_, err = svc.Decide(ctx, r.ID, reviewer("adm-2", rbac.RoleCoopAdmin, rbac.MemberRoleAdmin), true, "")
	require.ErrorIs(t, err, ErrTerminal)
}

func TestRejectionRequiresNotes(t *testing.T) {
	svc, _ := newTestService(t)
	r := createRequest(t, svc, 1)
	ctx := context.Background()

	_, err := svc.Decide(ctx, r.ID, adminReviewer, false, "   ")
	require.ErrorIs(t, err, ErrNotesRequired)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
	require.Empty(t, got.Decisions)
}

func TestMembersMayNotDecide(t *testing.T) {
	svc, _ := newTestService(t)
	r := createRequest(t, svc, 1)
	ctx := context.Background()

	_, err := svc.Decide(ctx, r.ID, plainMember, true, "")
	require.ErrorIs(t, err, ErrMemberCannotDecide)

	buyer := reviewer("buy-1", rbac.RoleBuyer, "")
	_, err = svc.Decide(ctx, r.ID, buyer, true, "")
	require.ErrorIs(t, err, ErrMemberCannotDecide)

	// The same request is then decidable by a coop admin.
	decided, err := svc.Decide(ctx, r.ID, adminReviewer, true, "")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, decided.Status)
}

func TestOneDecisionPerReviewer(t *testing.T) {
	svc, _ := newTestService(t)
	r := createRequest(t, svc, 2)
	ctx := context.Background()

	_, err := svc.Decide(ctx, r.ID, adminReviewer, true, "")
	require.NoError(t, err)

	_, err = svc.Decide(ctx, r.ID, adminReviewer, true, "")
	require.ErrorIs(t, err, ErrDuplicateDecision)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
	require.Equal(t, 1, got.Approvals())
}

func TestFailedPersistenceLeavesStateUnchanged(t *testing.T) {
	store := NewInMemory()
	svc := NewService(&failingStore{InMemory: store}, zerolog.Nop())
	r := createRequest(t, svc, 1)

	_, err := svc.Decide(context.Background(), r.ID, adminReviewer, true, "")
	require.Error(t, err)

	got, err := store.Get(context.Background(), r.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
	require.Empty(t, got.Decisions)
}

type failingStore struct {
	*InMemory
}

func (f *failingStore) AppendDecision(ctx context.Context, requestID string, d Decision) (Request, error) {
	return Request{}, errors.New("connection reset")
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := createRequest(t, svc, 1)
	b, err := svc.Create(ctx, CreateParams{
		CooperativeID:     "coop-2",
		Type:              TypeTransaction,
		Title:             "Bulk purchase",
		InitiatorID:       "member-9",
		RequiredApprovals: 1,
	})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, a.ID, adminReviewer, true, "")
	require.NoError(t, err)

	pending, err := svc.List(ctx, Filter{Status: StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, b.ID, pending[0].ID)

	coop1, err := svc.List(ctx, Filter{CooperativeID: "coop-1"})
	require.NoError(t, err)
	require.Len(t, coop1, 1)
	require.Equal(t, a.ID, coop1[0].ID)
}

func TestReduceIsAPureFold(t *testing.T) {
	approve := func(id string) Decision { return Decision{ReviewerID: id, Approved: true} }
	reject := func(id string) Decision { return Decision{ReviewerID: id, Approved: false} }

	cases := []struct {
		name      string
		required  int
		decisions []Decision
		want      Status
	}{
		{"empty", 2, nil, StatusPending},
		{"one of two", 2, []Decision{approve("a")}, StatusPending},
		{"quota met", 2, []Decision{approve("a"), approve("b")}, StatusApproved},
		{"over quota", 1, []Decision{approve("a"), approve("b")}, StatusApproved},
		{"lone rejection", 2, []Decision{reject("a")}, StatusRejected},
		{"rejection after approvals", 3, []Decision{approve("a"), approve("b"), reject("c")}, StatusRejected},
		{"approval reached before rejection", 2, []Decision{approve("a"), approve("b"), reject("c")}, StatusApproved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Reduce(tc.required, tc.decisions))
			// Replaying the same sequence lands on the same status.
			require.Equal(t, tc.want, Reduce(tc.required, tc.decisions))
		})
	}
}

func TestProgressClampsAtHundred(t *testing.T) {
	r := Request{RequiredApprovals: 2, Decisions: []Decision{
		{ReviewerID: "a", Approved: true},
		{ReviewerID: "b", Approved: true},
		{ReviewerID: "c", Approved: true},
	}}
	require.Equal(t, 100, r.Progress())

	require.Equal(t, 0, Request{}.Progress())
}
