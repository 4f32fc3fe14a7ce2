package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"coopra.org/internal/coop"
)

func coopInStatus(t *testing.T, approve bool) (*coop.Service, string) {
	t.Helper()
	svc := coop.NewService(coop.NewInMemory())
	c, err := svc.Register(context.Background(), coop.RegisterParams{Name: "Sumber Rejeki", AdminID: "adm-1"})
	require.NoError(t, err)
	if approve {
		_, err = svc.Approve(context.Background(), c.ID)
		require.NoError(t, err)
	}
	return svc, c.ID
}

func TestCreateProduct(t *testing.T) {
	gate, coopID := coopInStatus(t, true)
	svc := NewService(NewInMemory(), gate)

	p, err := svc.Create(context.Background(), CreateParams{
		CooperativeID: coopID,
		Name:          "Organic rice 5kg",
		Price:         75_000_00,
		Stock:         40,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, int64(75_000_00), p.Price)
}

func TestCreateRefusedForPendingCooperative(t *testing.T) {
	gate, coopID := coopInStatus(t, false)
	svc := NewService(NewInMemory(), gate)

	_, err := svc.Create(context.Background(), CreateParams{
		CooperativeID: coopID,
		Name:          "Organic rice 5kg",
		Price:         100,
	})
	require.ErrorIs(t, err, coop.ErrNotApproved)
}

func TestCreateValidation(t *testing.T) {
	gate, coopID := coopInStatus(t, true)
	svc := NewService(NewInMemory(), gate)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{CooperativeID: coopID, Name: " ", Price: 100})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateParams{CooperativeID: coopID, Name: "Rice", Price: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateParams{CooperativeID: coopID, Name: "Rice", Price: 100, Stock: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateProduct(t *testing.T) {
	gate, coopID := coopInStatus(t, true)
	svc := NewService(NewInMemory(), gate)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateParams{CooperativeID: coopID, Name: "Rice", Price: 100, Stock: 5})
	require.NoError(t, err)

	price := int64(120)
	stock := 0
	got, err := svc.Update(ctx, p.ID, UpdateParams{Price: &price, Stock: &stock})
	require.NoError(t, err)
	require.Equal(t, int64(120), got.Price)
	require.Equal(t, 0, got.Stock)

	bad := int64(-5)
	_, err = svc.Update(ctx, p.ID, UpdateParams{Price: &bad})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, "missing", UpdateParams{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListByCooperative(t *testing.T) {
	gate, coopID := coopInStatus(t, true)
	svc := NewService(NewInMemory(), gate)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{CooperativeID: coopID, Name: "Rice", Price: 100})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateParams{CooperativeID: coopID, Name: "Coffee", Price: 200})
	require.NoError(t, err)

	items, err := svc.List(ctx, coopID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	other, err := svc.List(ctx, "some-other-coop")
	require.NoError(t, err)
	require.Empty(t, other)
}
