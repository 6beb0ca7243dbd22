package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewMemoryStore())
	require.NoError(t, err)
	return svc
}

func lampInput() AddItemInput {
	return AddItemInput{
		ProductID:   "lamp-01",
		Name:        "Abajur Cristal",
		UnitPrice:   decimal.NewFromFloat(89.90),
		MaxQuantity: 3,
	}
}

func TestAddItemCreatesLineWithQuantityOne(t *testing.T) {
	svc := newTestService(t)
	cartID := uuid.New()

	state, err := svc.AddItem(context.Background(), cartID, lampInput())
	require.NoError(t, err)

	require.Len(t, state.Lines, 1)
	assert.Equal(t, 1, state.Lines[0].Quantity)
	assert.Equal(t, 1, state.TotalItems)
	assert.True(t, state.TotalPrice.Equal(decimal.NewFromFloat(89.90)))
}

func TestAddItemStopsSilentlyAtMaxQuantity(t *testing.T) {
	svc := newTestService(t)
	cartID := uuid.New()
	input := lampInput()

	var state *State
	var err error
	for i := 0; i < input.MaxQuantity+5; i++ {
		state, err = svc.AddItem(context.Background(), cartID, input)
		require.NoError(t, err)
	}

	require.Len(t, state.Lines, 1)
	assert.Equal(t, input.MaxQuantity, state.Lines[0].Quantity)
	assert.Equal(t, input.MaxQuantity, state.TotalItems)
}

func TestTotalsFollowEveryMutation(t *testing.T) {
	svc := newTestService(t)
	cartID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, lampInput())
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, cartID, AddItemInput{
		ProductID:   "vase-02",
		Name:        "Vaso Decorativo",
		UnitPrice:   decimal.NewFromFloat(45.50),
		MaxQuantity: 10,
	})
	require.NoError(t, err)

	state, err := svc.UpdateQuantity(ctx, cartID, "vase-02", 4)
	require.NoError(t, err)

	assert.Equal(t, 5, state.TotalItems)
	want := decimal.NewFromFloat(89.90).Add(decimal.NewFromFloat(45.50).Mul(decimal.NewFromInt(4)))
	assert.True(t, state.TotalPrice.Equal(want), "got %s want %s", state.TotalPrice, want)
}

func TestUpdateQuantityClampsToMax(t *testing.T) {
	svc := newTestService(t)
	cartID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, lampInput())
	require.NoError(t, err)

	state, err := svc.UpdateQuantity(ctx, cartID, "lamp-01", 99)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Lines[0].Quantity)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	svc := newTestService(t)
	cartID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, lampInput())
	require.NoError(t, err)

	state, err := svc.UpdateQuantity(ctx, cartID, "lamp-01", 0)
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
	assert.Equal(t, 0, state.TotalItems)
	assert.True(t, state.TotalPrice.IsZero())
}

func TestUpdateQuantityUnknownProductIsNoOp(t *testing.T) {
	svc := newTestService(t)
	cartID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, lampInput())
	require.NoError(t, err)

	state, err := svc.UpdateQuantity(ctx, cartID, "ghost", 2)
	require.NoError(t, err)
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 1, state.Lines[0].Quantity)
}

func TestRemoveItemAbsentProductIsNoOp(t *testing.T) {
	svc := newTestService(t)
	cartID := uuid.New()

	state, err := svc.RemoveItem(context.Background(), cartID, "ghost")
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
}

func TestClearDropsEveryLine(t *testing.T) {
	svc := newTestService(t)
	cartID := uuid.New()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, lampInput())
	require.NoError(t, err)

	state, err := svc.Clear(ctx, cartID)
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
	assert.Equal(t, 0, state.TotalItems)
	assert.True(t, state.TotalPrice.IsZero())
}

func TestGetUnknownCartReturnsEmptyState(t *testing.T) {
	svc := newTestService(t)

	state, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
	assert.True(t, state.TotalPrice.IsZero())
}

func TestValidationErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, uuid.Nil, lampInput())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.AddItem(ctx, uuid.New(), AddItemInput{ProductID: " ", MaxQuantity: 1})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.AddItem(ctx, uuid.New(), AddItemInput{ProductID: "x", MaxQuantity: 0})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.AddItem(ctx, uuid.New(), AddItemInput{
		ProductID:   "x",
		UnitPrice:   decimal.NewFromInt(-1),
		MaxQuantity: 1,
	})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.RemoveItem(ctx, uuid.New(), "")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
