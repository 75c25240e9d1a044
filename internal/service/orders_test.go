package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henriquexaud/OrdersAPI/internal/domain"
	"github.com/henriquexaud/OrdersAPI/internal/storage"
)

func TestCreateOrder_New(t *testing.T) {
	svc := New(storage.NewMemStore())

	o, created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		OrderID: "A-1", Customer: "Ada", Total: 42.50,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, 0, o.Attempts)
	assert.NotEmpty(t, o.ID)
}

func TestCreateOrder_DuplicateReturnsExistingRow(t *testing.T) {
	svc := New(storage.NewMemStore())
	ctx := context.Background()

	first, created, err := svc.CreateOrder(ctx, CreateOrderInput{OrderID: "A-1", Customer: "Ada", Total: 42.50})
	require.NoError(t, err)
	require.True(t, created)

	// Resubmission with a different payload returns the original row unchanged.
	second, created, err := svc.CreateOrder(ctx, CreateOrderInput{OrderID: "A-1", Customer: "Ada", Total: 99})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 42.50, second.Total)
	assert.Equal(t, "Ada", second.Customer)
}

func TestGetOrder(t *testing.T) {
	store := storage.NewMemStore()
	svc := New(store)
	ctx := context.Background()

	_, _, err := svc.CreateOrder(ctx, CreateOrderInput{OrderID: "A-1", Customer: "Ada", Total: 42.50})
	require.NoError(t, err)

	o, err := svc.GetOrder(ctx, "A-1")
	require.NoError(t, err)
	assert.Equal(t, "A-1", o.OrderID)

	_, err = svc.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
}
