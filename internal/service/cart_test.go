package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newTestStore(t, testProduct("a", 500, "0.4", 3)))

	_, err := svc.AddItem(ctx, "s1", "a")
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "s1", "a")
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "s1", cart.SessionID)
	assert.Equal(t, int64(1260), cart.Totals.Total)
}

func TestCartService_AddItem_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newTestStore(t, testProduct("empty", 100, "0.1", 0)))

	_, err := svc.AddItem(ctx, "s1", "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.AddItem(ctx, "s1", "empty")
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Empty(t, svc.GetCart(ctx, "s1").Items)
}

func TestCartService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newTestStore(t, testProduct("a", 100, "0.1", 5), testProduct("b", 200, "0.1", 5)))
	_, _ = svc.AddItem(ctx, "s1", "a")
	_, _ = svc.AddItem(ctx, "s1", "b")

	cart, err := svc.UpdateItem(ctx, "s1", "a", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	cart, err = svc.UpdateItem(ctx, "s1", "a", 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "b", cart.Items[0].ID)

	_, err = svc.UpdateItem(ctx, "s1", "a", 2)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
	_, err = svc.DeleteItem(ctx, "s1", "a")
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	cart, err = svc.DeleteItem(ctx, "s1", "b")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Totals.Total)
}

func TestCartService_Clear(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newTestStore(t, testProduct("a", 100, "0.1", 5)))
	_, _ = svc.AddItem(ctx, "s1", "a")
	_, _ = svc.AddItem(ctx, "s2", "a")

	assert.Empty(t, svc.Clear(ctx, "s1").Items)
	assert.Len(t, svc.GetCart(ctx, "s2").Items, 1)
}

func TestCartService_ReadsLeaveNoSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, testProduct("a", 100, "0.1", 5))
	svc := NewCartService(st)

	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("anon-%d", i)
		assert.Empty(t, svc.GetCart(ctx, id).Items)
		_, err := svc.UpdateItem(ctx, id, "a", 2)
		assert.ErrorIs(t, err, ErrCartItemNotFound)
		_, err = svc.DeleteItem(ctx, id, "a")
		assert.ErrorIs(t, err, ErrCartItemNotFound)
		svc.Clear(ctx, id)
	}
	assert.Zero(t, st.Sessions())

	_, err := svc.AddItem(ctx, "s1", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Sessions())
	svc.Clear(ctx, "s1")
	assert.Zero(t, st.Sessions())
}
