package model

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderID(t *testing.T) {
	re := regexp.MustCompile(`^MVS[0-9A-Z]{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewOrderID()
		assert.Regexp(t, re, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 95)
}

func TestNewInvoiceID(t *testing.T) {
	assert.Regexp(t, `^INV-[0-9A-Z]{5}$`, NewInvoiceID())
	assert.Regexp(t, `^[0-9a-z]{9}$`, NewProductID())
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatus("Lost").Valid())
}

func TestCartItem_JSONFlattensProduct(t *testing.T) {
	item := CartItem{
		Product:  Product{ID: "p1", Name: "Betta", Price: 500, Weight: decimal.RequireFromString("0.4")},
		Quantity: 2,
	}
	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "p1", raw["id"])
	assert.Equal(t, float64(2), raw["quantity"])
	assert.Equal(t, int64(1000), item.LineTotal())

	var back CartItem
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Weight.Equal(item.Weight))
}

func TestProduct_WeightIsJSONNumber(t *testing.T) {
	data, err := json.Marshal(Product{ID: "p1", Weight: decimal.RequireFromString("0.4")})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"weight":0.4`)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 0.4, raw["weight"])

	var quoted Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","weight":"1.25"}`), &quoted))
	assert.Equal(t, "1.25", quoted.Weight.String())
}
