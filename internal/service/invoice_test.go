package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/aqua-storefront/internal/dto"
	"github.com/flicky/aqua-storefront/internal/invoice"
	"github.com/flicky/aqua-storefront/internal/model"
	"github.com/flicky/aqua-storefront/internal/pricing"
)

func newInvoiceService(t *testing.T, orders *OrderService) *InvoiceService {
	t.Helper()
	svc := NewInvoiceService(invoice.NewRenderer(testBusiness), orders)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestInvoiceService_Draft(t *testing.T) {
	svc := newInvoiceService(t, nil)

	o, err := svc.Draft(dto.DraftInvoiceRequest{
		CustomerName: "Walk-in",
		Items: []model.DraftLine{
			{Name: "Halfmoon Betta", Quantity: 2, Price: 500},
			{Name: "", Quantity: 1, Price: 0},
		},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^INV-[0-9A-Z]{5}$`, o.ID)
	assert.Equal(t, model.OrderStatusDelivered, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "MANUAL", o.Items[0].SKU)
	assert.Equal(t, "Manual", o.Items[0].Category)
	assert.Equal(t, int64(1000), o.Subtotal)
	assert.Equal(t, int64(180), o.Tax)
	assert.Zero(t, o.Shipping)
	assert.Equal(t, int64(1180), o.Total)
}

func TestInvoiceService_Draft_Invalid(t *testing.T) {
	svc := newInvoiceService(t, nil)
	line := []model.DraftLine{{Name: "Betta", Quantity: 1, Price: 10}}

	tests := []struct {
		name string
		req  dto.DraftInvoiceRequest
	}{
		{"missing customer", dto.DraftInvoiceRequest{Items: line}},
		{"no lines", dto.DraftInvoiceRequest{CustomerName: "Walk-in"}},
		{"zero quantity", dto.DraftInvoiceRequest{CustomerName: "Walk-in", Items: []model.DraftLine{{Name: "Betta", Quantity: 0, Price: 10}}}},
		{"negative price", dto.DraftInvoiceRequest{CustomerName: "Walk-in", Items: []model.DraftLine{{Name: "Betta", Quantity: 1, Price: -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Draft(tt.req)
			assert.ErrorIs(t, err, ErrInvalidDraft)
		})
	}
}

// The cart summary, checkout and manual draft must agree for the same lines.
func TestPricing_CartCheckoutAndDraftAgree(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t,
		testProduct("betta", 450, "0.2", 10),
		testProduct("filter", 1850, "1.2", 10),
		testProduct("soil", 1399, "5", 10),
	)
	sess := fillCart(t, st, "s1", map[string]int{"betta": 3, "filter": 1, "soil": 2})
	cartTotals := NewCartService(st).GetCart(ctx, "s1").Totals

	var draftLines []model.DraftLine
	for _, item := range sess.Cart() {
		draftLines = append(draftLines, model.DraftLine{Name: item.Name, Quantity: item.Quantity, Price: item.Price, Weight: item.Weight})
	}
	draft, err := newInvoiceService(t, nil).Draft(dto.DraftInvoiceRequest{CustomerName: "Walk-in", Items: draftLines})
	require.NoError(t, err)

	orders, _ := newCheckout(t, st, nil)
	receipt, err := orders.Checkout(ctx, sess, validDetails)
	require.NoError(t, err)

	checkout := receipt.Order
	for _, got := range []pricing.Totals{
		{Subtotal: checkout.Subtotal, Tax: checkout.Tax, Shipping: checkout.Shipping, Total: checkout.Total},
		{Subtotal: draft.Subtotal, Tax: draft.Tax, Shipping: draft.Shipping, Total: draft.Total},
	} {
		assert.Equal(t, cartTotals.Subtotal, got.Subtotal)
		assert.Equal(t, cartTotals.Tax, got.Tax)
		assert.Equal(t, cartTotals.Shipping, got.Shipping)
		assert.Equal(t, cartTotals.Total, got.Total)
	}
	assert.True(t, cartTotals.Weight.Equal(decimal.RequireFromString("11.8")))
	assert.Equal(t, int64(12*80), cartTotals.Shipping)
}

func TestInvoiceService_ForOrder(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	order := model.Order{ID: "MVSABC123", CustomerName: "Ravi", Total: 1180, Date: fixedNow}
	st.AddOrder(ctx, order)
	orders, _ := newCheckout(t, st, nil)
	svc := newInvoiceService(t, orders)

	doc, err := svc.ForOrder("MVSABC123")
	require.NoError(t, err)
	assert.Equal(t, "MVS_Invoice_MVSABC123.pdf", doc.FileName)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF-")))

	again, err := svc.ForOrder("MVSABC123")
	require.NoError(t, err)
	assert.Equal(t, doc.Data, again.Data)

	_, err = svc.ForOrder("missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestInvoiceService_DraftDocument(t *testing.T) {
	svc := newInvoiceService(t, nil)

	doc, err := svc.DraftDocument(dto.DraftInvoiceRequest{
		CustomerName: "Walk-in",
		Items:        []model.DraftLine{{Name: "Betta", Quantity: 1, Price: 450}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^MVS_Invoice_INV-[0-9A-Z]{5}\.pdf$`, doc.FileName)
	assert.NotEmpty(t, doc.Data)

	_, err = svc.DraftDocument(dto.DraftInvoiceRequest{})
	assert.ErrorIs(t, err, ErrInvalidDraft)
}
