// Package pricing derives order totals from priced, weighted line items.
// The cart summary, checkout and manual invoice drafts all price through Calculate.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/flicky/aqua-storefront/internal/model"
)

const ShippingRatePerKg int64 = 80

// TaxRate is the flat GST rate applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.18")

type Totals struct {
	Subtotal int64           `json:"subtotal"`
	Tax      int64           `json:"tax"`
	Weight   decimal.Decimal `json:"weight"`
	Shipping int64           `json:"shipping"`
	Total    int64           `json:"total"`
}

func Calculate(lines []model.LineItem) Totals {
	var subtotal int64
	weight := decimal.Zero
	for _, l := range lines {
		qty := int64(l.Quantity)
		subtotal += l.Price * qty
		weight = weight.Add(l.Weight.Mul(decimal.NewFromInt(qty)))
	}

	tax := Tax(subtotal)
	shipping := Shipping(weight)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Weight:   weight,
		Shipping: shipping,
		Total:    subtotal + tax + shipping,
	}
}

func Tax(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(TaxRate).Round(0).IntPart()
}

// Shipping charges per started kilogram: 0.1kg costs the same as 1.0kg.
func Shipping(weight decimal.Decimal) int64 {
	if !weight.IsPositive() {
		return 0
	}
	return weight.Ceil().IntPart() * ShippingRatePerKg
}

func FromCart(items []model.CartItem) []model.LineItem {
	lines := make([]model.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, model.LineItem{Price: it.Price, Weight: it.Weight, Quantity: it.Quantity})
	}
	return lines
}

func FromDraft(items []model.DraftLine) []model.LineItem {
	lines := make([]model.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, model.LineItem{Price: it.Price, Weight: it.Weight, Quantity: it.Quantity})
	}
	return lines
}

func CartTotals(items []model.CartItem) Totals {
	return Calculate(FromCart(items))
}
