package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Weights travel as JSON numbers everywhere a model is encoded.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Product is a catalog entry. Price is in the smallest currency unit and
// Weight is in kilograms.
type Product struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       int64           `json:"price"`
	Weight      decimal.Decimal `json:"weight"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Featured    bool            `json:"featured"`
}

// CartItem is a Product snapshot plus a quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

func (c CartItem) LineTotal() int64 {
	return c.Price * int64(c.Quantity)
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next follows the business flow
// Pending -> {Shipped, Cancelled}, Shipped -> {Delivered, Cancelled}.
// The store does not enforce it.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusDelivered || next == OrderStatusCancelled
	}
	return false
}

// Order is an immutable record of a completed checkout. Items are detached
// copies and Total is computed once at creation.
type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Items        []CartItem  `json:"items"`
	Subtotal     int64       `json:"subtotal"`
	Tax          int64       `json:"tax"`
	Shipping     int64       `json:"shipping"`
	Total        int64       `json:"total"`
	Status       OrderStatus `json:"status"`
	Date         time.Time   `json:"date"`
}

// LineItem is one priced, weighted, quantified entry of a cart or invoice.
type LineItem struct {
	Price    int64
	Weight   decimal.Decimal
	Quantity int
}

// DraftLine is an ad hoc invoice line entered by staff.
type DraftLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    int64           `json:"price"`
	Weight   decimal.Decimal `json:"weight"`
}

type OrderMessage struct {
	OrderID string `json:"order_id"`
}
