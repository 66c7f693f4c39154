package dto

import (
	"github.com/shopspring/decimal"

	"github.com/flicky/aqua-storefront/internal/model"
	"github.com/flicky/aqua-storefront/internal/pricing"
)

// --- Auth ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	SessionID string       `json:"session_id"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// --- Product ---

type ProductRequest struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name" binding:"required"`
	Category    string          `json:"category"`
	Price       int64           `json:"price" binding:"required,gt=0"`
	Weight      decimal.Decimal `json:"weight"`
	Stock       int             `json:"stock" binding:"min=0"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Featured    bool            `json:"featured"`
}

type ReplaceProductsRequest struct {
	Products []ProductRequest `json:"products" binding:"required,dive"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type ProductListResponse struct {
	Products []model.Product `json:"products"`
	Total    int             `json:"total"`
	Loading  bool            `json:"loading"`
	Online   bool            `json:"online"`
}

type InventorySearchRequest struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit,default=5" binding:"min=1,max=50"`
}

type AssistantContextResponse struct {
	Context string `json:"context"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// UpdateCartItemRequest allows zero or negative quantities, which remove the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CartResponse struct {
	SessionID string           `json:"session_id"`
	Items     []model.CartItem `json:"items"`
	Totals    pricing.Totals   `json:"totals"`
}

// --- Checkout ---

type CheckoutRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ReceiptResponse struct {
	Order      model.Order `json:"order"`
	ContactURL string      `json:"contact_url"`
}

// --- Order ---

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

type OrderListResponse struct {
	Orders []model.Order `json:"orders"`
	Total  int           `json:"total"`
}

// --- Invoice ---

type InvoiceAction struct {
	Action string `form:"action,default=download" binding:"oneof=download print"`
}

type DraftInvoiceRequest struct {
	CustomerName string            `json:"customer_name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Address      string            `json:"address"`
	Items        []model.DraftLine `json:"items"`
}
