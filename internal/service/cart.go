package service

import (
	"context"
	"errors"

	"github.com/flicky/aqua-storefront/internal/dto"
	"github.com/flicky/aqua-storefront/internal/model"
	"github.com/flicky/aqua-storefront/internal/pricing"
	"github.com/flicky/aqua-storefront/internal/store"
)

var (
	ErrOutOfStock       = errors.New("product is out of stock")
	ErrCartItemNotFound = errors.New("cart item not found")
)

type CartService struct {
	store *store.Store
}

func NewCartService(st *store.Store) *CartService {
	return &CartService{store: st}
}

// GetCart reads the cart without registering a session for sessionID.
func (s *CartService) GetCart(ctx context.Context, sessionID string) dto.CartResponse {
	return toCartResponse(sessionID, s.store.Cart(ctx, sessionID))
}

func (s *CartService) AddItem(ctx context.Context, sessionID, productID string) (dto.CartResponse, error) {
	p, ok := s.store.Product(productID)
	if !ok {
		return dto.CartResponse{}, ErrProductNotFound
	}
	if p.Stock <= 0 {
		return dto.CartResponse{}, ErrOutOfStock
	}
	sess := s.store.Session(ctx, sessionID)
	sess.AddToCart(ctx, p)
	return toCartResponse(sessionID, sess.Cart()), nil
}

// UpdateItem sets a line's quantity; zero or less removes it.
func (s *CartService) UpdateItem(ctx context.Context, sessionID, productID string, quantity int) (dto.CartResponse, error) {
	if !inCart(s.store.Cart(ctx, sessionID), productID) {
		return dto.CartResponse{}, ErrCartItemNotFound
	}
	sess := s.store.Session(ctx, sessionID)
	sess.UpdateCartQuantity(ctx, productID, quantity)
	return toCartResponse(sessionID, sess.Cart()), nil
}

func (s *CartService) DeleteItem(ctx context.Context, sessionID, productID string) (dto.CartResponse, error) {
	if !inCart(s.store.Cart(ctx, sessionID), productID) {
		return dto.CartResponse{}, ErrCartItemNotFound
	}
	sess := s.store.Session(ctx, sessionID)
	sess.RemoveFromCart(ctx, productID)
	return toCartResponse(sessionID, sess.Cart()), nil
}

func (s *CartService) Clear(ctx context.Context, sessionID string) dto.CartResponse {
	if len(s.store.Cart(ctx, sessionID)) > 0 {
		s.store.Session(ctx, sessionID).ClearCart(ctx)
	}
	return toCartResponse(sessionID, nil)
}

func inCart(cart []model.CartItem, productID string) bool {
	for _, item := range cart {
		if item.ID == productID {
			return true
		}
	}
	return false
}

func toCartResponse(sessionID string, items []model.CartItem) dto.CartResponse {
	if items == nil {
		items = []model.CartItem{}
	}
	return dto.CartResponse{SessionID: sessionID, Items: items, Totals: pricing.CartTotals(items)}
}
