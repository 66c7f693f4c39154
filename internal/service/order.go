package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flicky/aqua-storefront/internal/config"
	"github.com/flicky/aqua-storefront/internal/contact"
	"github.com/flicky/aqua-storefront/internal/model"
	"github.com/flicky/aqua-storefront/internal/pricing"
	"github.com/flicky/aqua-storefront/internal/store"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCheckout = errors.New("invalid checkout details")
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidStatus   = errors.New("invalid order status")
)

// OrderPublisher queues placed orders for background processing.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, msg model.OrderMessage) error
}

type CheckoutDetails struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (d CheckoutDetails) validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidCheckout)
	case strings.TrimSpace(d.Phone) == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidCheckout)
	case strings.TrimSpace(d.Address) == "":
		return fmt.Errorf("%w: address is required", ErrInvalidCheckout)
	}
	return nil
}

type Receipt struct {
	Order      model.Order
	ContactURL string
}

type OrderService struct {
	store     *store.Store
	opener    contact.Opener
	publisher OrderPublisher
	business  config.BusinessConfig
	log       *slog.Logger
	now       func() time.Time
}

func NewOrderService(st *store.Store, opener contact.Opener, publisher OrderPublisher, business config.BusinessConfig, log *slog.Logger) *OrderService {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OrderService{store: st, opener: opener, publisher: publisher, business: business, log: log, now: time.Now}
}

// CheckoutSession checks out the cart of sessionID. Requests that fail
// validation or find an empty cart never register a session.
func (s *OrderService) CheckoutSession(ctx context.Context, sessionID string, d CheckoutDetails) (*Receipt, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if len(s.store.Cart(ctx, sessionID)) == 0 {
		return nil, ErrEmptyCart
	}
	return s.Checkout(ctx, s.store.Session(ctx, sessionID), d)
}

// Checkout turns the session's cart into a Pending order, hands the summary
// to the chat channel and records the order. The cart is taken in one step,
// so concurrent checkouts of one session place a single order. Invalid input
// is rejected before anything is changed.
func (s *OrderService) Checkout(ctx context.Context, sess *store.Session, d CheckoutDetails) (*Receipt, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	cart := sess.TakeCart(ctx)
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	totals := pricing.CartTotals(cart)
	order := model.Order{
		ID:           model.NewOrderID(),
		CustomerName: strings.TrimSpace(d.Name),
		Email:        strings.TrimSpace(d.Email),
		Phone:        strings.TrimSpace(d.Phone),
		Address:      strings.TrimSpace(d.Address),
		Items:        cart,
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		Shipping:     totals.Shipping,
		Total:        totals.Total,
		Status:       model.OrderStatusPending,
		Date:         s.now().UTC().Truncate(time.Second),
	}

	link := contact.Link(s.business.WhatsAppPhone, s.orderMessage(order, totals.Weight))
	s.opener.Open(ctx, link)

	s.store.AddOrder(ctx, order)

	if s.publisher != nil {
		if err := s.publisher.PublishOrder(ctx, model.OrderMessage{OrderID: order.ID}); err != nil {
			s.log.Warn("publish order", "order_id", order.ID, "error", err)
		}
	}
	return &Receipt{Order: order, ContactURL: link}, nil
}

func (s *OrderService) orderMessage(o model.Order, weight decimal.Decimal) string {
	names := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		names = append(names, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}
	total := pricing.FormatAmount(o.Total)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi 👋 %s! 🌊\n\nI'd like to place an order.\n\n", s.business.Name)
	fmt.Fprintf(&b, "*Order REF:* %s\n*Items:* %s\n\n", o.ID, strings.Join(names, ", "))
	fmt.Fprintf(&b, "*Order Summary:*\n- Subtotal: ₹%s\n- Tax (18%%): ₹%s\n- Shipping (%skg): ₹%s\n*Grand Total:* ₹%s\n\n",
		pricing.FormatAmount(o.Subtotal), pricing.FormatAmount(o.Tax), weight.StringFixed(2), pricing.FormatAmount(o.Shipping), total)
	fmt.Fprintf(&b, "*Customer Details:*\n- Name: %s\n- Phone: %s\n- Address: %s\n\n", o.CustomerName, o.Phone, o.Address)
	fmt.Fprintf(&b, "⚠️ *Note:* I understand this is a prepaid order and dispatch happens every Monday. Please share GPay/PhonePe details for ₹%s.", total)
	return b.String()
}

func (s *OrderService) List() []model.Order {
	return s.store.Orders()
}

func (s *OrderService) GetByID(id string) (model.Order, error) {
	o, ok := s.store.Order(id)
	if !ok {
		return model.Order{}, ErrOrderNotFound
	}
	return o, nil
}

// UpdateStatus sets any known status regardless of the current one.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if _, ok := s.store.Order(id); !ok {
		return ErrOrderNotFound
	}
	s.store.UpdateOrderStatus(ctx, id, status)
	return nil
}
