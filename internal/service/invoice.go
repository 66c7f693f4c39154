package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flicky/aqua-storefront/internal/dto"
	"github.com/flicky/aqua-storefront/internal/invoice"
	"github.com/flicky/aqua-storefront/internal/model"
	"github.com/flicky/aqua-storefront/internal/pricing"
)

var ErrInvalidDraft = errors.New("invalid invoice draft")

const (
	draftSKU      = "MANUAL"
	draftCategory = "Manual"
)

// Document is a rendered invoice ready for download or printing.
type Document struct {
	FileName string
	Data     []byte
}

type InvoiceService struct {
	renderer *invoice.Renderer
	orders   *OrderService
	now      func() time.Time
}

func NewInvoiceService(renderer *invoice.Renderer, orders *OrderService) *InvoiceService {
	return &InvoiceService{renderer: renderer, orders: orders, now: time.Now}
}

// ForOrder renders the invoice of a stored order.
func (s *InvoiceService) ForOrder(id string) (*Document, error) {
	o, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.render(o)
}

// Draft builds an ad hoc invoice order from staff-entered lines. It is priced
// exactly like a cart and is not recorded in the order log.
func (s *InvoiceService) Draft(req dto.DraftInvoiceRequest) (model.Order, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return model.Order{}, fmt.Errorf("%w: customer name is required", ErrInvalidDraft)
	}

	lines := make([]model.DraftLine, 0, len(req.Items))
	for _, l := range req.Items {
		if strings.TrimSpace(l.Name) == "" && l.Price == 0 {
			continue
		}
		if l.Quantity <= 0 || l.Price < 0 || l.Weight.IsNegative() {
			return model.Order{}, fmt.Errorf("%w: line %q needs a positive quantity and a non-negative price", ErrInvalidDraft, l.Name)
		}
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return model.Order{}, fmt.Errorf("%w: at least one item is required", ErrInvalidDraft)
	}

	totals := pricing.Calculate(pricing.FromDraft(lines))
	items := make([]model.CartItem, 0, len(lines))
	for _, l := range lines {
		id := l.Name
		if id == "" {
			id = "manual-item"
		}
		items = append(items, model.CartItem{
			Product: model.Product{
				ID: id, SKU: draftSKU, Name: l.Name, Category: draftCategory,
				Price: l.Price, Weight: l.Weight,
			},
			Quantity: l.Quantity,
		})
	}

	return model.Order{
		ID:           model.NewInvoiceID(),
		CustomerName: strings.TrimSpace(req.CustomerName),
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Items:        items,
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		Shipping:     totals.Shipping,
		Total:        totals.Total,
		Status:       model.OrderStatusDelivered,
		Date:         s.now().UTC().Truncate(time.Second),
	}, nil
}

func (s *InvoiceService) DraftDocument(req dto.DraftInvoiceRequest) (*Document, error) {
	o, err := s.Draft(req)
	if err != nil {
		return nil, err
	}
	return s.render(o)
}

func (s *InvoiceService) render(o model.Order) (*Document, error) {
	data, err := s.renderer.Render(o)
	if err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return &Document{FileName: invoice.FileName(o), Data: data}, nil
}
