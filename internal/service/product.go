package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flicky/aqua-storefront/internal/catalog"
	"github.com/flicky/aqua-storefront/internal/dto"
	"github.com/flicky/aqua-storefront/internal/model"
	"github.com/flicky/aqua-storefront/internal/store"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product already exists")
	ErrInvalidProduct  = errors.New("invalid product")
)

const inventorySearchLimit = 5

type ProductService struct {
	store *store.Store
}

func NewProductService(st *store.Store) *ProductService {
	return &ProductService{store: st}
}

func (s *ProductService) List() dto.ProductListResponse {
	products := s.store.Products()
	return dto.ProductListResponse{
		Products: products,
		Total:    len(products),
		Loading:  s.store.Loading(),
		Online:   s.store.Online(),
	}
}

func (s *ProductService) GetByID(id string) (model.Product, error) {
	p, ok := s.store.Product(id)
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Create adds a product, generating an id when none is given. In remote mode
// the product appears once the change feed delivers it.
func (s *ProductService) Create(ctx context.Context, req dto.ProductRequest) (model.Product, error) {
	p, err := fromRequest(req)
	if err != nil {
		return model.Product{}, err
	}
	if p.ID == "" {
		p.ID = model.NewProductID()
	}
	if _, ok := s.store.Product(p.ID); ok {
		return model.Product{}, ErrProductExists
	}
	s.store.AddProduct(ctx, p)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, req dto.ProductRequest) (model.Product, error) {
	if _, ok := s.store.Product(id); !ok {
		return model.Product{}, ErrProductNotFound
	}
	p, err := fromRequest(req)
	if err != nil {
		return model.Product{}, err
	}
	p.ID = id
	s.store.UpdateProduct(ctx, p)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, ok := s.store.Product(id); !ok {
		return ErrProductNotFound
	}
	s.store.RemoveProduct(ctx, id)
	return nil
}

// ReplaceAll swaps the whole catalog, as done by a spreadsheet import.
func (s *ProductService) ReplaceAll(ctx context.Context, products []model.Product) {
	s.store.SetProducts(ctx, products)
}

// Replace swaps the catalog for the requested products, generating missing
// ids. One invalid product rejects the whole request.
func (s *ProductService) Replace(ctx context.Context, req dto.ReplaceProductsRequest) ([]model.Product, error) {
	products := make([]model.Product, 0, len(req.Products))
	for i, r := range req.Products {
		p, err := fromRequest(r)
		if err != nil {
			return nil, fmt.Errorf("products[%d]: %w", i, err)
		}
		if p.ID == "" {
			p.ID = model.NewProductID()
		}
		products = append(products, p)
	}
	s.store.SetProducts(ctx, products)
	return products, nil
}

func (s *ProductService) Search(query string, limit int) []model.Product {
	if limit <= 0 || limit > inventorySearchLimit {
		limit = inventorySearchLimit
	}
	return catalog.Search(s.store.Products(), query, limit)
}

// AssistantContext is the current catalog as handed to the shop assistant.
func (s *ProductService) AssistantContext() string {
	return catalog.Context(s.store.Products())
}

func fromRequest(req dto.ProductRequest) (model.Product, error) {
	if req.Weight.IsNegative() {
		return model.Product{}, fmt.Errorf("%w: weight must not be negative", ErrInvalidProduct)
	}
	return model.Product{
		ID:          strings.TrimSpace(req.ID),
		SKU:         req.SKU,
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Weight:      req.Weight,
		Stock:       req.Stock,
		Description: req.Description,
		Image:       req.Image,
		Featured:    req.Featured,
	}, nil
}
