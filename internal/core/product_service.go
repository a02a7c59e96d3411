package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sales-register/internal/store"
)

// ProductInput holds the fields captured by the product form.
type ProductInput struct {
	Name        string
	Category    Category
	Price       decimal.Decimal
	Stock       int64
	Description string
}

// ProductService manages the catalog. Stock set here is a direct edit;
// deductions during sales go through SaleService.
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*Product, error)
	Update(ctx context.Context, id string, input ProductInput) (*Product, error)
	// Delete removes a catalog item. Existing sales keep their snapshots.
	Delete(ctx context.Context, id string) error
	// List returns the catalog, newest first.
	List(ctx context.Context) ([]Product, error)
	// Search filters by name or category substring.
	Search(ctx context.Context, term string) ([]Product, error)
}

type productService struct {
	store store.Store
	log   *zap.Logger
}

func NewProductService(st store.Store, log *zap.Logger) ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &productService{store: st, log: log}
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return validationErr("name", "product name is required")
	}
	if input.Price.IsNegative() {
		return validationErr("price", "price cannot be negative")
	}
	if input.Stock < 0 {
		return validationErr("stock", "stock cannot be negative")
	}
	return nil
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	p := Product{
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Price:       input.Price,
		Stock:       input.Stock,
		Description: input.Description,
	}
	res := s.store.Create(ctx, store.Products, p.Fields())
	if !res.OK {
		return nil, &StoreError{Op: "create", Collection: store.Products, Cause: res.Err}
	}
	p.ID = res.ID
	s.log.Info("product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return &p, nil
}

func (s *productService) Update(ctx context.Context, id string, input ProductInput) (*Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	p := Product{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Price:       input.Price,
		Stock:       input.Stock,
		Description: input.Description,
	}
	res := s.store.Update(ctx, store.Products, id, p.Fields())
	if !res.OK {
		return nil, &StoreError{Op: "update", Collection: store.Products, Cause: res.Err}
	}
	return &p, nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	res := s.store.Delete(ctx, store.Products, id)
	if !res.OK {
		return &StoreError{Op: "delete", Collection: store.Products, Cause: res.Err}
	}
	s.log.Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *productService) List(ctx context.Context) ([]Product, error) {
	docs, err := s.store.List(ctx, store.Products, "createdAt")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, ProductFromDoc(d))
	}
	return products, nil
}

func (s *productService) Search(ctx context.Context, term string) ([]Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products, nil
	}
	out := products[:0]
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(string(p.Category)), term) {
			out = append(out, p)
		}
	}
	return out, nil
}
