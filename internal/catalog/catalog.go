// Package catalog is the read-only view of the product list.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/phone-storefront/app/internal/models"
)

// ErrNotFound is returned when no product has the requested ID.
var ErrNotFound = errors.New("product not found")

// ProductStore is the slice of the data store the catalog needs.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]*models.Product, error)
}

// Service answers product queries for pages and the cart.
type Service struct {
	products ProductStore
}

// NewService returns a Service reading from products.
func NewService(products ProductStore) *Service {
	return &Service{products: products}
}

// ListAll returns every product in insertion order.
func (s *Service) ListAll(ctx context.Context) ([]*models.Product, error) {
	return s.products.ListProducts(ctx)
}

// GetByID returns the product with id, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.products.GetProductByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Lookup resolves ids in one query. Unknown ids are absent from the result.
// Repeated ids are queried once, so the query size is bounded by the catalog.
func (s *Service) Lookup(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	distinct := slices.Clone(ids)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	found, err := s.products.GetProductsByIDs(ctx, distinct)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	return byID, nil
}
