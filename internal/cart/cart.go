// Package cart keeps the shopping cart on the session and prices it against the catalog.
package cart

import (
	"context"

	"github.com/phone-storefront/app/internal/models"
	"github.com/phone-storefront/app/internal/session"
)

// Catalog resolves product IDs in bulk.
type Catalog interface {
	Lookup(ctx context.Context, ids []int64) (map[int64]*models.Product, error)
}

// Contents is a resolved cart: one line per stored ID, in insertion order.
type Contents struct {
	Items []*models.Product
	Total float64
}

// Count is the number of resolved lines.
func (c *Contents) Count() int {
	return len(c.Items)
}

// Service keeps carts on sessions and prices them through a Catalog.
type Service struct {
	catalog Catalog
}

// NewService returns a Service resolving products through catalog.
func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// AddItem appends productID to the cart. The ID is not checked against the catalog.
func (s *Service) AddItem(sess *session.Session, productID int64) {
	sess.Cart = append(sess.Cart, productID)
}

// View resolves the cart. Repeated IDs become repeated lines; IDs that no
// longer resolve are left out of both Items and Total.
func (s *Service) View(ctx context.Context, sess *session.Session) (*Contents, error) {
	c := &Contents{}
	if len(sess.Cart) == 0 {
		return c, nil
	}

	byID, err := s.catalog.Lookup(ctx, sess.Cart)
	if err != nil {
		return nil, err
	}

	for _, id := range sess.Cart {
		p, ok := byID[id]
		if !ok {
			continue
		}
		c.Items = append(c.Items, p)
		c.Total += p.Price
	}
	return c, nil
}
