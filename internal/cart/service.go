package cart

import (
	"time"

	"github.com/campuskart/campuskart-backend/internal/product"
)

// ProductGetter is the slice of the product service the cart needs.
type ProductGetter interface {
	GetByID(id int) (product.Product, error)
	ListByIDs(ids []int) ([]product.Product, error)
}

// Service orchestrates cart mutations. Stock is NOT checked here; only the
// checkout transaction validates stock against current inventory.
type Service struct {
	repo     Repository
	products ProductGetter
}

func NewService(repo Repository, products ProductGetter) *Service {
	return &Service{repo: repo, products: products}
}

// Get returns the buyer's cart, or an empty representation when none exists
// yet. The cart is only materialized on the first add.
func (s *Service) Get(userID int) (Cart, error) {
	c, err := s.repo.Find(userID)
	if err == ErrNotFound {
		return Cart{UserID: userID, Items: []Item{}}, nil
	}
	return c, err
}

// Add puts qty of a product into the cart, creating the cart lazily and
// incrementing an existing line. The product must exist.
func (s *Service) Add(userID, productID, qty int) (Cart, error) {
	if qty <= 0 {
		qty = 1
	}
	if _, err := s.products.GetByID(productID); err != nil {
		return Cart{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	c, err := s.repo.Find(userID)
	if err == ErrNotFound {
		c = Cart{UserID: userID, Items: []Item{}, CreatedAt: now}
	} else if err != nil {
		return Cart{}, err
	}

	c.Upsert(productID, qty)
	c.UpdatedAt = now
	if err := s.repo.Save(c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// UpdateQuantity sets the quantity of an existing line. Quantities below one
// are rejected; use Remove to drop a line.
func (s *Service) UpdateQuantity(userID, productID, qty int) (Cart, error) {
	if qty < 1 {
		return Cart{}, ErrInvalidQuantity
	}

	c, err := s.repo.Find(userID)
	if err != nil {
		return Cart{}, err
	}

	found := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			found = true
			break
		}
	}
	if !found {
		return Cart{}, ErrItemNotFound
	}

	c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.repo.Save(c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Remove drops the line for the given product.
func (s *Service) Remove(userID, productID int) (Cart, error) {
	c, err := s.repo.Find(userID)
	if err != nil {
		return Cart{}, err
	}

	c.Remove(productID)
	c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.repo.Save(c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// ProductsFor loads the product details referenced by the cart so handlers
// can return enriched responses.
func (s *Service) ProductsFor(c Cart) ([]product.Product, error) {
	if len(c.Items) == 0 {
		return []product.Product{}, nil
	}
	ids := make([]int, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return s.products.ListByIDs(ids)
}
