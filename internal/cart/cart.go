package cart

// Item is one line of a cart: a product reference and a quantity that is
// always >= 1 while the item exists. Quantities dropping to zero remove the
// line instead of zeroing it.
type Item struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// Cart is a buyer-owned pre-order collection. It is created lazily on the
// first add and cleared, not deleted, when a checkout commits.
type Cart struct {
	UserID    int    `json:"userId"`
	Items     []Item `json:"items"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Upsert adds qty to an existing line or appends a new one, keeping item
// order stable. Lines whose quantity falls to zero or below are removed.
func (c *Cart) Upsert(productID, qty int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			if c.Items[i].Quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			}
			return
		}
	}
	if qty > 0 {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty})
	}
}

// Remove drops the line for the given product, if present.
func (c *Cart) Remove(productID int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}
