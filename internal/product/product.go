package product

// Product is a marketplace listing owned by a seller. StockQuantity is the
// available-to-sell count; it is mutated by seller CRUD and by the checkout
// coordinator only, and must never go negative.
type Product struct {
	ID            int     `json:"productId"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	StockQuantity int     `json:"stockQuantity"`
	ImageURL      *string `json:"imageURL,omitempty"`
	SellerID      int     `json:"sellerId"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

// Filter narrows and paginates product listings.
type Filter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

func (f Filter) normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	return f
}

func (f Filter) matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Search != "" && !containsFold(p.Name, f.Search) {
		return false
	}
	return true
}
