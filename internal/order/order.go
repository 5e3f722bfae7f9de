package order

import "errors"

// Line is one purchased item. PriceAtPurchase is captured from the product's
// live price inside the checkout transaction and never recomputed, so
// historical order value is decoupled from later price changes.
type Line struct {
	ProductID       int     `json:"productId"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"priceAtPurchase"`
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

var ErrInvalidAddress = errors.New("shipping address requires street, city, state and zipCode")

func (a ShippingAddress) Validate() error {
	if a.Street == "" || a.City == "" || a.State == "" || a.ZipCode == "" {
		return ErrInvalidAddress
	}
	return nil
}

// Order is an immutable record of a completed purchase. TotalAmount is
// computed once at creation and stored, never derived on read.
type Order struct {
	ID              int             `json:"orderId"`
	Reference       string          `json:"reference"`
	BuyerID         int             `json:"buyerId"`
	Items           []Line          `json:"items"`
	TotalAmount     float64         `json:"totalAmount"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Status          Status          `json:"status"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
}
