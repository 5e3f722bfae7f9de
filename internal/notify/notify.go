// Package notify delivers order confirmations after checkout commits. The
// durable state change is synchronous and atomic; confirmation delivery is
// fire-and-forget, so nothing here may ever fail an already-committed order.
package notify

import (
	"context"
	"log"

	"github.com/campuskart/campuskart-backend/internal/order"
	"github.com/campuskart/campuskart-backend/internal/user"
)

// OrderConfirmation is the event payload consumed by the mail worker.
type OrderConfirmation struct {
	OrderRef    string  `json:"orderRef"`
	BuyerEmail  string  `json:"buyerEmail"`
	BuyerName   string  `json:"buyerName"`
	TotalAmount float64 `json:"totalAmount"`
	ItemCount   int     `json:"itemCount"`
	PlacedAt    string  `json:"placedAt"`
}

func confirmationFor(buyer user.User, ord order.Order) OrderConfirmation {
	return OrderConfirmation{
		OrderRef:    ord.Reference,
		BuyerEmail:  buyer.Email,
		BuyerName:   buyer.Name,
		TotalAmount: ord.TotalAmount,
		ItemCount:   len(ord.Items),
		PlacedAt:    ord.CreatedAt,
	}
}

// LogNotifier is the fallback when no brokers are configured: confirmations
// go to the process log only.
type LogNotifier struct{}

func (LogNotifier) NotifyOrderPlaced(ctx context.Context, buyer user.User, ord order.Order) {
	log.Printf("order %s confirmed for %s (total %.2f, %d items)",
		ord.Reference, buyer.Email, ord.TotalAmount, len(ord.Items))
}
