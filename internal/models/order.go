package models

import "time"

// Order sides and statuses as the backend records them.
const (
	OrderSideBuy  = "buy"
	OrderSideSell = "sell"

	OrderStatusCompleted = "completed"
	OrderStatusPending   = "pending"
	OrderStatusRejected  = "rejected"

	OrderTypeMarket = "Market"
	OrderTypeLimit  = "Limit"
)

// Order is an executed or pending order as returned by the backend ledger.
type Order struct {
	ID        string    `json:"_id"`
	Stock     string    `json:"stock"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Side      string    `json:"type"`      // "buy" or "sell"
	OrderType string    `json:"orderType"` // "Market" or "Limit"
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsBuy reports whether the order is on the buy side.
func (o *Order) IsBuy() bool { return o.Side == OrderSideBuy }

// IsCompleted reports whether the order has been filled.
func (o *Order) IsCompleted() bool { return o.Status == OrderStatusCompleted }

// OrderRequest is the payload for placing an order. ClientRef is a
// caller-generated idempotency reference.
type OrderRequest struct {
	Stock     string  `json:"stock"`
	Quantity  float64 `json:"quantity"`
	Side      string  `json:"type"`
	Price     float64 `json:"price"`
	OrderType string  `json:"orderType"`
	ClientRef string  `json:"clientRef,omitempty"`
}
