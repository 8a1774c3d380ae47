package domain

import "time"

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusCompleted OrderStatus = "completed"
)

// CanTransitionTo reports whether next is the immediate forward step.
// The lifecycle only moves placed -> accepted -> completed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPlaced:
		return next == OrderStatusAccepted
	case OrderStatusAccepted:
		return next == OrderStatusCompleted
	default:
		return false
	}
}

// Accepted reports whether the order has passed acceptance.
func (s OrderStatus) Accepted() bool {
	return s == OrderStatusAccepted || s == OrderStatusCompleted
}

// Completed reports whether the order has been fulfilled.
func (s OrderStatus) Completed() bool {
	return s == OrderStatusCompleted
}

type Order struct {
	ID         int64
	BuyerID    int64
	SellerID   int64
	TotalPrice int
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LineItem is owned by its parent order and is deleted with it.
type LineItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
}

// LineInput is one (product, quantity) pair of a placement request.
type LineInput struct {
	ProductID int64
	Quantity  int
}

// OrderSummary is the read-side projection of one order: lifecycle
// flags, the counterparty's profile snapshot and the ordered lines.
type OrderSummary struct {
	OrderID      int64          `json:"orderId"`
	Price        int            `json:"price"`
	Accepted     bool           `json:"accepted"`
	Completed    bool           `json:"completed"`
	Counterparty UserProfile    `json:"counterparty"`
	Items        []LineItemView `json:"products"`
}

type LineItemView struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int    `json:"price"`
}
