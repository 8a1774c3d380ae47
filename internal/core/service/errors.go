package service

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrOrderNotFound    = errors.New("order not found")
	ErrBuyerNotFound    = errors.New("buyer not found")
	ErrSellerNotFound   = errors.New("seller not found")
	ErrProductNotFound  = errors.New("product not found")
)

// InsufficientStockError reports a line item whose requested quantity
// exceeds the seller's available stock. Acceptance aborts without
// touching any inventory entry of the order.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (available: %d, requested: %d)",
		e.ProductID, e.Available, e.Requested)
}

// InconsistentInventoryError means the seller has no tracked inventory
// entry for an ordered product, or an entry that was verified under
// lock refused its decrement. Either way the data is inconsistent;
// this is not a caller error.
type InconsistentInventoryError struct {
	SellerID  int64
	ProductID int64
}

func (e *InconsistentInventoryError) Error() string {
	return fmt.Sprintf("product %d not tracked in seller %d's inventory", e.ProductID, e.SellerID)
}
