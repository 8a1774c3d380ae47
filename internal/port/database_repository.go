package port

import (
	"context"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/core/domain"
)

// TxManager runs fn inside a single storage transaction. Repository
// calls made with the context passed to fn share that transaction;
// returning an error rolls everything back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	// Exists reports whether a user with the given id is known.
	Exists(ctx context.Context, userID int64) (bool, error)

	// GetProfile returns the user's profile snapshot, nil if absent.
	GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error)
}

type ProductRepository interface {
	Exists(ctx context.Context, productID int64) (bool, error)

	// FindAll returns the whole catalog.
	FindAll(ctx context.Context) ([]domain.Product, error)
}

type OrderRepository interface {
	// Create persists the order and its line items as a unit and
	// assigns order.ID. Must be called inside a transaction.
	Create(ctx context.Context, order *domain.Order, items []domain.LineInput) error

	// GetByID returns the order, nil if absent.
	GetByID(ctx context.Context, orderID int64) (*domain.Order, error)

	// GetByIDForUpdate locks the order row for the current transaction.
	GetByIDForUpdate(ctx context.Context, orderID int64) (*domain.Order, error)

	LineItems(ctx context.Context, orderID int64) ([]domain.LineItem, error)

	// LineItemViews joins line items with product name and unit price.
	LineItemViews(ctx context.Context, orderID int64) ([]domain.LineItemView, error)

	// MarkAccepted transitions the order to accepted.
	MarkAccepted(ctx context.Context, orderID int64) error

	// MarkCompleted transitions accepted -> completed. Returns false
	// when the order is absent, not yet accepted or already completed.
	MarkCompleted(ctx context.Context, orderID int64) (bool, error)

	FindByBuyer(ctx context.Context, buyerID int64) ([]domain.Order, error)
	FindBySeller(ctx context.Context, sellerID int64) ([]domain.Order, error)
}

type InventoryRepository interface {
	// Get returns the seller's entry for a product, nil if absent.
	Get(ctx context.Context, sellerID, productID int64) (*domain.InventoryEntry, error)

	// GetForUpdate locks the entry row for the current transaction.
	GetForUpdate(ctx context.Context, sellerID, productID int64) (*domain.InventoryEntry, error)

	// Decrement atomically subtracts quantity, refusing to go
	// negative. Returns false when the entry is absent or short.
	Decrement(ctx context.Context, sellerID, productID int64, quantity int) (bool, error)

	// Upsert creates the entry or, if it already exists, re-lists it.
	Upsert(ctx context.Context, entry *domain.InventoryEntry) error

	UpdateQuantity(ctx context.Context, sellerID, productID int64, quantity int) (bool, error)

	// Delete removes the entry row. Returns false if absent.
	Delete(ctx context.Context, sellerID, productID int64) (bool, error)

	// FindListed returns the seller's listed entries joined with
	// product details.
	FindListed(ctx context.Context, sellerID int64) ([]domain.SellerListing, error)
}
