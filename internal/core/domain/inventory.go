package domain

import "time"

// DefaultListingQuantity is the stock a seller starts with when first
// listing a product.
const DefaultListingQuantity = 1

// InventoryEntry tracks a seller's stock of one product. The
// (SellerID, ProductID) pair is unique.
type InventoryEntry struct {
	ID        int64
	SellerID  int64
	ProductID int64
	Quantity  int
	Listed    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SellerListing is an inventory entry joined with its product details,
// as rendered in the seller's catalog views.
type SellerListing struct {
	ProductID   int64  `json:"productId"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Quantity    int    `json:"quantity"`
}
