package port

import "context"

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// SetStock publishes an advisory stock snapshot for a seller's product
	SetStock(ctx context.Context, sellerID, productID int64, quantity int) error

	// DeleteStock drops the snapshot when a listing is removed
	DeleteStock(ctx context.Context, sellerID, productID int64) error
}
