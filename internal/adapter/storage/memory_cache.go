package storage

import (
	"context"
	"sync"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/port"
)

// MemoryCache is the in-process counterpart of the Redis adapter, used
// in tests and when no Redis address is configured.
type MemoryCache struct {
	mu    sync.Mutex
	keys  map[string]bool
	stock map[string]int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		keys:  make(map[string]bool),
		stock: make(map[string]int),
	}
}

var _ port.CacheRepository = (*MemoryCache)(nil)

func (c *MemoryCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.keys[key] {
		return false, nil
	}
	c.keys[key] = true
	return true, nil
}

func (c *MemoryCache) SetStock(ctx context.Context, sellerID, productID int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stock[stockKey(sellerID, productID)] = quantity
	return nil
}

func (c *MemoryCache) DeleteStock(ctx context.Context, sellerID, productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stock, stockKey(sellerID, productID))
	return nil
}

// Stock returns the snapshot for a seller's product, test helper.
func (c *MemoryCache) Stock(sellerID, productID int64) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.stock[stockKey(sellerID, productID)]
	return v, ok
}
