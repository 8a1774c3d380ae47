package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/core/domain"
	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/port"
)

// InventoryService covers the seller-facing inventory management:
// listing products, editing quantities and the catalog views.
type InventoryService struct {
	users     port.UserRepository
	products  port.ProductRepository
	inventory port.InventoryRepository
	cache     port.CacheRepository
	tx        port.TxManager
	logger    *zap.Logger
}

func NewInventoryService(
	users port.UserRepository,
	products port.ProductRepository,
	inventory port.InventoryRepository,
	cache port.CacheRepository,
	tx port.TxManager,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		users:     users,
		products:  products,
		inventory: inventory,
		cache:     cache,
		tx:        tx,
		logger:    logger,
	}
}

// ListProducts puts the given products into the seller's active
// catalog. New entries start with the default quantity; entries that
// were unlisted earlier are re-listed keeping their stock.
func (s *InventoryService) ListProducts(ctx context.Context, sellerID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return ErrInvalidRequest
	}
	ok, err := s.users.Exists(ctx, sellerID)
	if err != nil {
		return fmt.Errorf("seller lookup: %w", err)
	}
	if !ok {
		return ErrSellerNotFound
	}
	for _, productID := range productIDs {
		ok, err := s.products.Exists(ctx, productID)
		if err != nil {
			return fmt.Errorf("product lookup: %w", err)
		}
		if !ok {
			return fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
		}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, productID := range productIDs {
			entry := &domain.InventoryEntry{
				SellerID:  sellerID,
				ProductID: productID,
				Quantity:  domain.DefaultListingQuantity,
				Listed:    true,
			}
			if err := s.inventory.Upsert(ctx, entry); err != nil {
				return fmt.Errorf("list product %d: %w", productID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, productID := range productIDs {
		s.publishSnapshot(ctx, sellerID, productID)
	}
	return nil
}

// UpdateQuantity sets the seller's stock for one product.
func (s *InventoryService) UpdateQuantity(ctx context.Context, sellerID, productID int64, quantity int) error {
	if quantity < 0 {
		return ErrInvalidRequest
	}
	ok, err := s.inventory.UpdateQuantity(ctx, sellerID, productID, quantity)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if !ok {
		return ErrProductNotFound
	}
	if err := s.cache.SetStock(ctx, sellerID, productID, quantity); err != nil {
		s.logger.Warn("stock snapshot sync failed",
			zap.Int64("seller_id", sellerID),
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
	return nil
}

// RemoveProduct deletes the seller's inventory entry for a product.
func (s *InventoryService) RemoveProduct(ctx context.Context, sellerID, productID int64) error {
	ok, err := s.inventory.Delete(ctx, sellerID, productID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if !ok {
		return ErrProductNotFound
	}
	if err := s.cache.DeleteStock(ctx, sellerID, productID); err != nil {
		s.logger.Warn("stock snapshot delete failed",
			zap.Int64("seller_id", sellerID),
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
	return nil
}

// ListedProducts returns the seller's active catalog.
func (s *InventoryService) ListedProducts(ctx context.Context, sellerID int64) ([]domain.SellerListing, error) {
	listings, err := s.inventory.FindListed(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	return listings, nil
}

// UnlistedProducts returns catalog products the seller has not listed,
// rendered with quantity zero.
func (s *InventoryService) UnlistedProducts(ctx context.Context, sellerID int64) ([]domain.SellerListing, error) {
	all, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	listed, err := s.inventory.FindListed(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	have := make(map[int64]bool, len(listed))
	for _, l := range listed {
		have[l.ProductID] = true
	}

	out := make([]domain.SellerListing, 0, len(all))
	for _, p := range all {
		if have[p.ID] {
			continue
		}
		out = append(out, domain.SellerListing{
			ProductID:   p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Quantity:    0,
		})
	}
	return out, nil
}

func (s *InventoryService) publishSnapshot(ctx context.Context, sellerID, productID int64) {
	entry, err := s.inventory.Get(ctx, sellerID, productID)
	if err != nil || entry == nil {
		return
	}
	if err := s.cache.SetStock(ctx, sellerID, productID, entry.Quantity); err != nil {
		s.logger.Warn("stock snapshot sync failed",
			zap.Int64("seller_id", sellerID),
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
}
