package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/core/domain"
	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/port"
)

const idempotencyKeyPrefix = "order:req:"

// OrderService is the order lifecycle engine: placement, acceptance,
// completion and the buyer/seller read views.
type OrderService struct {
	users     port.UserRepository
	products  port.ProductRepository
	orders    port.OrderRepository
	inventory port.InventoryRepository
	cache     port.CacheRepository
	tx        port.TxManager
	logger    *zap.Logger
}

func NewOrderService(
	users port.UserRepository,
	products port.ProductRepository,
	orders port.OrderRepository,
	inventory port.InventoryRepository,
	cache port.CacheRepository,
	tx port.TxManager,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		users:     users,
		products:  products,
		orders:    orders,
		inventory: inventory,
		cache:     cache,
		tx:        tx,
		logger:    logger,
	}
}

// Place validates and persists a new order with its line items. It
// never touches inventory: sellers discover shortfalls at acceptance.
func (s *OrderService) Place(ctx context.Context, requestID string, buyerID, sellerID int64, totalPrice int, items []domain.LineInput) (int64, error) {
	if len(items) == 0 || totalPrice < 0 {
		return 0, ErrInvalidRequest
	}
	for _, it := range items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return 0, ErrInvalidRequest
		}
	}

	ok, err := s.users.Exists(ctx, buyerID)
	if err != nil {
		return 0, fmt.Errorf("buyer lookup: %w", err)
	}
	if !ok {
		return 0, ErrBuyerNotFound
	}
	ok, err = s.users.Exists(ctx, sellerID)
	if err != nil {
		return 0, fmt.Errorf("seller lookup: %w", err)
	}
	if !ok {
		return 0, ErrSellerNotFound
	}
	for _, it := range items {
		ok, err := s.products.Exists(ctx, it.ProductID)
		if err != nil {
			return 0, fmt.Errorf("product lookup: %w", err)
		}
		if !ok {
			return 0, fmt.Errorf("product %d: %w", it.ProductID, ErrProductNotFound)
		}
	}

	if requestID != "" {
		ok, err := s.cache.SetIdempotency(ctx, idempotencyKeyPrefix+requestID)
		if err != nil {
			return 0, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return 0, ErrDuplicateRequest
		}
	}

	order := &domain.Order{
		BuyerID:    buyerID,
		SellerID:   sellerID,
		TotalPrice: totalPrice,
		Status:     domain.OrderStatusPlaced,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.orders.Create(ctx, order, items)
	})
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	return order.ID, nil
}

// Accept reserves the seller's inventory for every line item and marks
// the order accepted, all inside one transaction. Re-accepting an
// already accepted order is a no-op. The check and the commit are two
// separate phases over locked rows, so a shortfall on any line leaves
// every inventory entry untouched.
func (s *OrderService) Accept(ctx context.Context, orderID int64) error {
	var accepted []domain.LineItem

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status.Accepted() {
			return nil
		}

		items, err := s.orders.LineItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("load line items: %w", err)
		}
		// Lock inventory rows in a stable order so two acceptances
		// touching the same rows cannot deadlock.
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		for _, it := range items {
			entry, err := s.inventory.GetForUpdate(ctx, order.SellerID, it.ProductID)
			if err != nil {
				return fmt.Errorf("load inventory: %w", err)
			}
			if entry == nil {
				return &InconsistentInventoryError{SellerID: order.SellerID, ProductID: it.ProductID}
			}
			if entry.Quantity < it.Quantity {
				return &InsufficientStockError{
					ProductID: it.ProductID,
					Available: entry.Quantity,
					Requested: it.Quantity,
				}
			}
		}

		for _, it := range items {
			ok, err := s.inventory.Decrement(ctx, order.SellerID, it.ProductID, it.Quantity)
			if err != nil {
				return fmt.Errorf("decrement inventory: %w", err)
			}
			if !ok {
				// The row was checked under lock, so a refusal here
				// means the entry changed underneath the transaction.
				return &InconsistentInventoryError{SellerID: order.SellerID, ProductID: it.ProductID}
			}
		}

		if err := s.orders.MarkAccepted(ctx, orderID); err != nil {
			return fmt.Errorf("mark accepted: %w", err)
		}
		accepted = items
		return nil
	})
	if err != nil {
		return err
	}

	// Refresh the advisory stock snapshots outside the transaction.
	s.syncStockSnapshots(ctx, orderID, accepted)
	return nil
}

func (s *OrderService) syncStockSnapshots(ctx context.Context, orderID int64, items []domain.LineItem) {
	if len(items) == 0 {
		return
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil || order == nil {
		return
	}
	for _, it := range items {
		entry, err := s.inventory.Get(ctx, order.SellerID, it.ProductID)
		if err != nil || entry == nil {
			continue
		}
		if err := s.cache.SetStock(ctx, order.SellerID, it.ProductID, entry.Quantity); err != nil {
			s.logger.Warn("stock snapshot sync failed",
				zap.Int64("seller_id", order.SellerID),
				zap.Int64("product_id", it.ProductID),
				zap.Error(err))
		}
	}
}

// Complete moves an accepted order to completed. The declined cases
// (unknown order, never accepted, already completed) are expected
// caller-side races and return false rather than an error.
func (s *OrderService) Complete(ctx context.Context, orderID int64) (bool, error) {
	var done bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.orders.MarkCompleted(ctx, orderID)
		if err != nil {
			return fmt.Errorf("mark completed: %w", err)
		}
		done = ok
		return nil
	})
	if err != nil {
		return false, err
	}
	return done, nil
}

// OrdersForBuyer renders the buyer's orders with the seller's profile
// as counterparty.
func (s *OrderService) OrdersForBuyer(ctx context.Context, buyerID int64) ([]domain.OrderSummary, error) {
	orders, err := s.orders.FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("query buyer orders: %w", err)
	}
	return s.summaries(ctx, orders, func(o domain.Order) int64 { return o.SellerID })
}

// OrdersForSeller renders the seller's orders with the buyer's profile
// as counterparty.
func (s *OrderService) OrdersForSeller(ctx context.Context, sellerID int64) ([]domain.OrderSummary, error) {
	orders, err := s.orders.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("query seller orders: %w", err)
	}
	return s.summaries(ctx, orders, func(o domain.Order) int64 { return o.BuyerID })
}

func (s *OrderService) summaries(ctx context.Context, orders []domain.Order, counterparty func(domain.Order) int64) ([]domain.OrderSummary, error) {
	out := make([]domain.OrderSummary, 0, len(orders))
	for _, o := range orders {
		profile, err := s.users.GetProfile(ctx, counterparty(o))
		if err != nil {
			return nil, fmt.Errorf("load counterparty: %w", err)
		}
		views, err := s.orders.LineItemViews(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("load line views: %w", err)
		}
		summary := domain.OrderSummary{
			OrderID:   o.ID,
			Price:     o.TotalPrice,
			Accepted:  o.Status.Accepted(),
			Completed: o.Status.Completed(),
			Items:     views,
		}
		if profile != nil {
			summary.Counterparty = *profile
		}
		out = append(out, summary)
	}
	return out, nil
}
