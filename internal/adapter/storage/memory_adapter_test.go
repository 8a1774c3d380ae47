package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/core/domain"
)

func seedEntry(t *testing.T, inv *MemoryInventory, sellerID, productID int64, quantity int) {
	t.Helper()
	ctx := context.Background()
	entry := &domain.InventoryEntry{SellerID: sellerID, ProductID: productID, Quantity: quantity, Listed: true}
	if err := inv.Upsert(ctx, entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := inv.UpdateQuantity(ctx, sellerID, productID, quantity); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
}

func TestMemoryInventory_ConditionalDecrement(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	inv := NewMemoryInventory(store)
	seedEntry(t, inv, 1, 10, 3)

	ok, err := inv.Decrement(ctx, 1, 10, 2)
	if err != nil || !ok {
		t.Fatalf("expected decrement to succeed, got ok=%v err=%v", ok, err)
	}
	ok, err = inv.Decrement(ctx, 1, 10, 2)
	if err != nil {
		t.Fatalf("decrement errored: %v", err)
	}
	if ok {
		t.Error("decrement below zero must be refused")
	}
	entry, _ := inv.Get(ctx, 1, 10)
	if entry == nil || entry.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %+v", entry)
	}

	// Missing entry refuses too.
	ok, err = inv.Decrement(ctx, 1, 99, 1)
	if err != nil || ok {
		t.Errorf("missing entry: expected refusal, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryInventory_UpsertRelists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	inv := NewMemoryInventory(store)
	seedEntry(t, inv, 1, 10, 8)

	relist := &domain.InventoryEntry{SellerID: 1, ProductID: 10, Quantity: domain.DefaultListingQuantity, Listed: true}
	if err := inv.Upsert(ctx, relist); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	entry, _ := inv.Get(ctx, 1, 10)
	if entry == nil || entry.Quantity != 8 || !entry.Listed {
		t.Errorf("relist must keep quantity, got %+v", entry)
	}
}

func TestMemoryOrders_MarkCompletedGating(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := NewMemoryOrders(store)

	order := &domain.Order{BuyerID: 1, SellerID: 2, TotalPrice: 60, Status: domain.OrderStatusPlaced}
	if err := orders.Create(ctx, order, []domain.LineInput{{ProductID: 10, Quantity: 1}}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if ok, _ := orders.MarkCompleted(ctx, order.ID); ok {
		t.Error("placed order must not complete")
	}
	if ok, _ := orders.MarkCompleted(ctx, 999); ok {
		t.Error("unknown order must not complete")
	}

	if err := orders.MarkAccepted(ctx, order.ID); err != nil {
		t.Fatalf("mark accepted: %v", err)
	}
	if ok, _ := orders.MarkCompleted(ctx, order.ID); !ok {
		t.Error("accepted order must complete")
	}
	if ok, _ := orders.MarkCompleted(ctx, order.ID); ok {
		t.Error("completed order must not complete again")
	}
}

func TestMemoryStore_WithinTxSerializes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	inv := NewMemoryInventory(store)
	seedEntry(t, inv, 1, 10, 100)

	// 100 transactional decrements of 1 from 100 workers; every one
	// reads then writes, so lost updates would show up as leftovers.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(ctx, func(ctx context.Context) error {
				entry, err := inv.GetForUpdate(ctx, 1, 10)
				if err != nil || entry == nil {
					t.Errorf("load entry: %v, %v", entry, err)
					return err
				}
				_, err = inv.Decrement(ctx, 1, 10, 1)
				return err
			})
			if err != nil {
				t.Errorf("tx failed: %v", err)
			}
		}()
	}
	wg.Wait()

	entry, _ := inv.Get(ctx, 1, 10)
	if entry == nil || entry.Quantity != 0 {
		t.Fatalf("expected quantity 0, got %+v", entry)
	}
}

func TestMemoryCache_Idempotency(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	ok, err := cache.SetIdempotency(ctx, "order:req:abc")
	if err != nil || !ok {
		t.Fatalf("first set: ok=%v err=%v", ok, err)
	}
	ok, err = cache.SetIdempotency(ctx, "order:req:abc")
	if err != nil {
		t.Fatalf("second set errored: %v", err)
	}
	if ok {
		t.Error("second set of the same key must be refused")
	}
	if ok, _ := cache.SetIdempotency(ctx, "order:req:xyz"); !ok {
		t.Error("distinct key must be accepted")
	}
}

func TestMemoryCache_Stock(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	if err := cache.SetStock(ctx, 1, 10, 5); err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if got, ok := cache.Stock(1, 10); !ok || got != 5 {
		t.Errorf("expected 5, got %d (present=%v)", got, ok)
	}
	if err := cache.DeleteStock(ctx, 1, 10); err != nil {
		t.Fatalf("delete stock: %v", err)
	}
	if _, ok := cache.Stock(1, 10); ok {
		t.Error("stock survived deletion")
	}
}
