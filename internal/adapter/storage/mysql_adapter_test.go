package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/hostelbites?parseTime=true"
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("MySQL not available: %v", err)
	}
	if err := Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedMySQLUser(t *testing.T, db *sql.DB, username string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO users (username, email) VALUES (?, ?)`,
		username, username+"@hostel.edu")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func seedMySQLProduct(t *testing.T, db *sql.DB, name string, price int) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO products (name, price) VALUES (?, ?)`, name, price)
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func cleanupMySQLUser(t *testing.T, db *sql.DB, userID int64) {
	t.Helper()
	// Orders and inventory cascade from the user row.
	if _, err := db.Exec(`DELETE FROM users WHERE user_id = ?`, userID); err != nil {
		t.Errorf("cleanup user %d: %v", userID, err)
	}
}

func TestMySQLInventory_ConditionalDecrement(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()
	ctx := context.Background()

	sellerID := seedMySQLUser(t, db, "decrement-seller")
	defer cleanupMySQLUser(t, db, sellerID)
	productID := seedMySQLProduct(t, db, "Maggi", 25)

	store := NewMySQLStore(db)
	inv := NewMySQLInventory(store)

	entry := &domain.InventoryEntry{SellerID: sellerID, ProductID: productID, Quantity: 1, Listed: true}
	if err := inv.Upsert(ctx, entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ok, err := inv.UpdateQuantity(ctx, sellerID, productID, 3); err != nil || !ok {
		t.Fatalf("update quantity: ok=%v err=%v", ok, err)
	}

	ok, err := inv.Decrement(ctx, sellerID, productID, 2)
	if err != nil || !ok {
		t.Fatalf("expected decrement to succeed, got ok=%v err=%v", ok, err)
	}
	ok, err = inv.Decrement(ctx, sellerID, productID, 2)
	if err != nil {
		t.Fatalf("decrement errored: %v", err)
	}
	if ok {
		t.Error("decrement below zero must be refused")
	}
	got, err := inv.Get(ctx, sellerID, productID)
	if err != nil || got == nil {
		t.Fatalf("get entry: %v, %v", got, err)
	}
	if got.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", got.Quantity)
	}
}

func TestMySQLInventory_UpsertAndDelete(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()
	ctx := context.Background()

	sellerID := seedMySQLUser(t, db, "upsert-seller")
	defer cleanupMySQLUser(t, db, sellerID)
	productID := seedMySQLProduct(t, db, "Poha", 30)

	store := NewMySQLStore(db)
	inv := NewMySQLInventory(store)

	entry := &domain.InventoryEntry{SellerID: sellerID, ProductID: productID, Quantity: 1, Listed: true}
	if err := inv.Upsert(ctx, entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ok, err := inv.UpdateQuantity(ctx, sellerID, productID, 9); err != nil || !ok {
		t.Fatalf("update quantity: ok=%v err=%v", ok, err)
	}

	// Idempotent: rows==0 when the value does not change, the probe
	// must still report the row as present.
	if ok, err := inv.UpdateQuantity(ctx, sellerID, productID, 9); err != nil || !ok {
		t.Errorf("no-change update: ok=%v err=%v", ok, err)
	}

	// Relisting keeps the quantity.
	relist := &domain.InventoryEntry{SellerID: sellerID, ProductID: productID, Quantity: 1, Listed: true}
	if err := inv.Upsert(ctx, relist); err != nil {
		t.Fatalf("relist: %v", err)
	}
	got, _ := inv.Get(ctx, sellerID, productID)
	if got == nil || got.Quantity != 9 {
		t.Fatalf("relist must keep quantity, got %+v", got)
	}

	if ok, err := inv.Delete(ctx, sellerID, productID); err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if ok, _ := inv.Delete(ctx, sellerID, productID); ok {
		t.Error("repeat delete must report absence")
	}
	if got, _ := inv.Get(ctx, sellerID, productID); got != nil {
		t.Errorf("entry survived deletion: %+v", got)
	}
}

func TestMySQLOrders_LifecycleAndRollback(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()
	ctx := context.Background()

	buyerID := seedMySQLUser(t, db, "lifecycle-buyer")
	defer cleanupMySQLUser(t, db, buyerID)
	sellerID := seedMySQLUser(t, db, "lifecycle-seller")
	defer cleanupMySQLUser(t, db, sellerID)
	productID := seedMySQLProduct(t, db, "Paratha", 40)

	store := NewMySQLStore(db)
	orders := NewMySQLOrders(store)
	inv := NewMySQLInventory(store)

	entry := &domain.InventoryEntry{SellerID: sellerID, ProductID: productID, Quantity: 1, Listed: true}
	if err := inv.Upsert(ctx, entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ok, err := inv.UpdateQuantity(ctx, sellerID, productID, 5); err != nil || !ok {
		t.Fatalf("update quantity: ok=%v err=%v", ok, err)
	}

	order := &domain.Order{BuyerID: buyerID, SellerID: sellerID, TotalPrice: 80, Status: domain.OrderStatusPlaced}
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		return orders.Create(ctx, order, []domain.LineInput{{ProductID: productID, Quantity: 2}})
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID == 0 {
		t.Fatal("create must backfill the order id")
	}

	// A failing transaction leaves the decrement uncommitted.
	boom := errors.New("boom")
	err = store.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := inv.Decrement(ctx, sellerID, productID, 2)
		if err != nil || !ok {
			t.Fatalf("decrement in tx: ok=%v err=%v", ok, err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the injected error, got %v", err)
	}
	got, _ := inv.Get(ctx, sellerID, productID)
	if got == nil || got.Quantity != 5 {
		t.Fatalf("rollback lost: expected quantity 5, got %+v", got)
	}

	// Lifecycle: placed orders refuse completion, accepted ones take it once.
	if ok, _ := orders.MarkCompleted(ctx, order.ID); ok {
		t.Error("placed order must not complete")
	}
	if err := orders.MarkAccepted(ctx, order.ID); err != nil {
		t.Fatalf("mark accepted: %v", err)
	}
	if ok, err := orders.MarkCompleted(ctx, order.ID); err != nil || !ok {
		t.Fatalf("accepted order must complete: ok=%v err=%v", ok, err)
	}
	if ok, _ := orders.MarkCompleted(ctx, order.ID); ok {
		t.Error("completed order must not complete again")
	}

	loaded, err := orders.GetByID(ctx, order.ID)
	if err != nil || loaded == nil {
		t.Fatalf("get order: %v, %v", loaded, err)
	}
	if loaded.Status != domain.OrderStatusCompleted {
		t.Errorf("expected completed, got %s", loaded.Status)
	}

	items, err := orders.LineItems(ctx, order.ID)
	if err != nil {
		t.Fatalf("line items: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != productID || items[0].Quantity != 2 {
		t.Errorf("unexpected line items: %+v", items)
	}
}
