package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/core/domain"
	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/port"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlTxKey struct{}

// MySQLStore owns the connection pool and the transaction boundary.
// Repositories constructed over it route through the transaction found
// in the context, falling back to the pool.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

var _ port.TxManager = (*MySQLStore)(nil)

func (s *MySQLStore) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

func (s *MySQLStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		// Already inside a transaction, join it.
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, sqlTxKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// MySQLUsers implements UserRepository over the users table.
type MySQLUsers struct{ store *MySQLStore }

func NewMySQLUsers(store *MySQLStore) *MySQLUsers { return &MySQLUsers{store: store} }

var _ port.UserRepository = (*MySQLUsers)(nil)

func (r *MySQLUsers) Exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.store.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE user_id = ?)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query user: %w", err)
	}
	return exists, nil
}

func (r *MySQLUsers) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := r.store.q(ctx).QueryRowContext(ctx, `
		SELECT user_id, username, email, phone_no, hostel_name, room_number, profile_image, location
		FROM users WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.Username, &p.Email, &p.PhoneNo, &p.HostelName,
		&p.RoomNumber, &p.ProfileImage, &p.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

// MySQLProducts implements ProductRepository over the products table.
type MySQLProducts struct{ store *MySQLStore }

func NewMySQLProducts(store *MySQLStore) *MySQLProducts { return &MySQLProducts{store: store} }

var _ port.ProductRepository = (*MySQLProducts)(nil)

func (r *MySQLProducts) Exists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := r.store.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE product_id = ?)`, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query product: %w", err)
	}
	return exists, nil
}

func (r *MySQLProducts) FindAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.store.q(ctx).QueryContext(ctx, `
		SELECT product_id, name, price, description, image_url
		FROM products ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MySQLOrders implements OrderRepository over orders and order_items.
type MySQLOrders struct{ store *MySQLStore }

func NewMySQLOrders(store *MySQLStore) *MySQLOrders { return &MySQLOrders{store: store} }

var _ port.OrderRepository = (*MySQLOrders)(nil)

const orderColumns = `order_id, buyer_id, seller_id, price, status, created_at, updated_at`

func scanOrder(row *sql.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.TotalPrice, &o.Status,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

func (r *MySQLOrders) Create(ctx context.Context, order *domain.Order, items []domain.LineInput) error {
	q := r.store.q(ctx)
	res, err := q.ExecContext(ctx, `
		INSERT INTO orders (buyer_id, seller_id, price, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())`,
		order.BuyerID, order.SellerID, order.TotalPrice, order.Status)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	order.ID = id

	for _, in := range items {
		_, err := q.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES (?, ?, ?)`,
			id, in.ProductID, in.Quantity)
		if err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
	}
	return nil
}

func (r *MySQLOrders) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	row := r.store.q(ctx).QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID)
	return scanOrder(row)
}

func (r *MySQLOrders) GetByIDForUpdate(ctx context.Context, orderID int64) (*domain.Order, error) {
	row := r.store.q(ctx).QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = ? FOR UPDATE`, orderID)
	return scanOrder(row)
}

func (r *MySQLOrders) LineItems(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	rows, err := r.store.q(ctx).QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity
		FROM order_items WHERE order_id = ? ORDER BY product_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	var out []domain.LineItem
	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *MySQLOrders) LineItemViews(ctx context.Context, orderID int64) ([]domain.LineItemView, error) {
	rows, err := r.store.q(ctx).QueryContext(ctx, `
		SELECT p.name, oi.quantity, p.price
		FROM order_items oi
		JOIN products p ON p.product_id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query line views: %w", err)
	}
	defer rows.Close()

	var out []domain.LineItemView
	for rows.Next() {
		var v domain.LineItemView
		if err := rows.Scan(&v.ProductName, &v.Quantity, &v.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan line view: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *MySQLOrders) MarkAccepted(ctx context.Context, orderID int64) error {
	_, err := r.store.q(ctx).ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = NOW() WHERE order_id = ?`,
		domain.OrderStatusAccepted, orderID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (r *MySQLOrders) MarkCompleted(ctx context.Context, orderID int64) (bool, error) {
	res, err := r.store.q(ctx).ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = NOW()
		WHERE order_id = ? AND status = ?`,
		domain.OrderStatusCompleted, orderID, domain.OrderStatusAccepted)
	if err != nil {
		return false, fmt.Errorf("update order: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

func (r *MySQLOrders) FindByBuyer(ctx context.Context, buyerID int64) ([]domain.Order, error) {
	return r.findOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE buyer_id = ? ORDER BY order_id`, buyerID)
}

func (r *MySQLOrders) FindBySeller(ctx context.Context, sellerID int64) ([]domain.Order, error) {
	return r.findOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE seller_id = ? ORDER BY order_id`, sellerID)
}

func (r *MySQLOrders) findOrders(ctx context.Context, query string, arg int64) ([]domain.Order, error) {
	rows, err := r.store.q(ctx).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.TotalPrice, &o.Status,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MySQLInventory implements InventoryRepository over the inventory
// table. Decrement is the conditional-decrement contract: the quantity
// check happens in the UPDATE itself, so it holds under concurrency
// regardless of what an earlier read observed.
type MySQLInventory struct{ store *MySQLStore }

func NewMySQLInventory(store *MySQLStore) *MySQLInventory { return &MySQLInventory{store: store} }

var _ port.InventoryRepository = (*MySQLInventory)(nil)

const inventoryColumns = `id, seller_id, product_id, quantity, listed, created_at, updated_at`

func scanInventory(row *sql.Row) (*domain.InventoryEntry, error) {
	var e domain.InventoryEntry
	err := row.Scan(&e.ID, &e.SellerID, &e.ProductID, &e.Quantity, &e.Listed,
		&e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan inventory: %w", err)
	}
	return &e, nil
}

func (r *MySQLInventory) Get(ctx context.Context, sellerID, productID int64) (*domain.InventoryEntry, error) {
	row := r.store.q(ctx).QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory WHERE seller_id = ? AND product_id = ?`,
		sellerID, productID)
	return scanInventory(row)
}

func (r *MySQLInventory) GetForUpdate(ctx context.Context, sellerID, productID int64) (*domain.InventoryEntry, error) {
	row := r.store.q(ctx).QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory WHERE seller_id = ? AND product_id = ? FOR UPDATE`,
		sellerID, productID)
	return scanInventory(row)
}

func (r *MySQLInventory) Decrement(ctx context.Context, sellerID, productID int64, quantity int) (bool, error) {
	res, err := r.store.q(ctx).ExecContext(ctx, `
		UPDATE inventory
		SET quantity = quantity - ?, updated_at = NOW()
		WHERE seller_id = ? AND product_id = ? AND quantity >= ?`,
		quantity, sellerID, productID, quantity)
	if err != nil {
		return false, fmt.Errorf("update inventory: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

func (r *MySQLInventory) Upsert(ctx context.Context, entry *domain.InventoryEntry) error {
	_, err := r.store.q(ctx).ExecContext(ctx, `
		INSERT INTO inventory (seller_id, product_id, quantity, listed, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE listed = TRUE, updated_at = NOW()`,
		entry.SellerID, entry.ProductID, entry.Quantity, entry.Listed)
	if err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}
	return nil
}

func (r *MySQLInventory) UpdateQuantity(ctx context.Context, sellerID, productID int64, quantity int) (bool, error) {
	res, err := r.store.q(ctx).ExecContext(ctx, `
		UPDATE inventory SET quantity = ?, updated_at = NOW()
		WHERE seller_id = ? AND product_id = ?`,
		quantity, sellerID, productID)
	if err != nil {
		return false, fmt.Errorf("update inventory: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows > 0 {
		return true, nil
	}
	// MySQL reports zero affected rows for a no-change update, so
	// distinguish "absent" from "already at that quantity".
	var exists bool
	err = r.store.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM inventory WHERE seller_id = ? AND product_id = ?)`,
		sellerID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query inventory: %w", err)
	}
	return exists, nil
}

func (r *MySQLInventory) Delete(ctx context.Context, sellerID, productID int64) (bool, error) {
	res, err := r.store.q(ctx).ExecContext(ctx,
		`DELETE FROM inventory WHERE seller_id = ? AND product_id = ?`,
		sellerID, productID)
	if err != nil {
		return false, fmt.Errorf("delete inventory: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

func (r *MySQLInventory) FindListed(ctx context.Context, sellerID int64) ([]domain.SellerListing, error) {
	rows, err := r.store.q(ctx).QueryContext(ctx, `
		SELECT p.product_id, p.name, p.price, p.description, p.image_url, i.quantity
		FROM inventory i
		JOIN products p ON p.product_id = i.product_id
		WHERE i.seller_id = ? AND i.listed = TRUE
		ORDER BY p.product_id`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var out []domain.SellerListing
	for rows.Next() {
		var l domain.SellerListing
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Price, &l.Description, &l.ImageURL, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
