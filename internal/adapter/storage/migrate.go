package storage

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       BIGINT AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(100) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		phone_no      VARCHAR(20)  NOT NULL DEFAULT '',
		hostel_name   VARCHAR(100) NOT NULL DEFAULT '',
		room_number   VARCHAR(20)  NOT NULL DEFAULT '',
		profile_image VARCHAR(255) NOT NULL DEFAULT '',
		location      VARCHAR(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id  BIGINT AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(100) NOT NULL,
		price       INT NOT NULL DEFAULT 0,
		description TEXT,
		image_url   VARCHAR(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id   BIGINT AUTO_INCREMENT PRIMARY KEY,
		buyer_id   BIGINT NOT NULL,
		seller_id  BIGINT NOT NULL,
		price      INT NOT NULL DEFAULT 0,
		status     VARCHAR(20) NOT NULL DEFAULT 'placed',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT fk_orders_buyer  FOREIGN KEY (buyer_id)  REFERENCES users (user_id) ON DELETE CASCADE,
		CONSTRAINT fk_orders_seller FOREIGN KEY (seller_id) REFERENCES users (user_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id   BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity   INT NOT NULL,
		CONSTRAINT fk_items_order   FOREIGN KEY (order_id)   REFERENCES orders (order_id) ON DELETE CASCADE,
		CONSTRAINT fk_items_product FOREIGN KEY (product_id) REFERENCES products (product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		seller_id  BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity   INT NOT NULL DEFAULT 1,
		listed     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_inventory_seller_product (seller_id, product_id),
		CONSTRAINT fk_inventory_seller  FOREIGN KEY (seller_id)  REFERENCES users (user_id) ON DELETE CASCADE,
		CONSTRAINT fk_inventory_product FOREIGN KEY (product_id) REFERENCES products (product_id)
	)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
