package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on startup. Every statement is idempotent.
//
// cart_items.product_id is deliberately not a foreign key: deleting a product
// leaves cart rows behind, and order placement rejects them.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(20) NOT NULL,
		hashed_password VARCHAR(255) NOT NULL,
		fname VARCHAR(50) NULL,
		lname VARCHAR(50) NULL,
		email VARCHAR(200) NULL,
		UNIQUE KEY uq_users_username (username)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		description TEXT NOT NULL,
		CONSTRAINT chk_products_price CHECK (price > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		username VARCHAR(20) NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		PRIMARY KEY (username, product_id),
		CONSTRAINT fk_cart_items_user FOREIGN KEY (username)
			REFERENCES users (username) ON DELETE CASCADE ON UPDATE CASCADE,
		CONSTRAINT chk_cart_items_quantity CHECK (quantity > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(20) NOT NULL,
		date_placed DATETIME(6) NOT NULL,
		total DECIMAL(14,2) NOT NULL,
		KEY idx_orders_username_date (username, date_placed),
		CONSTRAINT fk_orders_user FOREIGN KEY (username)
			REFERENCES users (username) ON DELETE CASCADE ON UPDATE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		unit_price DECIMAL(10,2) NOT NULL,
		quantity INT NOT NULL,
		CONSTRAINT fk_order_items_order FOREIGN KEY (order_id)
			REFERENCES orders (id) ON DELETE CASCADE
	)`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
