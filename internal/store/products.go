package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/ecommerce-api/internal/apperr"
	"github.com/01moynul/ecommerce-api/internal/models"
)

var errProductNotFound = apperr.ErrNotFound.With("Product not found", nil)

const productColumns = "id, name, slug, price, description"

// CreateProduct inserts a validated product and returns it with its new id.
func (s *Store) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	p := in.Product()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO products (name, slug, price, description) VALUES (?, ?, ?, ?)",
		p.Name, p.Slug, p.Price, p.Description)
	if err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return models.Product{}, fmt.Errorf("new product id: %w", err)
	}
	return p, nil
}

// GetProduct loads one product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	return getProduct(ctx, s.db, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
}

// ListProducts returns the whole catalog ordered by id.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.Description); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies a validated patch inside one transaction. Past order
// items keep their own copy of the price and are not touched.
func (s *Store) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	var merged models.Product
	err := s.withTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(tx *sql.Tx) error {
		existing, err := getProduct(ctx, tx, "SELECT "+productColumns+" FROM products WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return err
		}

		merged = patch.ApplyTo(existing)

		_, err = tx.ExecContext(ctx,
			"UPDATE products SET name = ?, slug = ?, price = ?, description = ? WHERE id = ?",
			merged.Name, merged.Slug, merged.Price, merged.Description, merged.ID)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return merged, nil
}

// DeleteProduct removes a product. Cart rows that reference it stay until the
// owner removes them or tries to place an order.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return requireRow(res, errProductNotFound)
}

func getProduct(ctx context.Context, q Querier, query string, id int64) (models.Product, error) {
	var p models.Product
	err := q.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, errProductNotFound.Wrap(err)
		}
		return models.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}
