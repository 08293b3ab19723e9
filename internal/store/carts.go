package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/ecommerce-api/internal/apperr"
	"github.com/01moynul/ecommerce-api/internal/models"
)

var (
	errCartNotFound     = apperr.ErrNotFound.With("Cart not found", nil)
	errCartItemNotFound = apperr.ErrNotFound.With("Item not found in cart", nil)
)

// AddCartItem puts a new product into the user's cart. The user and product
// must both exist at the time of the add. Adding a product that is already in
// the cart fails with ErrDuplicateItem and leaves the quantity unchanged.
func (s *Store) AddCartItem(ctx context.Context, username string, productID int64, quantity int) error {
	return s.withTx(ctx, nil, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE username = ?", username).Scan(&one)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errUserNotFound.Wrap(err)
			}
			return fmt.Errorf("check user: %w", err)
		}

		err = tx.QueryRowContext(ctx, "SELECT 1 FROM products WHERE id = ?", productID).Scan(&one)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errProductNotFound.Wrap(err)
			}
			return fmt.Errorf("check product: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO cart_items (username, product_id, quantity) VALUES (?, ?, ?)",
			username, productID, quantity)
		if err != nil {
			switch {
			case isDuplicateEntry(err):
				return apperr.ErrDuplicateItem.Wrap(err)
			case isMissingReference(err):
				// user deleted between the check and the insert
				return errUserNotFound.Wrap(err)
			}
			return fmt.Errorf("insert cart item: %w", err)
		}
		return nil
	})
}

// GetCart returns the user's cart joined with current product data. An empty
// cart and an unknown user both report errCartNotFound.
func (s *Store) GetCart(ctx context.Context, username string) (models.Cart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ci.product_id, p.name, p.description, p.price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.username = ?
		ORDER BY ci.product_id`, username)
	if err != nil {
		return models.Cart{}, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var line models.CartLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Description, &line.Price, &line.Quantity); err != nil {
			return models.Cart{}, fmt.Errorf("scan cart item: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return models.Cart{}, fmt.Errorf("iterate cart: %w", err)
	}

	if len(lines) == 0 {
		return models.Cart{}, errCartNotFound
	}
	return models.NewCart(username, lines), nil
}

// UpdateCartItem sets the quantity of a product already in the cart.
func (s *Store) UpdateCartItem(ctx context.Context, username string, productID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = ? WHERE username = ? AND product_id = ?",
		quantity, username, productID)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return requireRow(res, errCartItemNotFound)
}

// RemoveCartItem deletes one product from the cart.
func (s *Store) RemoveCartItem(ctx context.Context, username string, productID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE username = ? AND product_id = ?",
		username, productID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return requireRow(res, errCartItemNotFound)
}

// ClearCart empties the cart. Clearing an empty cart succeeds.
func (s *Store) ClearCart(ctx context.Context, username string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE username = ?", username); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// requireRow returns notFound when res touched no rows.
func requireRow(res sql.Result, notFound error) error {
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
