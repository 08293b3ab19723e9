package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/ecommerce-api/internal/apperr"
	"github.com/01moynul/ecommerce-api/internal/models"
	"github.com/shopspring/decimal"
)

var errOrderNotFound = apperr.ErrNotFound.With("Order not found", nil)

// placementRow is one cart row as seen by PlaceOrder. The product columns come
// from a LEFT JOIN and are NULL when the product has been deleted.
type placementRow struct {
	productID   int64
	quantity    int
	foundID     sql.NullInt64
	name        sql.NullString
	description sql.NullString
	price       decimal.NullDecimal
}

// PlaceOrder turns the user's cart into an order. Everything happens in one
// serializable transaction:
//
//  1. lock the user row, so two placements for the same user run one after
//     the other and the second sees the cart the first one cleared
//  2. read the cart joined with live product data, locking those rows
//  3. reject an empty cart or one that references a deleted product
//  4. insert the order, one priced snapshot per cart row, and the total
//  5. clear the cart
//
// Any failure rolls back all of it, leaving the cart as it was.
func (s *Store) PlaceOrder(ctx context.Context, username string) (models.OrderDetail, error) {
	var detail models.OrderDetail
	err := s.withTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(tx *sql.Tx) error {
		var userID int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ? FOR UPDATE", username).Scan(&userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.ErrEmptyOrInvalidCart.Wrap(err)
			}
			return fmt.Errorf("lock user: %w", err)
		}

		cart, err := readPlacementRows(ctx, tx, username)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return apperr.ErrEmptyOrInvalidCart
		}

		items := make([]models.OrderItem, 0, len(cart))
		for _, row := range cart {
			if !row.foundID.Valid {
				return apperr.ErrEmptyOrInvalidCart.Wrap(fmt.Errorf("product %d no longer exists", row.productID))
			}
			items = append(items, models.OrderItem{
				ProductID:   row.productID,
				Name:        row.name.String,
				Description: row.description.String,
				UnitPrice:   row.price.Decimal,
				Quantity:    row.quantity,
			})
		}

		// Totals come from the snapshot only, never from the request.
		detail = models.NewOrderDetail(models.Order{Username: username, DatePlaced: s.now()}, items)

		res, err := tx.ExecContext(ctx,
			"INSERT INTO orders (username, date_placed, total) VALUES (?, ?, ?)",
			username, detail.DatePlaced, detail.Total)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if detail.OrderID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("new order id: %w", err)
		}

		for _, item := range detail.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, product_id, name, description, unit_price, quantity)
				VALUES (?, ?, ?, ?, ?, ?)`,
				detail.OrderID, item.ProductID, item.Name, item.Description, item.UnitPrice, item.Quantity)
			if err != nil {
				return fmt.Errorf("insert order item for product %d: %w", item.ProductID, err)
			}
		}

		res, err = tx.ExecContext(ctx, "DELETE FROM cart_items WHERE username = ?", username)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		cleared, err := affected(res)
		if err != nil {
			return err
		}
		if cleared != int64(len(cart)) {
			return fmt.Errorf("clear cart: removed %d rows, read %d", cleared, len(cart))
		}
		return nil
	})
	if err != nil {
		return models.OrderDetail{}, err
	}
	return detail, nil
}

// readPlacementRows reads the whole cart and closes the cursor before
// returning; the driver cannot run the inserts that follow while it is open.
func readPlacementRows(ctx context.Context, tx *sql.Tx, username string) ([]placementRow, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT ci.product_id, ci.quantity, p.id, p.name, p.description, p.price
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.username = ?
		ORDER BY ci.product_id
		FOR UPDATE`, username)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	var cart []placementRow
	for rows.Next() {
		var r placementRow
		if err := rows.Scan(&r.productID, &r.quantity, &r.foundID, &r.name, &r.description, &r.price); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart = append(cart, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart: %w", err)
	}
	return cart, nil
}

// GetOrder returns one of the user's orders with its items. The total is
// derived from the stored items.
func (s *Store) GetOrder(ctx context.Context, username string, orderID int64) (models.OrderDetail, error) {
	var o models.Order
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, date_placed, total FROM orders WHERE id = ? AND username = ?",
		orderID, username).Scan(&o.ID, &o.Username, &o.DatePlaced, &o.Total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OrderDetail{}, errOrderNotFound.Wrap(err)
		}
		return models.OrderDetail{}, fmt.Errorf("get order: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, description, unit_price, quantity
		FROM order_items
		WHERE order_id = ?
		ORDER BY id`, o.ID)
	if err != nil {
		return models.OrderDetail{}, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Description, &item.UnitPrice, &item.Quantity); err != nil {
			return models.OrderDetail{}, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return models.OrderDetail{}, fmt.Errorf("iterate order items: %w", err)
	}

	return models.NewOrderDetail(o, items), nil
}

// ListUserOrders returns the user's order headers, newest first.
func (s *Store) ListUserOrders(ctx context.Context, username string) ([]models.Order, error) {
	return s.listOrders(ctx, `
		SELECT id, username, date_placed, total FROM orders
		WHERE username = ?
		ORDER BY date_placed DESC, id DESC`, username)
}

// ListOrders returns every order header, newest first.
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx, `
		SELECT id, username, date_placed, total FROM orders
		ORDER BY date_placed DESC, id DESC`)
}

func (s *Store) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.Username, &o.DatePlaced, &o.Total); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// DeleteUserOrders removes all of the user's orders and, through the foreign
// key, their items. It reports how many orders were removed; zero is not an
// error.
func (s *Store) DeleteUserOrders(ctx context.Context, username string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE username = ?", username)
	if err != nil {
		return 0, fmt.Errorf("delete orders: %w", err)
	}
	return affected(res)
}

// DeleteOrder removes a single order owned by the user.
func (s *Store) DeleteOrder(ctx context.Context, username string, orderID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ? AND username = ?", orderID, username)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return requireRow(res, errOrderNotFound)
}
