package models

import "github.com/shopspring/decimal"

// CartItem defines the struct for the 'cart_items' table.
// A user holds at most one row per product.
type CartItem struct {
	Username  string `json:"username" db:"username"`
	ProductID int64  `json:"productId" db:"product_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// CartLine is one cart row joined with the live product data.
type CartLine struct {
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// Cart is the response for GET /carts/:username.
type Cart struct {
	Username   string          `json:"username"`
	Items      []CartLine      `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TotalItems int             `json:"totalItems"`
}

// NewCart computes line totals, subtotal and item count for lines.
func NewCart(username string, lines []CartLine) Cart {
	cart := Cart{Username: username, Items: make([]CartLine, 0, len(lines)), Subtotal: decimal.Zero}
	for _, line := range lines {
		line.LineTotal = LineTotal(line.Price, line.Quantity)
		cart.Subtotal = cart.Subtotal.Add(line.LineTotal)
		cart.TotalItems += line.Quantity
		cart.Items = append(cart.Items, line)
	}
	return cart
}
