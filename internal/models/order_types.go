package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the model for the 'orders' table. Orders are never modified after
// placement.
type Order struct {
	ID         int64           `json:"id" db:"id"`
	Username   string          `json:"username" db:"username"`
	DatePlaced time.Time       `json:"datePlaced" db:"date_placed"`
	Total      decimal.Decimal `json:"total" db:"total"`
}

// OrderItem is the model for the 'order_items' table: a priced snapshot of a
// product at the time the order was placed.
type OrderItem struct {
	ProductID   int64           `json:"productId" db:"product_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"` // Price at the time of purchase
	Quantity    int             `json:"quantity" db:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal" db:"-"`
}

// OrderDetail is an order header together with its items.
type OrderDetail struct {
	OrderID    int64           `json:"orderId"`
	Username   string          `json:"username"`
	DatePlaced time.Time       `json:"datePlaced"`
	Total      decimal.Decimal `json:"total"`
	Items      []OrderItem     `json:"items"`
}

// NewOrderDetail fills in every line total and derives the order total from
// the items.
func NewOrderDetail(order Order, items []OrderItem) OrderDetail {
	detail := OrderDetail{
		OrderID:    order.ID,
		Username:   order.Username,
		DatePlaced: order.DatePlaced,
		Items:      make([]OrderItem, 0, len(items)),
	}
	detail.Total = decimal.Zero
	for _, item := range items {
		item.LineTotal = LineTotal(item.UnitPrice, item.Quantity)
		detail.Total = detail.Total.Add(item.LineTotal)
		detail.Items = append(detail.Items, item)
	}
	return detail
}

// Header returns the order row for the detail.
func (d OrderDetail) Header() Order {
	return Order{ID: d.OrderID, Username: d.Username, DatePlaced: d.DatePlaced, Total: d.Total}
}
