package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderDetail_ComputesTotals(t *testing.T) {
	order := Order{ID: 11, Username: "TestUser", DatePlaced: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	items := []OrderItem{
		{ProductID: 1, Name: "Test product", UnitPrice: dec("5.99"), Quantity: 2},
		{ProductID: 2, Name: "Test product 2", UnitPrice: dec("2.99"), Quantity: 5},
	}

	detail := NewOrderDetail(order, items)

	assert.Equal(t, int64(11), detail.OrderID)
	assert.Len(t, detail.Items, 2)
	assert.True(t, detail.Items[0].LineTotal.Equal(dec("11.98")))
	assert.True(t, detail.Items[1].LineTotal.Equal(dec("14.95")))
	assert.True(t, detail.Total.Equal(dec("26.93")), "total %s", detail.Total)
	assert.True(t, detail.Header().Total.Equal(dec("26.93")))
}

func TestNewOrderDetail_NoItems(t *testing.T) {
	detail := NewOrderDetail(Order{ID: 1}, nil)

	assert.NotNil(t, detail.Items)
	assert.True(t, detail.Total.IsZero())
}

func TestNewCart_Totals(t *testing.T) {
	cart := NewCart("Test", []CartLine{
		{ProductID: 1, Price: dec("4.99"), Quantity: 1},
		{ProductID: 2, Price: dec("0.10"), Quantity: 3},
	})

	assert.Equal(t, 4, cart.TotalItems)
	assert.True(t, cart.Subtotal.Equal(dec("5.29")))
	assert.True(t, cart.Items[1].LineTotal.Equal(dec("0.3")))
}
