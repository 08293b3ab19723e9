package models

import "github.com/shopspring/decimal"

// MaxPrice is the largest value a DECIMAL(10,2) price column holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// LineTotal is unit price times quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
