package models

import (
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// Product is the model for the 'products' table.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Slug        string          `json:"slug" db:"slug"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Description string          `json:"description" db:"description"`
}

// ProductInput is the body of POST /products.
type ProductInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// Normalize trims the name and rounds the price to cents, matching the
// DECIMAL(10,2) column.
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Price = in.Price.Round(2)
}

// Validate requires a name and a positive price. Call Normalize first.
func (in ProductInput) Validate() error {
	if in.Name == "" {
		return ValidationError("name is required")
	}
	if !in.Price.IsPositive() {
		return ValidationError("price must be greater than zero")
	}
	if in.Price.GreaterThan(MaxPrice) {
		return ValidationError("price is too large")
	}
	return nil
}

// Product builds the row to insert.
func (in ProductInput) Product() Product {
	return Product{
		Name:        in.Name,
		Slug:        slug.Make(in.Name),
		Price:       in.Price,
		Description: in.Description,
	}
}

// ProductPatch is the body of PUT /products/:id.
type ProductPatch struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
}

// Normalize trims a supplied name and rounds a supplied price to cents. A
// blank name ends up empty, which counts as not supplied.
func (p *ProductPatch) Normalize() {
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
	}
	if p.Price != nil {
		rounded := p.Price.Round(2)
		p.Price = &rounded
	}
}

// Validate checks only the supplied fields. Only the price has a constraint
// beyond being present.
func (p ProductPatch) Validate() error {
	supplied := 0
	if present(p.Name) {
		supplied++
	}
	if present(p.Description) {
		supplied++
	}
	if p.Price != nil {
		supplied++
		if !p.Price.IsPositive() {
			return ValidationError("price must be greater than zero")
		}
		if p.Price.GreaterThan(MaxPrice) {
			return ValidationError("price is too large")
		}
	}
	if supplied == 0 {
		return ValidationError("no updatable fields supplied")
	}
	return nil
}

// ApplyTo merges the patch over prod and returns the result. The slug follows
// the name.
func (p ProductPatch) ApplyTo(prod Product) Product {
	merged := prod
	if present(p.Name) {
		merged.Name = *p.Name
		merged.Slug = slug.Make(*p.Name)
	}
	if p.Price != nil {
		merged.Price = *p.Price
	}
	if present(p.Description) {
		merged.Description = *p.Description
	}
	return merged
}
