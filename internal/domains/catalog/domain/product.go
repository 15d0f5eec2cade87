package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyID       = errors.New("product id is required")
	ErrEmptyName     = errors.New("product name is required")
	ErrNegativePrice = errors.New("unit price must not be negative")
	ErrNegativeStock = errors.New("stock must not be negative")
)

// Product models a priced, stock-tracked catalog entry. A value read from the
// repository is a snapshot of price and stock at lookup time; callers must not
// treat it as a live view.
type Product struct {
	ID        string
	Name      string
	Tags      []string
	UnitPrice decimal.Decimal
	Stock     int64
}

// NewProduct validates and constructs a catalog entry.
func NewProduct(id, name string, tags []string, unitPrice decimal.Decimal, stock int64) (*Product, error) {
	product := &Product{
		ID:        strings.TrimSpace(id),
		Name:      strings.TrimSpace(name),
		Tags:      tags,
		UnitPrice: unitPrice,
		Stock:     stock,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

// Validate enforces invariants on the catalog entry.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// HasStock reports whether the snapshot can cover the requested quantity.
func (p *Product) HasStock(quantity int64) bool {
	return quantity >= 0 && p.Stock >= quantity
}
