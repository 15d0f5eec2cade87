package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-sales-order-api/internal/domains/catalog/domain"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrStockConflict reports a decrement that would drive stock negative.
	// Repositories must enforce this at write time regardless of any prior
	// validation performed by callers.
	ErrStockConflict = errors.New("insufficient stock at decrement time")
)

// StockDecrement is one product's validated quantity reduction.
type StockDecrement struct {
	ProductID string
	Quantity  int64
}

// Repository persists products and owns their stock counters.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// FindAllByID returns snapshots for the ids that exist; unknown ids are
	// omitted and callers detect the mismatch themselves.
	FindAllByID(ctx context.Context, ids []string) ([]*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	// DecrementStock applies all reductions or none. It fails with
	// ErrStockConflict when any product's current stock cannot cover its
	// decrement.
	DecrementStock(ctx context.Context, decrements []StockDecrement) error
}
