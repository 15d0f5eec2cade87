package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-sales-order-api/internal/domains/customers/domain"
)

var ErrNotFound = errors.New("customer not found")

// Repository persists customers and resolves identifiers.
type Repository interface {
	Save(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	// FindByID resolves a customer or reports absence with a nil customer and
	// nil error; callers decide whether absence is a failure.
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Customer, error)
}
