package ports

import (
	"context"

	ordertypes "github.com/Apurer/go-sales-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
)

// Service defines the order use cases exposed to adapters (inbound/driving port).
type Service interface {
	CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error)
}
