package ports

import (
	"context"

	ordertypes "github.com/Apurer/go-sales-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
)

// WorkflowOrchestrator starts the order-creation flow, either inline or on a
// durable workflow engine.
type WorkflowOrchestrator interface {
	CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error)
}
