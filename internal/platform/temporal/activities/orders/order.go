package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-sales-order-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-sales-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
)

const (
	// PlaceOrderActivityName runs the order-creation workflow against the catalog and order stores.
	PlaceOrderActivityName = "orders.activities.PlaceOrder"
)

// Application error types surfaced to the workflow so it can skip retries on
// outcomes that re-running cannot change.
const (
	ErrTypeInvalidRequest    = "InvalidRequest"
	ErrTypeCustomerNotFound  = "CustomerNotFound"
	ErrTypeProductNotFound   = "ProductNotFound"
	ErrTypeInsufficientStock = "InsufficientStock"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder creates an order and returns the persisted aggregate.
func (a *Activities) PlaceOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("place order activity not initialized", "customerId", input.CustomerID)
		return nil, errors.New("place order activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "customerId", input.CustomerID, "lines", len(input.Lines))
	order, err := a.service.CreateOrder(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "customerId", input.CustomerID, "error", err)
		return nil, classify(err)
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID)
	return order, nil
}

// classify marks terminal business outcomes as non-retryable application
// errors; everything else keeps default retry behavior. Stock conflicts stay
// retryable: a retry re-reads fresh snapshots and may legitimately succeed
// or settle on InsufficientStock.
func classify(err error) error {
	switch {
	case errors.Is(err, application.ErrInvalidRequest):
		return temporal.NewApplicationError(err.Error(), ErrTypeInvalidRequest)
	case errors.Is(err, application.ErrCustomerNotFound):
		return temporal.NewApplicationError(err.Error(), ErrTypeCustomerNotFound)
	case errors.Is(err, application.ErrProductNotFound):
		return temporal.NewApplicationError(err.Error(), ErrTypeProductNotFound)
	case errors.Is(err, application.ErrInsufficientStock):
		return temporal.NewApplicationError(err.Error(), ErrTypeInsufficientStock)
	default:
		return err
	}
}
