package orders

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/go-sales-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-sales-order-api/internal/platform/temporal/activities/orders"
)

const (
	// OrderCreationWorkflowName is the public identifier for registering the workflow.
	OrderCreationWorkflowName = "orders.workflows.Creation"
	// OrderCreationTaskQueue is the queue consumed by the worker processing order workflows.
	OrderCreationTaskQueue = "ORDER_CREATION"
)

// OrderCreationWorkflowInput captures the payload required to place an order.
type OrderCreationWorkflowInput struct {
	Command ordertypes.CreateOrderInput
	TraceID string
}

// OrderCreationWorkflow runs the order placement activity with retries
// limited to infrastructure failures; validation and stock outcomes are
// final and must not be retried by the engine.
func OrderCreationWorkflow(ctx workflow.Context, input OrderCreationWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("OrderCreationWorkflow started", withTraceID(input.TraceID, "customerId", input.Command.CustomerID)...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
			NonRetryableErrorTypes: []string{
				orderactivities.ErrTypeInvalidRequest,
				orderactivities.ErrTypeCustomerNotFound,
				orderactivities.ErrTypeProductNotFound,
				orderactivities.ErrTypeInsufficientStock,
			},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var order domain.Order
	if err := workflow.ExecuteActivity(ctx, orderactivities.PlaceOrderActivityName, input.Command).Get(ctx, &order); err != nil {
		logger.Error("OrderCreationWorkflow failed", withTraceID(input.TraceID, "customerId", input.Command.CustomerID, "error", err)...)
		return nil, err
	}
	logger.Info("OrderCreationWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return &order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
