package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-sales-order-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-sales-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
	sharederrors "github.com/Apurer/go-sales-order-api/internal/shared/errors"
)

// IdempotencyKeyHeader carries the client-supplied key for replay-safe creation.
const IdempotencyKeyHeader = "Idempotency-Key"

// Handler exposes the order use cases over HTTP. Creation goes through the
// workflow orchestrator so the transport does not care whether Temporal is
// in play; reads go straight to the service.
type Handler struct {
	service   ports.Service
	workflows ports.WorkflowOrchestrator
	responder *sharederrors.Responder
}

func NewHandler(service ports.Service, workflows ports.WorkflowOrchestrator) *Handler {
	return &Handler{
		service:   service,
		workflows: workflows,
		responder: sharederrors.NewResponder("", MapOrderError),
	}
}

// Register mounts the order routes on the given group.
func (h *Handler) Register(group *gin.RouterGroup) {
	group.POST("/orders", h.CreateOrder)
	group.GET("/orders", h.ListOrders)
	group.GET("/orders/:id", h.GetOrder)
}

// Post /v1/orders
// Place an order
func (h *Handler) CreateOrder(c *gin.Context) {
	var payload CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	input := toCreateInput(payload)
	input.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	order, err := h.workflows.CreateOrder(c.Request.Context(), input)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, FromDomainOrder(order))
}

// Get /v1/orders/:id
// Fetch an order by id
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, FromDomainOrder(order))
}

// Get /v1/orders?customerId=...
// List orders, optionally filtered by customer
func (h *Handler) ListOrders(c *gin.Context) {
	var (
		orders []*domain.Order
		err    error
	)
	if customerID := c.Query("customerId"); customerID != "" {
		orders, err = h.service.ListByCustomer(c.Request.Context(), customerID)
	} else {
		orders, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, FromDomainOrders(orders))
}

func toCreateInput(payload CreateOrderRequest) ordertypes.CreateOrderInput {
	input := ordertypes.CreateOrderInput{
		CustomerID: payload.CustomerID,
		Lines:      make([]ordertypes.OrderLineInput, 0, len(payload.Lines)),
	}
	for _, line := range payload.Lines {
		input.Lines = append(input.Lines, ordertypes.OrderLineInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return input
}

// MapOrderError translates the order error taxonomy into RFC 7807 problems.
// Status hints: not-found conditions map to 404, business-rule violations to
// 400, and concurrent stock contention to 409 so callers know a retry may
// succeed.
func MapOrderError(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrCustomerNotFound):
		return sharederrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "customer"), true
	case errors.Is(err, application.ErrProductNotFound):
		return sharederrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "product"), true
	case errors.Is(err, ports.ErrNotFound):
		return sharederrors.NewNotFoundProblem("order", ""), true
	case errors.Is(err, application.ErrInvalidRequest):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrInsufficientStock):
		return sharederrors.ErrBadRequest.WithDetail(err.Error()).WithExtension("reason", "insufficient-stock"), true
	case errors.Is(err, application.ErrStockConflict):
		return sharederrors.NewConflictProblem("product-stock", err.Error()).WithExtension("retryable", true), true
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return sharederrors.NewConflictProblem("idempotency-key", err.Error()), true
	default:
		return sharederrors.ProblemDetail{}, false
	}
}
