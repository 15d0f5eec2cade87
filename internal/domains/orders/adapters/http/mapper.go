package http

import (
	"time"

	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
)

// CreateOrderRequest is the transport shape of an order placement.
type CreateOrderRequest struct {
	CustomerID string             `json:"customerId" binding:"required"`
	Lines      []OrderLineRequest `json:"lines" binding:"required"`
}

// OrderLineRequest is one requested product/quantity pair.
type OrderLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// Order is the transport representation of a persisted order.
type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customerId"`
	Lines      []OrderLine `json:"lines"`
	Total      string      `json:"total"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// OrderLine carries the snapshotted unit price alongside the quantity.
type OrderLine struct {
	ProductID string `json:"productId"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int64  `json:"quantity"`
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	lines := make([]OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLine{
			ProductID: line.ProductID,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Quantity:  line.Quantity,
		})
	}
	return Order{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Lines:      lines,
		Total:      order.Total().StringFixed(2),
		CreatedAt:  order.CreatedAt,
	}
}

// FromDomainOrders converts a list of domain orders.
func FromDomainOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}
