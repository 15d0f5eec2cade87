// Package types holds the transport-agnostic command shapes of the orders context.
package types

// OrderLineInput is one requested product/quantity pair. Input only; the
// persisted line additionally carries the price snapshotted at creation.
type OrderLineInput struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// CreateOrderInput carries everything needed to place an order. The optional
// IdempotencyKey makes retries replay-safe and is excluded from the request
// fingerprint.
type CreateOrderInput struct {
	CustomerID     string           `json:"customerId"`
	Lines          []OrderLineInput `json:"lines"`
	IdempotencyKey string           `json:"-"`
}
