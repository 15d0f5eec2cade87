package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyOrderID    = errors.New("order id is required")
	ErrEmptyCustomer   = errors.New("customer id is required")
	ErrNoLines         = errors.New("order must contain at least one line")
	ErrEmptyProductID  = errors.New("line product id is required")
	ErrInvalidQuantity = errors.New("line quantity must be greater than zero")
	ErrNegativePrice   = errors.New("line unit price must not be negative")
)

// Line is one priced, quantified product entry within an order. The unit
// price is copied from the catalog snapshot at creation time and never
// re-read, so later catalog price changes do not alter historical orders.
type Line struct {
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Order models the sales order aggregate. Lines keep the input order of the
// request; duplicate product ids stay distinct lines. The aggregate is
// created once and never mutated afterwards.
type Order struct {
	ID         string
	CustomerID string
	Lines      []Line
	CreatedAt  time.Time
}

// NewOrder validates and constructs a new Order aggregate.
func NewOrder(id, customerID string, lines []Line, createdAt time.Time) (*Order, error) {
	order := &Order{
		ID:         strings.TrimSpace(id),
		CustomerID: strings.TrimSpace(customerID),
		Lines:      append([]Line(nil), lines...),
		CreatedAt:  createdAt,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.ID == "" {
		return ErrEmptyOrderID
	}
	if o.CustomerID == "" {
		return ErrEmptyCustomer
	}
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	for _, line := range o.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate enforces invariants on a single line.
func (l Line) Validate() error {
	if strings.TrimSpace(l.ProductID) == "" {
		return ErrEmptyProductID
	}
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if l.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// Total sums unit price times quantity across all lines.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)))
	}
	return total
}
