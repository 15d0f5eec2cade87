package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
)

var (
	// ErrInvalidRequest signals an empty or malformed line list.
	ErrInvalidRequest = errors.New("invalid order request")
	// ErrCustomerNotFound signals the customer id did not resolve.
	ErrCustomerNotFound = errors.New("customer does not exist")
	// ErrProductNotFound signals one or more requested product ids did not resolve.
	ErrProductNotFound = errors.New("one or more products do not exist")
	// ErrInsufficientStock signals a requested quantity exceeded the snapshot's available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStockConflict surfaces a concurrent stock update that invalidated the
	// order after its checks passed. The whole order is rolled back; callers
	// may retry.
	ErrStockConflict = errors.New("order aborted by concurrent stock update")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNoLines) ||
		errors.Is(err, domain.ErrEmptyProductID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrEmptyCustomer) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return err
}
