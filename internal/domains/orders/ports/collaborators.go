package ports

import (
	"context"

	catalogdomain "github.com/Apurer/go-sales-order-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-sales-order-api/internal/domains/catalog/ports"
	customersdomain "github.com/Apurer/go-sales-order-api/internal/domains/customers/domain"
)

// CustomerDirectory is the consumed contract of the customer store. Absence
// is reported with a nil customer and nil error; the workflow decides that it
// is a validation failure.
type CustomerDirectory interface {
	FindByID(ctx context.Context, id string) (*customersdomain.Customer, error)
}

// ProductCatalog is the consumed contract of the product store. FindAllByID
// returns price/stock snapshots for the ids that exist, omitting unknown
// ids. DecrementStock must reject reductions that would drive stock negative
// with catalogports.ErrStockConflict even if the caller validated first.
type ProductCatalog interface {
	FindAllByID(ctx context.Context, ids []string) ([]*catalogdomain.Product, error)
	DecrementStock(ctx context.Context, decrements []catalogports.StockDecrement) error
}

// Atomic runs a function so that all repository writes inside it commit or
// roll back together. Backed by a database transaction in production and a
// serializing lock in memory.
type Atomic interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
