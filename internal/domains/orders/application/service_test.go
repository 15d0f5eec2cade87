package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/go-sales-order-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-sales-order-api/internal/domains/catalog/domain"
	customersmemory "github.com/Apurer/go-sales-order-api/internal/domains/customers/adapters/memory"
	customersdomain "github.com/Apurer/go-sales-order-api/internal/domains/customers/domain"
	ordersmemory "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/memory"
	ordertypes "github.com/Apurer/go-sales-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
)

type fixture struct {
	service   *Service
	orders    *ordersmemory.Repository
	customers *customersmemory.Repository
	catalog   *catalogmemory.Repository
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		orders:    ordersmemory.NewRepository(),
		customers: customersmemory.NewRepository(),
		catalog:   catalogmemory.NewRepository(),
	}
	f.service = NewService(f.orders, f.customers, f.catalog, ordersmemory.NewAtomic(), opts...)
	return f
}

func (f *fixture) seedCustomer(t *testing.T, id string) {
	t.Helper()
	customer, err := customersdomain.NewCustomer(id, "Ada Lovelace", "ada@example.com")
	require.NoError(t, err)
	_, err = f.customers.Save(context.Background(), customer)
	require.NoError(t, err)
}

func (f *fixture) seedProduct(t *testing.T, id, price string, stock int64) {
	t.Helper()
	product, err := catalogdomain.NewProduct(id, "Product "+id, []string{"test"}, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	_, err = f.catalog.Save(context.Background(), product)
	require.NoError(t, err)
}

func (f *fixture) stockOf(t *testing.T, id string) int64 {
	t.Helper()
	product, err := f.catalog.GetByID(context.Background(), id)
	require.NoError(t, err)
	return product.Stock
}

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "C1")
	f.seedProduct(t, "P1", "10.50", 5)
	f.seedProduct(t, "P2", "3.25", 10)

	order, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
		CustomerID: "C1",
		Lines: []ordertypes.OrderLineInput{
			{ProductID: "P1", Quantity: 3},
			{ProductID: "P2", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, order)
	require.NotEmpty(t, order.ID)
	require.Equal(t, "C1", order.CustomerID)
	require.False(t, order.CreatedAt.IsZero())

	require.Len(t, order.Lines, 2)
	require.Equal(t, "P1", order.Lines[0].ProductID)
	require.True(t, order.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.50")))
	require.Equal(t, int64(3), order.Lines[0].Quantity)
	require.Equal(t, "P2", order.Lines[1].ProductID)
	require.True(t, order.Lines[1].UnitPrice.Equal(decimal.RequireFromString("3.25")))
	require.True(t, order.Total().Equal(decimal.RequireFromString("38.00")))

	require.Equal(t, int64(2), f.stockOf(t, "P1"))
	require.Equal(t, int64(8), f.stockOf(t, "P2"))

	fetched, err := f.service.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, fetched.ID)
}

func TestCreateOrder_EmptyLines(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "C1")

	_, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{CustomerID: "C1"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreateOrder_NonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "C1")
	f.seedProduct(t, "P1", "10.50", 5)

	for _, quantity := range []int64{0, -1} {
		_, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
			CustomerID: "C1",
			Lines:      []ordertypes.OrderLineInput{{ProductID: "P1", Quantity: quantity}},
		})
		require.ErrorIs(t, err, ErrInvalidRequest)
	}
	require.Equal(t, int64(5), f.stockOf(t, "P1"))
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "P1", "10.50", 5)

	_, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
		CustomerID: "C404",
		Lines:      []ordertypes.OrderLineInput{{ProductID: "P1", Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrCustomerNotFound)
	require.Equal(t, int64(5), f.stockOf(t, "P1"))
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "C1")
	f.seedProduct(t, "P1", "10.50", 5)

	_, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
		CustomerID: "C1",
		Lines: []ordertypes.OrderLineInput{
			{ProductID: "P1", Quantity: 1},
			{ProductID: "P9", Quantity: 1},
		},
	})
	require.ErrorIs(t, err, ErrProductNotFound)
	require.ErrorContains(t, err, "P9")

	require.Equal(t, int64(5), f.stockOf(t, "P1"))
	orders, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "C1")
	f.seedProduct(t, "P1", "10.50", 5)

	_, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
		CustomerID: "C1",
		Lines:      []ordertypes.OrderLineInput{{ProductID: "P1", Quantity: 9}},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	require.Equal(t, int64(5), f.stockOf(t, "P1"))
	orders, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCreateOrder_DuplicateLinesValidatedAgainstAggregateQuantity(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "C1")
	f.seedProduct(t, "P1", "10.50", 5)

	_, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
		CustomerID: "C1",
		Lines: []ordertypes.OrderLineInput{
			{ProductID: "P1", Quantity: 3},
			{ProductID: "P1", Quantity: 3},
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, int64(5), f.stockOf(t, "P1"))

	order, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
		CustomerID: "C1",
		Lines: []ordertypes.OrderLineInput{
			{ProductID: "P1", Quantity: 2},
			{ProductID: "P1", Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	require.Equal(t, int64(2), order.Lines[0].Quantity)
	require.Equal(t, int64(3), order.Lines[1].Quantity)
	require.Equal(t, int64(0), f.stockOf(t, "P1"))
}

func TestCreateOrder_PriceChangeDoesNotRewriteHistory(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "C1")
	f.seedProduct(t, "P1", "10.50", 5)

	order, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
		CustomerID: "C1",
		Lines:      []ordertypes.OrderLineInput{{ProductID: "P1", Quantity: 1}},
	})
	require.NoError(t, err)

	f.seedProduct(t, "P1", "99.99", 4)

	fetched, err := f.service.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, fetched.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.50")))
}

func TestCreateOrder_IdempotentReplay(t *testing.T) {
	f := newFixture(t, WithIdempotencyStore(ordersmemory.NewIdempotencyStore()))
	f.seedCustomer(t, "C1")
	f.seedProduct(t, "P1", "10.50", 5)

	input := ordertypes.CreateOrderInput{
		CustomerID:     "C1",
		Lines:          []ordertypes.OrderLineInput{{ProductID: "P1", Quantity: 2}},
		IdempotencyKey: "key-1",
	}
	first, err := f.service.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	second, err := f.service.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, int64(3), f.stockOf(t, "P1"))

	orders, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestCreateOrder_IdempotencyKeyReusedWithDifferentPayload(t *testing.T) {
	f := newFixture(t, WithIdempotencyStore(ordersmemory.NewIdempotencyStore()))
	f.seedCustomer(t, "C1")
	f.seedProduct(t, "P1", "10.50", 5)

	_, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
		CustomerID:     "C1",
		Lines:          []ordertypes.OrderLineInput{{ProductID: "P1", Quantity: 2}},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)

	_, err = f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
		CustomerID:     "C1",
		Lines:          []ordertypes.OrderLineInput{{ProductID: "P1", Quantity: 3}},
		IdempotencyKey: "key-1",
	})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, int64(3), f.stockOf(t, "P1"))
}

func TestCreateOrder_LastUnitRace(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "C1")
	f.seedProduct(t, "P1", "10.50", 1)

	const attempts = 8
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
				CustomerID: "C1",
				Lines:      []ordertypes.OrderLineInput{{ProductID: "P1", Quantity: 1}},
			})
			results[slot] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		if !isStockExhaustion(err) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, int64(0), f.stockOf(t, "P1"))

	orders, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestListByCustomer(t *testing.T) {
	f := newFixture(t)
	f.seedCustomer(t, "C1")
	f.seedCustomer(t, "C2")
	f.seedProduct(t, "P1", "1.00", 100)

	for i, customerID := range []string{"C1", "C2", "C1"} {
		_, err := f.service.CreateOrder(context.Background(), ordertypes.CreateOrderInput{
			CustomerID: customerID,
			Lines:      []ordertypes.OrderLineInput{{ProductID: "P1", Quantity: int64(i + 1)}},
		})
		require.NoError(t, err)
	}

	mine, err := f.service.ListByCustomer(context.Background(), "C1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, order := range mine {
		require.Equal(t, "C1", order.CustomerID)
	}
}

func isStockExhaustion(err error) bool {
	return errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrStockConflict)
}
