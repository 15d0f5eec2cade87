//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogpostgres "github.com/Apurer/go-sales-order-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/Apurer/go-sales-order-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-sales-order-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
	"github.com/Apurer/go-sales-order-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-sales-order-api/internal/platform/postgres"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("salesorder_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func mustOrder(t *testing.T, id, customerID string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(id, customerID, []domain.Line{
		{ProductID: "P1", UnitPrice: decimal.RequireFromString("10.50"), Quantity: 3},
		{ProductID: "P2", UnitPrice: decimal.RequireFromString("3.25"), Quantity: 2},
	}, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, err)
	return order
}

func TestRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := mustOrder(t, "O1", "C1")
	saved, err := repo.Save(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, order.ID, saved.ID)

	fetched, err := repo.GetByID(ctx, "O1")
	require.NoError(t, err)
	assert.Equal(t, "C1", fetched.CustomerID)
	require.Len(t, fetched.Lines, 2)
	assert.Equal(t, "P1", fetched.Lines[0].ProductID)
	assert.True(t, fetched.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.50")))
	assert.Equal(t, "P2", fetched.Lines[1].ProductID)

	_, err = repo.GetByID(ctx, "O404")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListByCustomer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	for _, tc := range []struct{ id, customer string }{
		{"O1", "C1"},
		{"O2", "C2"},
		{"O3", "C1"},
	} {
		_, err := repo.Save(ctx, mustOrder(t, tc.id, tc.customer))
		require.NoError(t, err)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := repo.ListByCustomer(ctx, "C1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, order := range mine {
		assert.Equal(t, "C1", order.CustomerID)
	}
}

func TestRepository_TxRollbackDiscardsOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	orderRepo := NewRepository(db)
	catalogRepo := catalogpostgres.NewRepository(db)
	runner := platformpostgres.NewTxRunner(db)
	ctx := context.Background()

	product, err := catalogdomain.NewProduct("P1", "Product P1", nil, decimal.RequireFromString("10.50"), 1)
	require.NoError(t, err)
	_, err = catalogRepo.Save(ctx, product)
	require.NoError(t, err)

	err = runner.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := orderRepo.Save(ctx, mustOrder(t, "O1", "C1")); err != nil {
			return err
		}
		return catalogRepo.DecrementStock(ctx, []catalogports.StockDecrement{{ProductID: "P1", Quantity: 5}})
	})
	require.ErrorIs(t, err, catalogports.ErrStockConflict)

	_, err = orderRepo.GetByID(ctx, "O1")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	fresh, err := catalogRepo.GetByID(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.Stock)
}

func TestIdempotencyStore_SaveAndConflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	store := NewIdempotencyStore(db)
	ctx := context.Background()

	missing, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-a", OrderID: "O1"})
	require.NoError(t, err)
	assert.Equal(t, "O1", saved.OrderID)

	replayed, err := store.Save(ctx, ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-a", OrderID: "O1"})
	require.NoError(t, err)
	assert.Equal(t, "O1", replayed.OrderID)

	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-b", OrderID: "O2"})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	stored, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "hash-a", stored.RequestHash)
}
