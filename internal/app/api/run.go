package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	cataloghttp "github.com/Apurer/go-sales-order-api/internal/domains/catalog/adapters/http"
	catalogmemory "github.com/Apurer/go-sales-order-api/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-sales-order-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-sales-order-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-sales-order-api/internal/domains/catalog/ports"
	customershttp "github.com/Apurer/go-sales-order-api/internal/domains/customers/adapters/http"
	customersmemory "github.com/Apurer/go-sales-order-api/internal/domains/customers/adapters/memory"
	customerspostgres "github.com/Apurer/go-sales-order-api/internal/domains/customers/adapters/persistence/postgres"
	customersapp "github.com/Apurer/go-sales-order-api/internal/domains/customers/application"
	customersports "github.com/Apurer/go-sales-order-api/internal/domains/customers/ports"
	ordershttp "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/http"
	ordersmemory "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-sales-order-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
	"github.com/Apurer/go-sales-order-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-sales-order-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-sales-order-api/internal/platform/postgres"
)

// Run boots the sales-order HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "sales-order-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	stores := buildStores(db, logger)
	customerService := customersapp.NewService(stores.customers)
	catalogService := catalogapp.NewService(stores.products)
	coreOrderService := ordersapp.NewService(
		stores.orders,
		stores.customers,
		stores.products,
		stores.atomic,
		ordersapp.WithIdempotencyStore(stores.idempotency),
	)
	orderService := ordersobs.New(
		coreOrderService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(orderService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running inline order creation", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	v1 := router.Group("/v1")
	customershttp.NewHandler(customerService).Register(v1)
	cataloghttp.NewHandler(catalogService).Register(v1)
	ordershttp.NewHandler(orderService, orderWorkflows).Register(v1)

	addr := ":" + cfg.Port
	logger.Info("sales-order API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("sales-order API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// stores bundles the persistence adapters for all bounded contexts so both
// backends wire the same way. The customer and product repositories double as
// the order workflow's read-side collaborators.
type stores struct {
	customers   customersports.Repository
	products    catalogports.Repository
	orders      ordersports.Repository
	idempotency ordersports.IdempotencyStore
	atomic      ordersports.Atomic
}

func buildStores(db *gorm.DB, logger *slog.Logger) stores {
	if db == nil {
		return stores{
			customers:   customersmemory.NewRepository(),
			products:    catalogmemory.NewRepository(),
			orders:      ordersmemory.NewRepository(),
			idempotency: ordersmemory.NewIdempotencyStore(),
			atomic:      ordersmemory.NewAtomic(),
		}
	}
	logger.Info("repositories configured with postgres")
	return stores{
		customers:   customerspostgres.NewRepository(db),
		products:    catalogpostgres.NewRepository(db),
		orders:      orderspostgres.NewRepository(db),
		idempotency: orderspostgres.NewIdempotencyStore(db),
		atomic:      platformpostgres.NewTxRunner(db),
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
