package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"gorm.io/gorm"

	catalogmemory "github.com/Apurer/go-sales-order-api/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-sales-order-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/Apurer/go-sales-order-api/internal/domains/catalog/ports"
	customersmemory "github.com/Apurer/go-sales-order-api/internal/domains/customers/adapters/memory"
	customerspostgres "github.com/Apurer/go-sales-order-api/internal/domains/customers/adapters/persistence/postgres"
	customersports "github.com/Apurer/go-sales-order-api/internal/domains/customers/ports"
	ordersmemory "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/go-sales-order-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
	"github.com/Apurer/go-sales-order-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-sales-order-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-sales-order-api/internal/platform/postgres"
	orderactivities "github.com/Apurer/go-sales-order-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-sales-order-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "sales-order-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
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
			logger.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	orderService := buildOrderService(db, logger, instruments)
	orderActivities := orderactivities.NewActivities(orderService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderCreationWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderCreationWorkflowName})
	w.RegisterActivityWithOptions(orderActivities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderCreationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildOrderService(db *gorm.DB, logger *slog.Logger, instruments *platformobservability.Instruments) ordersports.Service {
	var (
		customerRepo     customersports.Repository
		productRepo      catalogports.Repository
		orderRepo        ordersports.Repository
		idempotencyStore ordersports.IdempotencyStore
		atomic           ordersports.Atomic
	)
	if db == nil {
		customerRepo = customersmemory.NewRepository()
		productRepo = catalogmemory.NewRepository()
		orderRepo = ordersmemory.NewRepository()
		idempotencyStore = ordersmemory.NewIdempotencyStore()
		atomic = ordersmemory.NewAtomic()
	} else {
		logger.Info("worker repositories configured with postgres")
		customerRepo = customerspostgres.NewRepository(db)
		productRepo = catalogpostgres.NewRepository(db)
		orderRepo = orderspostgres.NewRepository(db)
		idempotencyStore = orderspostgres.NewIdempotencyStore(db)
		atomic = platformpostgres.NewTxRunner(db)
	}
	core := ordersapp.NewService(orderRepo, customerRepo, productRepo, atomic, ordersapp.WithIdempotencyStore(idempotencyStore))
	return ordersobs.New(
		core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
