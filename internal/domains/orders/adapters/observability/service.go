package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-sales-order-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-sales-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-sales-order-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and
// metrics. The core service stays free of observability concerns; order
// contents are never logged, only identifiers and counts.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateOrder runs the order-creation workflow with instrumentation.
func (s *Service) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateOrder",
		attribute.String("order.customer_id", input.CustomerID),
		attribute.Int("order.lines.requested", len(input.Lines)),
	)
	defer span.End()

	s.logInfo(ctx, "creating order", slog.String("customer.id", input.CustomerID), slog.Int("lines", len(input.Lines)))
	order, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, rejectionReason(err))
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("customer.id", input.CustomerID))
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	s.metrics.recordCreated(ctx, len(order.Lines))
	s.logInfo(ctx, "order created", slog.String("order.id", order.ID), slog.String("customer.id", order.CustomerID), slog.Int("lines", len(order.Lines)))
	return order, nil
}

// GetByID loads a single order aggregate.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByID", attribute.String("order.id", id))
	defer span.End()

	order, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get order", slog.String("order.id", id))
	}
	return order, nil
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.List")
	defer span.End()

	orders, err := s.inner.List(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	return orders, nil
}

// ListByCustomer returns one customer's orders.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ListByCustomer", attribute.String("order.customer_id", customerID))
	defer span.End()

	orders, err := s.inner.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customer orders", slog.String("customer.id", customerID))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	return orders, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, application.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, application.ErrCustomerNotFound):
		return "customer_not_found"
	case errors.Is(err, application.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, application.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, application.ErrStockConflict):
		return "stock_conflict"
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return "idempotency_conflict"
	default:
		return "internal"
	}
}

type serviceMetrics struct {
	ordersCreated  metric.Int64Counter
	orderLines     metric.Int64Counter
	ordersRejected metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	orderLines, _ := m.Int64Counter("orders.service.lines", metric.WithDescription("Number of order lines written"))
	ordersRejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of order requests rejected"))
	return serviceMetrics{
		ordersCreated:  ordersCreated,
		orderLines:     orderLines,
		ordersRejected: ordersRejected,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, lines int) {
	addCounter(ctx, m.ordersCreated, 1)
	addCounter(ctx, m.orderLines, int64(lines))
}

func (m serviceMetrics) recordRejected(ctx context.Context, reason string) {
	addCounter(ctx, m.ordersRejected, 1, attribute.String("order.rejection.reason", reason))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
