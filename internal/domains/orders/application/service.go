package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	catalogdomain "github.com/Apurer/go-sales-order-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-sales-order-api/internal/domains/catalog/ports"
	ordertypes "github.com/Apurer/go-sales-order-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
)

// Service orchestrates the order bounded context use cases. Order creation
// validates the customer and every requested product against catalog
// snapshots, copies the snapshot prices onto the order lines, and commits the
// order write together with the stock decrement in one atomic unit.
type Service struct {
	repo        ports.Repository
	customers   ports.CustomerDirectory
	catalog     ports.ProductCatalog
	atomic      ports.Atomic
	idempotency ports.IdempotencyStore
	now         func() time.Time
	newID       func() string
}

type Option func(*Service)

// WithIdempotencyStore enables replay-safe order creation for requests
// carrying an idempotency key.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides order id generation for deterministic testing.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService wires the order service with its collaborators.
func NewService(repo ports.Repository, customers ports.CustomerDirectory, catalog ports.ProductCatalog, atomic ports.Atomic, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		customers: customers,
		catalog:   catalog,
		atomic:    atomic,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder runs the order-creation workflow. Every validation failure
// aborts the whole operation before any write; the order insert and the
// stock decrement commit or roll back together, so no partial state is ever
// observable.
func (s *Service) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	var requestHash string
	if key != "" && s.idempotency != nil {
		hash, err := FingerprintCreateOrder(input)
		if err != nil {
			return nil, err
		}
		requestHash = hash
		if replayed, err := s.replay(ctx, key, requestHash); replayed != nil || err != nil {
			return replayed, err
		}
	}

	customer, err := s.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, input.CustomerID)
	}

	distinct := distinctProductIDs(input.Lines)
	snapshots, err := s.catalog.FindAllByID(ctx, distinct)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*catalogdomain.Product, len(snapshots))
	for _, snapshot := range snapshots {
		byID[snapshot.ID] = snapshot
	}
	if len(byID) < len(distinct) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, strings.Join(missingIDs(distinct, byID), ", "))
	}

	// Stock is validated against the aggregate requested quantity per product
	// so a request split across duplicate lines cannot pass piecewise.
	requested := aggregateQuantities(input.Lines)
	for _, id := range distinct {
		if !byID[id].HasStock(requested[id]) {
			return nil, fmt.Errorf("%w: product %s has %d, requested %d", ErrInsufficientStock, id, byID[id].Stock, requested[id])
		}
	}

	lines := make([]domain.Line, 0, len(input.Lines))
	for _, line := range input.Lines {
		lines = append(lines, domain.Line{
			ProductID: line.ProductID,
			UnitPrice: byID[line.ProductID].UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	order, err := domain.NewOrder(s.newID(), customer.ID, lines, s.now().UTC())
	if err != nil {
		return nil, mapError(err)
	}

	decrements := make([]catalogports.StockDecrement, 0, len(distinct))
	for _, id := range distinct {
		decrements = append(decrements, catalogports.StockDecrement{ProductID: id, Quantity: requested[id]})
	}

	var saved, replayed *domain.Order
	err = s.atomic.WithinTx(ctx, func(ctx context.Context) error {
		// Re-check the idempotency key inside the atomic unit; a concurrent
		// request with the same key may have committed since the fast path.
		if key != "" && s.idempotency != nil {
			existing, err := s.replay(ctx, key, requestHash)
			if err != nil {
				return err
			}
			if existing != nil {
				replayed = existing
				return nil
			}
		}
		// The decrement runs before the order insert; within one atomic unit
		// the ordering is unobservable and it keeps the in-memory adapters
		// free of partial writes on conflict.
		if err := s.catalog.DecrementStock(ctx, decrements); err != nil {
			return err
		}
		persisted, err := s.repo.Save(ctx, order)
		if err != nil {
			return err
		}
		if key != "" && s.idempotency != nil {
			record := ports.IdempotencyRecord{Key: key, RequestHash: requestHash, OrderID: persisted.ID}
			if _, err := s.idempotency.Save(ctx, record); err != nil {
				return err
			}
		}
		saved = persisted
		return nil
	})
	if err != nil {
		if errors.Is(err, catalogports.ErrStockConflict) {
			return nil, fmt.Errorf("%w: %w", ErrStockConflict, err)
		}
		if errors.Is(err, ports.ErrIdempotencyConflict) && key != "" && s.idempotency != nil {
			// A concurrent request with the same key and payload won the
			// race; the rollback undid this attempt, so hand back the winner.
			if winner, replayErr := s.replay(ctx, key, requestHash); winner != nil && replayErr == nil {
				return winner, nil
			}
		}
		return nil, err
	}
	if replayed != nil {
		return replayed, nil
	}
	return saved, nil
}

// GetByID loads a single order aggregate.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

// ListByCustomer returns the orders placed by one customer.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// replay resolves an idempotency key to its previously created order. A key
// reused with a different payload is a conflict.
func (s *Service) replay(ctx context.Context, key, requestHash string) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != requestHash {
		return nil, fmt.Errorf("%w: key %q was used with a different payload", ports.ErrIdempotencyConflict, key)
	}
	return s.repo.GetByID(ctx, record.OrderID)
}

func validateInput(input ordertypes.CreateOrderInput) error {
	if strings.TrimSpace(input.CustomerID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, domain.ErrEmptyCustomer)
	}
	if len(input.Lines) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, domain.ErrNoLines)
	}
	for _, line := range input.Lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, domain.ErrEmptyProductID)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: %w (product %s)", ErrInvalidRequest, domain.ErrInvalidQuantity, line.ProductID)
		}
	}
	return nil
}

func distinctProductIDs(lines []ordertypes.OrderLineInput) []string {
	seen := make(map[string]struct{}, len(lines))
	distinct := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		distinct = append(distinct, line.ProductID)
	}
	return distinct
}

func aggregateQuantities(lines []ordertypes.OrderLineInput) map[string]int64 {
	requested := make(map[string]int64, len(lines))
	for _, line := range lines {
		requested[line.ProductID] += line.Quantity
	}
	return requested
}

func missingIDs(requested []string, found map[string]*catalogdomain.Product) []string {
	missing := make([]string, 0)
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

var _ ports.Service = (*Service)(nil)
