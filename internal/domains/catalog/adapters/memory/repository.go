package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Apurer/go-sales-order-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory product persistence adapter. A single mutex
// serializes stock decrements so two concurrent orders cannot both consume
// the last unit.
type Repository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewRepository() *Repository {
	return &Repository{products: map[string]*domain.Product{}}
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := cloneProduct(product)
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[clone.ID] = clone
	return cloneProduct(clone), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneProduct(product), nil
}

func (r *Repository) FindAllByID(_ context.Context, ids []string) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshots := make([]*domain.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := r.products[id]; ok {
			snapshots = append(snapshots, cloneProduct(product))
		}
	}
	return snapshots, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		list = append(list, cloneProduct(product))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// DecrementStock re-validates every line against current stock under the
// write lock and applies all reductions, or none.
func (r *Repository) DecrementStock(_ context.Context, decrements []ports.StockDecrement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dec := range decrements {
		product, ok := r.products[dec.ProductID]
		if !ok {
			return fmt.Errorf("%w: %s", ports.ErrNotFound, dec.ProductID)
		}
		if dec.Quantity < 0 || product.Stock < dec.Quantity {
			return fmt.Errorf("%w: %s", ports.ErrStockConflict, dec.ProductID)
		}
	}
	for _, dec := range decrements {
		r.products[dec.ProductID].Stock -= dec.Quantity
	}
	return nil
}

func cloneProduct(product *domain.Product) *domain.Product {
	clone := *product
	clone.Tags = append([]string(nil), product.Tags...)
	return &clone
}
