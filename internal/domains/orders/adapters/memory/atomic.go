package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
)

var _ ports.Atomic = (*Atomic)(nil)

// Atomic serializes order creation with a single lock. Combined with the
// catalog adapter's own decrement guard this upholds the no-oversell
// guarantee for the in-memory stack; real rollback semantics come from the
// PostgreSQL transaction runner.
type Atomic struct {
	mu sync.Mutex
}

func NewAtomic() *Atomic {
	return &Atomic{}
}

func (a *Atomic) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn(ctx)
}
