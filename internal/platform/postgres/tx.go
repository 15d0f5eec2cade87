package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type txContextKey struct{}

// TxRunner executes a function inside a single database transaction. The
// transaction handle travels in the context so that repositories sharing the
// same *gorm.DB participate in the same transaction without knowing about
// each other.
type TxRunner struct {
	db *gorm.DB
}

// NewTxRunner wires a transaction runner over the shared connection.
func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// WithinTx runs fn inside a transaction. Any error returned by fn rolls the
// whole transaction back, including writes performed by other repositories
// within the same call.
func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil || r.db == nil {
		return errors.New("postgres transaction runner not configured")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// DBFromContext returns the transaction handle stored by WithinTx, or the
// fallback connection when the call is not transactional.
func DBFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback
}
