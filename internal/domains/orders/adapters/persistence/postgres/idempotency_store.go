package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-sales-order-api/internal/platform/postgres"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists idempotency keys in PostgreSQL.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;type:varchar(128)"`
	RequestHash string    `gorm:"column:request_hash;type:varchar(64)"`
	OrderID     string    `gorm:"column:order_id;type:varchar(64)"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

// Get returns the stored record for the key, or nil when unknown.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := s.conn(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toPort(), nil
}

// Save inserts the record if the key is free. When the key is taken the
// stored record is returned; a stored record pointing at a different
// request or order additionally yields ErrIdempotencyConflict, which lets a
// concurrent creation attempt roll back and replay the winner.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	db := s.conn(ctx)
	row := idempotencyRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return nil, err
	}
	var stored idempotencyRecord
	if err := db.First(&stored, "key = ?", record.Key).Error; err != nil {
		return nil, err
	}
	if stored.RequestHash != record.RequestHash || stored.OrderID != record.OrderID {
		return stored.toPort(), fmt.Errorf("%w: key %q", ports.ErrIdempotencyConflict, record.Key)
	}
	return stored.toPort(), nil
}

func (s *IdempotencyStore) conn(ctx context.Context) *gorm.DB {
	return platformpostgres.DBFromContext(ctx, s.db).WithContext(ctx)
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}

func (r idempotencyRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         r.Key,
		RequestHash: r.RequestHash,
		OrderID:     r.OrderID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
