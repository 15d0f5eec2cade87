package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-sales-order-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/catalog/ports"
	platformpostgres "github.com/Apurer/go-sales-order-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// productRecord maps the catalog entry to a relational table.
type productRecord struct {
	ID        string          `gorm:"primaryKey;column:id;type:varchar(64)"`
	Name      string          `gorm:"column:name"`
	Tags      pq.StringArray  `gorm:"column:tags;type:text[]"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Stock     int64           `gorm:"column:stock"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Save inserts or updates a product.
func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := toRecord(product)
	if err := r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       record.Name,
				"tags":       record.Tags,
				"unit_price": record.UnitPrice,
				"stock":      record.Stock,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByID fetches a product snapshot by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := r.conn(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// FindAllByID returns snapshots for the ids that exist; unknown ids are omitted.
func (r *Repository) FindAllByID(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var records []productRecord
	if err := r.conn(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

// List returns all products.
func (r *Repository) List(ctx context.Context) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []productRecord
	if err := r.conn(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

// DecrementStock applies each reduction with a guarded UPDATE that re-checks
// current stock at write time. A zero-row update means the product vanished
// or another order consumed the stock first; the error aborts the enclosing
// transaction so no partial reductions survive.
func (r *Repository) DecrementStock(ctx context.Context, decrements []ports.StockDecrement) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	db := r.conn(ctx)
	for _, dec := range decrements {
		result := db.Model(&productRecord{}).
			Where("id = ? AND stock >= ?", dec.ProductID, dec.Quantity).
			Updates(map[string]any{
				"stock":      gorm.Expr("stock - ?", dec.Quantity),
				"updated_at": gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ports.ErrStockConflict, dec.ProductID)
		}
	}
	return nil
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return platformpostgres.DBFromContext(ctx, r.db).WithContext(ctx)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func toRecord(product *domain.Product) productRecord {
	return productRecord{
		ID:        product.ID,
		Name:      product.Name,
		Tags:      pq.StringArray(product.Tags),
		UnitPrice: product.UnitPrice,
		Stock:     product.Stock,
	}
}

func (r productRecord) toDomain() *domain.Product {
	return &domain.Product{
		ID:        r.ID,
		Name:      r.Name,
		Tags:      []string(r.Tags),
		UnitPrice: r.UnitPrice,
		Stock:     r.Stock,
	}
}
