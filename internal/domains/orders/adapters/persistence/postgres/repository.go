package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/go-sales-order-api/internal/domains/orders/domain"
	"github.com/Apurer/go-sales-order-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-sales-order-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. Order rows and their
// line rows are written together; when called inside a TxRunner unit they
// join the surrounding transaction.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID         string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	CustomerID string    `gorm:"column:customer_id;type:varchar(64);index"`
	CreatedAt  time.Time `gorm:"column:created_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID        int64           `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID   string          `gorm:"column:order_id;type:varchar(64);index"`
	Position  int             `gorm:"column:position"`
	ProductID string          `gorm:"column:product_id;type:varchar(64);index"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Quantity  int64           `gorm:"column:quantity"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

// Save inserts an order with its lines.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	db := r.conn(ctx)
	record := orderRecord{ID: order.ID, CustomerID: order.CustomerID, CreatedAt: order.CreatedAt}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	lines := make([]orderLineRecord, 0, len(order.Lines))
	for i, line := range order.Lines {
		lines = append(lines, orderLineRecord{
			OrderID:   order.ID,
			Position:  i,
			ProductID: line.ProductID,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	if err := db.Create(&lines).Error; err != nil {
		return nil, err
	}
	return toDomain(record, lines), nil
}

// GetByID fetches an order with its lines in request order.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := r.conn(ctx)
	var record orderRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.loadLines(db, []string{id})
	if err != nil {
		return nil, err
	}
	return toDomain(record, lines[id]), nil
}

// List returns all orders, oldest first.
func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, nil)
}

// ListByCustomer returns one customer's orders, oldest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	return r.list(ctx, map[string]any{"customer_id": customerID})
}

func (r *Repository) list(ctx context.Context, filter map[string]any) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := r.conn(ctx)
	var records []orderRecord
	query := db.Order("created_at, id")
	if len(filter) > 0 {
		query = query.Where(filter)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*domain.Order{}, nil
	}
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	lines, err := r.loadLines(db, ids)
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for _, record := range records {
		orders = append(orders, toDomain(record, lines[record.ID]))
	}
	return orders, nil
}

func (r *Repository) loadLines(db *gorm.DB, orderIDs []string) (map[string][]orderLineRecord, error) {
	var records []orderLineRecord
	if err := db.Where("order_id IN ?", orderIDs).Order("order_id, position").Find(&records).Error; err != nil {
		return nil, err
	}
	grouped := make(map[string][]orderLineRecord, len(orderIDs))
	for _, record := range records {
		grouped[record.OrderID] = append(grouped[record.OrderID], record)
	}
	return grouped, nil
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return platformpostgres.DBFromContext(ctx, r.db).WithContext(ctx)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toDomain(record orderRecord, lines []orderLineRecord) *domain.Order {
	order := &domain.Order{
		ID:         record.ID,
		CustomerID: record.CustomerID,
		CreatedAt:  record.CreatedAt,
		Lines:      make([]domain.Line, 0, len(lines)),
	}
	for _, line := range lines {
		order.Lines = append(order.Lines, domain.Line{
			ProductID: line.ProductID,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return order
}
