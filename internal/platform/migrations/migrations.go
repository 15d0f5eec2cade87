package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&customerRecord{},
		&productRecord{},
		&orderRecord{},
		&orderLineRecord{},
		&idempotencyRecord{},
	)
}

// Customer schema mirrors the customers Postgres adapter.
type customerRecord struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (customerRecord) TableName() string { return "customers" }

// Product schema mirrors the catalog Postgres adapter.
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

// Order schema mirrors the orders Postgres adapter.
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

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;type:varchar(128)"`
	RequestHash string    `gorm:"column:request_hash;type:varchar(64)"`
	OrderID     string    `gorm:"column:order_id;type:varchar(64)"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
