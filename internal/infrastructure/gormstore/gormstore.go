package gormstore

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the sqlite database at path and migrates the schema.
// TranslateError is required so unique-index violations surface as
// gorm.ErrDuplicatedKey instead of driver-specific errors.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&orderRow{}, &cartItemRow{}, &productRow{}, &paymentOrderRow{}); err != nil {
		return nil, err
	}
	return db, nil
}

type orderRow struct {
	ID         string `gorm:"primaryKey;size:36"`
	CustomerID string `gorm:"size:36;index"`
	Status     string `gorm:"size:16;not null;index"`
	ReadableID *int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (orderRow) TableName() string { return "orders" }

type cartItemRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	OrderID   string `gorm:"size:36;not null;index"`
	ProductID string `gorm:"size:36;not null"`
	Quantity  int    `gorm:"not null"`
	Details   string `gorm:"size:255"`
	Value     int64  `gorm:"not null"` // cents
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartItemRow) TableName() string { return "cart_items" }

type productRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:128;not null"`
	Description string `gorm:"size:255"`
	Price       int64  `gorm:"not null"` // cents
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productRow) TableName() string { return "products" }

type paymentOrderRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	OrderID   string `gorm:"size:36;uniqueIndex;not null"`
	Status    string `gorm:"size:16;not null;index"`
	Amount    int64  `gorm:"not null"` // cents
	QRData    string `gorm:"type:text"`
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (paymentOrderRow) TableName() string { return "payment_orders" }
