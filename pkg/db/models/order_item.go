package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a line on a purchase order. Price snapshots the part's unit
// price at add time and is never re-read when the part's price changes.
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"column:order_id;not null;index"`
	PartID    int64           `gorm:"column:part_id;not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal returns quantity times the captured unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
