package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

// Order is a purchase order for parts. OrderNumber is the human-readable
// year-scoped identifier (PO-<year>-<seq>), distinct from the row id.
// TotalAmount is caller-computed from the items and not maintained
// automatically when items change.
type Order struct {
	ID           int64             `gorm:"primaryKey;autoIncrement"`
	OrderNumber  string            `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	Status       enums.OrderStatus `gorm:"type:text;not null;default:'pending'"`
	CreatedDate  time.Time         `gorm:"column:created_date;not null"`
	OrderedDate  *time.Time        `gorm:"column:ordered_date"`
	ReceivedDate *time.Time        `gorm:"column:received_date"`
	CancelledAt  *time.Time        `gorm:"column:cancelled_at"`
	CreatedBy    int64             `gorm:"column:created_by;not null"`
	Supplier     *string           `gorm:"type:text"`
	TotalAmount  *decimal.Decimal  `gorm:"column:total_amount;type:numeric(12,2)"`
	Notes        *string           `gorm:"type:text"`
	Items        []OrderItem       `gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
