package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

// Part is an inventory item. SKU is unique. Quantity and MinimumStock are
// non-negative; the low-stock predicate lives on the model so every read
// path computes it the same way.
type Part struct {
	ID                 int64            `gorm:"primaryKey;autoIncrement"`
	Name               string           `gorm:"type:text;not null"`
	SKU                string           `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Description        *string          `gorm:"type:text"`
	Category           string           `gorm:"type:text;not null"`
	Quantity           int              `gorm:"not null;default:0"`
	MinimumStock       int              `gorm:"column:minimum_stock;not null;default:0"`
	Price              decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Supplier           *string          `gorm:"type:text"`
	Location           *string          `gorm:"type:text"`
	CompatibleVehicles types.StringList `gorm:"column:compatible_vehicles;type:jsonb;serializer:json"`
	LastRestocked      *time.Time       `gorm:"column:last_restocked"`
	IsStandard         bool             `gorm:"column:is_standard;not null;default:true"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLowStock reports whether quantity has fallen below the configured
// minimum. A zero minimum disables the check entirely.
func (p Part) IsLowStock() bool {
	return p.MinimumStock > 0 && p.Quantity < p.MinimumStock
}
