package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

// Maintenance is a service task against a vehicle. CompletedDate is set
// only when the task transitions to completed and is forced null at
// creation regardless of caller input. ApprovalStatus and ApprovedBy are
// meaningful only when IsUnscheduled is true.
type Maintenance struct {
	ID             int64                     `gorm:"primaryKey;autoIncrement"`
	VehicleID      int64                     `gorm:"column:vehicle_id;not null;index"`
	Type           string                    `gorm:"type:text;not null"`
	Description    *string                   `gorm:"type:text"`
	DueDate        time.Time                 `gorm:"column:due_date;not null"`
	Status         enums.MaintenanceStatus   `gorm:"type:text;not null;default:'pending'"`
	Priority       enums.MaintenancePriority `gorm:"type:text;not null;default:'normal'"`
	AssignedTo     *int64                    `gorm:"column:assigned_to"`
	CompletedDate  *time.Time                `gorm:"column:completed_date"`
	Notes          *string                   `gorm:"type:text"`
	PartsUsed      types.PartsUsedList       `gorm:"column:parts_used;type:jsonb;serializer:json"`
	Cost           *decimal.Decimal          `gorm:"type:numeric(12,2)"`
	Bill           *string                   `gorm:"type:text"`
	BillImageURL   *string                   `gorm:"column:bill_image_url;type:text"`
	IsUnscheduled  bool                      `gorm:"column:is_unscheduled;not null;default:false"`
	ApprovalStatus *enums.ApprovalStatus     `gorm:"column:approval_status;type:text"`
	ApprovedBy     *int64                    `gorm:"column:approved_by"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
