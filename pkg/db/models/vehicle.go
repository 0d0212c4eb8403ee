package models

import (
	"time"

	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

// Vehicle is a managed fleet asset. VIN and QRCode are unique across the
// fleet; QRCode is generated at creation when the caller does not supply one.
type Vehicle struct {
	ID                     int64               `gorm:"primaryKey;autoIncrement"`
	Name                   string              `gorm:"type:text;not null"`
	Type                   enums.VehicleType   `gorm:"type:text;not null"`
	VIN                    string              `gorm:"column:vin;type:text;not null;uniqueIndex"`
	LicensePlate           *string             `gorm:"column:license_plate;type:text"`
	Make                   string              `gorm:"type:text;not null"`
	Model                  string              `gorm:"type:text;not null"`
	Year                   int                 `gorm:"not null"`
	Mileage                int64               `gorm:"not null;default:0"`
	AssignedTo             *int64              `gorm:"column:assigned_to"`
	Status                 enums.VehicleStatus `gorm:"type:text;not null;default:'active'"`
	NextMaintenanceDate    *time.Time          `gorm:"column:next_maintenance_date"`
	NextMaintenanceMileage *int64              `gorm:"column:next_maintenance_mileage"`
	QRCode                 string              `gorm:"column:qr_code;type:text;not null;uniqueIndex"`
	CreatedAt              time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
