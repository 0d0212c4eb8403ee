package models

import "time"

// VehiclePart binds a part to a vehicle with a scheduled replacement
// interval. The vehicle and part references are weak: deleting either side
// does not cascade here.
type VehiclePart struct {
	ID                     int64      `gorm:"primaryKey;autoIncrement"`
	VehicleID              int64      `gorm:"column:vehicle_id;not null;index"`
	PartID                 int64      `gorm:"column:part_id;not null;index"`
	IsCustom               bool       `gorm:"column:is_custom;not null;default:false"`
	MaintenanceInterval    int64      `gorm:"column:maintenance_interval;not null;default:0"`
	LastMaintenanceDate    *time.Time `gorm:"column:last_maintenance_date"`
	LastMaintenanceMileage *int64     `gorm:"column:last_maintenance_mileage"`
	NextMaintenanceDate    *time.Time `gorm:"column:next_maintenance_date"`
	NextMaintenanceMileage *int64     `gorm:"column:next_maintenance_mileage"`
	CreatedAt              time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
