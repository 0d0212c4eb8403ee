package vehicles

import (
	"time"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

// VehicleDTO is the transport shape for a fleet vehicle.
type VehicleDTO struct {
	ID                     int64               `json:"id"`
	Name                   string              `json:"name"`
	Type                   enums.VehicleType   `json:"type"`
	VIN                    string              `json:"vin"`
	LicensePlate           *string             `json:"license_plate,omitempty"`
	Make                   string              `json:"make"`
	Model                  string              `json:"model"`
	Year                   int                 `json:"year"`
	Mileage                int64               `json:"mileage"`
	AssignedTo             *int64              `json:"assigned_to,omitempty"`
	Status                 enums.VehicleStatus `json:"status"`
	NextMaintenanceDate    *time.Time          `json:"next_maintenance_date,omitempty"`
	NextMaintenanceMileage *int64              `json:"next_maintenance_mileage,omitempty"`
	QRCode                 string              `json:"qr_code"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

// CreateVehicleDTO holds the data required by the repo to persist a vehicle.
type CreateVehicleDTO struct {
	Name                   string
	Type                   enums.VehicleType
	VIN                    string
	LicensePlate           *string
	Make                   string
	Model                  string
	Year                   int
	Mileage                int64
	AssignedTo             *int64
	Status                 enums.VehicleStatus
	NextMaintenanceDate    *time.Time
	NextMaintenanceMileage *int64
	QRCode                 string
}

// UpdateVehicleDTO carries the explicit set of mutable fields. Nil means
// leave the column untouched. AssignedTo uses a double pointer so callers
// can distinguish "no change" from "unassign".
type UpdateVehicleDTO struct {
	Name                   *string
	Type                   *enums.VehicleType
	LicensePlate           *string
	Make                   *string
	Model                  *string
	Year                   *int
	Mileage                *int64
	AssignedTo             **int64
	Status                 *enums.VehicleStatus
	NextMaintenanceDate    *time.Time
	NextMaintenanceMileage *int64
}

func FromModel(v *models.Vehicle) *VehicleDTO {
	if v == nil {
		return nil
	}
	return &VehicleDTO{
		ID:                     v.ID,
		Name:                   v.Name,
		Type:                   v.Type,
		VIN:                    v.VIN,
		LicensePlate:           v.LicensePlate,
		Make:                   v.Make,
		Model:                  v.Model,
		Year:                   v.Year,
		Mileage:                v.Mileage,
		AssignedTo:             v.AssignedTo,
		Status:                 v.Status,
		NextMaintenanceDate:    v.NextMaintenanceDate,
		NextMaintenanceMileage: v.NextMaintenanceMileage,
		QRCode:                 v.QRCode,
		CreatedAt:              v.CreatedAt,
		UpdatedAt:              v.UpdatedAt,
	}
}

func FromModels(rows []models.Vehicle) []VehicleDTO {
	out := make([]VehicleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (c CreateVehicleDTO) ToModel() *models.Vehicle {
	status := c.Status
	if status == "" {
		status = enums.VehicleStatusActive
	}
	return &models.Vehicle{
		Name:                   c.Name,
		Type:                   c.Type,
		VIN:                    c.VIN,
		LicensePlate:           c.LicensePlate,
		Make:                   c.Make,
		Model:                  c.Model,
		Year:                   c.Year,
		Mileage:                c.Mileage,
		AssignedTo:             c.AssignedTo,
		Status:                 status,
		NextMaintenanceDate:    c.NextMaintenanceDate,
		NextMaintenanceMileage: c.NextMaintenanceMileage,
		QRCode:                 c.QRCode,
	}
}

func (u UpdateVehicleDTO) changes() map[string]any {
	changes := map[string]any{}
	if u.Name != nil {
		changes["name"] = *u.Name
	}
	if u.Type != nil {
		changes["type"] = *u.Type
	}
	if u.LicensePlate != nil {
		changes["license_plate"] = *u.LicensePlate
	}
	if u.Make != nil {
		changes["make"] = *u.Make
	}
	if u.Model != nil {
		changes["model"] = *u.Model
	}
	if u.Year != nil {
		changes["year"] = *u.Year
	}
	if u.Mileage != nil {
		changes["mileage"] = *u.Mileage
	}
	if u.AssignedTo != nil {
		changes["assigned_to"] = *u.AssignedTo
	}
	if u.Status != nil {
		changes["status"] = *u.Status
	}
	if u.NextMaintenanceDate != nil {
		changes["next_maintenance_date"] = *u.NextMaintenanceDate
	}
	if u.NextMaintenanceMileage != nil {
		changes["next_maintenance_mileage"] = *u.NextMaintenanceMileage
	}
	return changes
}

// VehiclePartDTO is the transport shape for a part binding on a vehicle.
type VehiclePartDTO struct {
	ID                     int64      `json:"id"`
	VehicleID              int64      `json:"vehicle_id"`
	PartID                 int64      `json:"part_id"`
	IsCustom               bool       `json:"is_custom"`
	MaintenanceInterval    int64      `json:"maintenance_interval"`
	LastMaintenanceDate    *time.Time `json:"last_maintenance_date,omitempty"`
	LastMaintenanceMileage *int64     `json:"last_maintenance_mileage,omitempty"`
	NextMaintenanceDate    *time.Time `json:"next_maintenance_date,omitempty"`
	NextMaintenanceMileage *int64     `json:"next_maintenance_mileage,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func bindingFromModel(b *models.VehiclePart) *VehiclePartDTO {
	if b == nil {
		return nil
	}
	return &VehiclePartDTO{
		ID:                     b.ID,
		VehicleID:              b.VehicleID,
		PartID:                 b.PartID,
		IsCustom:               b.IsCustom,
		MaintenanceInterval:    b.MaintenanceInterval,
		LastMaintenanceDate:    b.LastMaintenanceDate,
		LastMaintenanceMileage: b.LastMaintenanceMileage,
		NextMaintenanceDate:    b.NextMaintenanceDate,
		NextMaintenanceMileage: b.NextMaintenanceMileage,
		CreatedAt:              b.CreatedAt,
		UpdatedAt:              b.UpdatedAt,
	}
}

func bindingsFromModels(rows []models.VehiclePart) []VehiclePartDTO {
	out := make([]VehiclePartDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *bindingFromModel(&rows[i]))
	}
	return out
}
