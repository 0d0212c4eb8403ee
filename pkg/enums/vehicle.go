package enums

import "fmt"

// VehicleStatus describes the allowed values for the vehicles.status column.
type VehicleStatus string

const (
	VehicleStatusActive       VehicleStatus = "active"
	VehicleStatusMaintenance  VehicleStatus = "maintenance"
	VehicleStatusOutOfService VehicleStatus = "out_of_service"
)

var validVehicleStatuses = []VehicleStatus{
	VehicleStatusActive,
	VehicleStatusMaintenance,
	VehicleStatusOutOfService,
}

func (s VehicleStatus) IsValid() bool {
	for _, candidate := range validVehicleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseVehicleStatus converts the raw string to VehicleStatus.
func ParseVehicleStatus(value string) (VehicleStatus, error) {
	for _, candidate := range validVehicleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle status %q", value)
}

// VehicleType is a coarse classification used for filtering and reporting.
// The set is advisory: unknown types are stored as VehicleTypeOther.
type VehicleType string

const (
	VehicleTypeTruck VehicleType = "truck"
	VehicleTypeSedan VehicleType = "sedan"
	VehicleTypeVan   VehicleType = "van"
	VehicleTypeOther VehicleType = "other"
)

var validVehicleTypes = []VehicleType{
	VehicleTypeTruck,
	VehicleTypeSedan,
	VehicleTypeVan,
	VehicleTypeOther,
}

func (t VehicleType) IsValid() bool {
	for _, candidate := range validVehicleTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// NormalizeVehicleType maps arbitrary input onto the canonical set.
func NormalizeVehicleType(value string) VehicleType {
	for _, candidate := range validVehicleTypes {
		if string(candidate) == value {
			return candidate
		}
	}
	return VehicleTypeOther
}
