// Package seed loads demo fixtures for local development. It is invoked
// from cmd/api only when the seed feature flag is set and never in
// production.
package seed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/internal/vehicles"
	"github.com/fleetyard/fleetyard-backend/pkg/config"
	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/logger"
	"github.com/fleetyard/fleetyard-backend/pkg/security"
)

const demoPassword = "fleetyard-demo"

// Run inserts demo users, vehicles, parts and tasks. The load is guarded
// by a count check so restarting the API does not duplicate fixtures.
func Run(ctx context.Context, gdb *gorm.DB, passwordCfg config.PasswordConfig, logg *logger.Logger) error {
	if gdb == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "database required")
	}

	var existing int64
	if err := gdb.WithContext(ctx).Model(&models.User{}).Count(&existing).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if existing > 0 {
		if logg != nil {
			logg.Info(ctx, "seed.skipped")
		}
		return nil
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, driver, err := seedUsers(tx, passwordCfg)
		if err != nil {
			return err
		}

		vehicle, err := seedVehicle(tx, driver.ID)
		if err != nil {
			return err
		}

		var errs error
		errs = multierr.Append(errs, seedParts(tx))
		errs = multierr.Append(errs, seedMaintenance(tx, vehicle.ID, driver.ID))
		errs = multierr.Append(errs, seedOrder(tx, admin.ID))
		if errs != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "seed fixtures")
		}

		if logg != nil {
			logg.Info(ctx, "seed.loaded")
		}
		return nil
	})
}

func seedUsers(tx *gorm.DB, passwordCfg config.PasswordConfig) (*models.User, *models.User, error) {
	hash, err := security.HashPassword(demoPassword, passwordCfg)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash demo password")
	}

	adminEmail := "admin@fleetyard.test"
	admin := &models.User{
		Username:     "admin",
		PasswordHash: hash,
		Name:         "Fleet Admin",
		Role:         enums.UserRoleCompanyAdmin,
		Email:        &adminEmail,
	}
	if err := tx.Create(admin).Error; err != nil {
		return nil, nil, err
	}

	driverEmail := "driver@fleetyard.test"
	driver := &models.User{
		Username:     "driver",
		PasswordHash: hash,
		Name:         "Demo Driver",
		Role:         enums.UserRoleDriver,
		Email:        &driverEmail,
	}
	if err := tx.Create(driver).Error; err != nil {
		return nil, nil, err
	}
	return admin, driver, nil
}

func seedVehicle(tx *gorm.DB, driverID int64) (*models.Vehicle, error) {
	qr, err := vehicles.GenerateQRCode()
	if err != nil {
		return nil, err
	}

	plate := "FLT-0001"
	vehicle := &models.Vehicle{
		Name:         "Truck 1",
		Type:         enums.VehicleTypeTruck,
		VIN:          "1FTFW1ET5DFC10312",
		LicensePlate: &plate,
		Make:         "Ford",
		Model:        "F-150",
		Year:         2021,
		Mileage:      48200,
		AssignedTo:   &driverID,
		Status:       enums.VehicleStatusActive,
		QRCode:       qr,
	}
	if err := tx.Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func seedParts(tx *gorm.DB) error {
	supplier := "NAPA"
	fixtures := []models.Part{
		{
			Name:         "Oil Filter",
			SKU:          "FLT-OIL-001",
			Category:     "filters",
			Quantity:     24,
			MinimumStock: 10,
			Price:        decimal.NewFromFloat(12.49),
			Supplier:     &supplier,
		},
		{
			Name:         "Brake Pad Set",
			SKU:          "FLT-BRK-004",
			Category:     "brakes",
			Quantity:     3,
			MinimumStock: 6,
			Price:        decimal.NewFromFloat(54.90),
			Supplier:     &supplier,
		},
	}
	for i := range fixtures {
		if err := tx.Create(&fixtures[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedMaintenance(tx *gorm.DB, vehicleID, driverID int64) error {
	task := &models.Maintenance{
		VehicleID:  vehicleID,
		Type:       "oil_change",
		DueDate:    time.Now().UTC().Add(14 * 24 * time.Hour),
		Status:     enums.MaintenanceStatusPending,
		Priority:   enums.MaintenancePriorityNormal,
		AssignedTo: &driverID,
	}
	return tx.Create(task).Error
}

func seedOrder(tx *gorm.DB, adminID int64) error {
	total := decimal.NewFromFloat(109.80)
	order := &models.Order{
		OrderNumber: "PO-2026-0001",
		Status:      enums.OrderStatusPending,
		CreatedDate: time.Now().UTC(),
		CreatedBy:   adminID,
		TotalAmount: &total,
	}
	return tx.Create(order).Error
}
