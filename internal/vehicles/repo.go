package vehicles

import (
	"context"

	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/pagination"
)

// Repository exposes vehicle and vehicle-part persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dto CreateVehicleDTO) (*models.Vehicle, error)
	FindByID(ctx context.Context, id int64) (*models.Vehicle, error)
	FindByQRCode(ctx context.Context, code string) (*models.Vehicle, error)
	List(ctx context.Context, params listVehiclesParams) ([]models.Vehicle, *pagination.Cursor, error)
	ListByAssignee(ctx context.Context, userID int64) ([]models.Vehicle, error)
	Update(ctx context.Context, id int64, changes map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	CountByVIN(ctx context.Context, vin string) (int64, error)

	CreateBinding(ctx context.Context, binding *models.VehiclePart) error
	ListBindings(ctx context.Context, vehicleID int64) ([]models.VehiclePart, error)
	FindBinding(ctx context.Context, vehicleID, bindingID int64) (*models.VehiclePart, error)
	UpdateBinding(ctx context.Context, vehicleID, bindingID int64, changes map[string]any) (int64, error)
	DeleteBinding(ctx context.Context, vehicleID, bindingID int64) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a vehicles repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listVehiclesParams struct {
	Status     string
	Type       string
	AssignedTo int64
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, dto CreateVehicleDTO) (*models.Vehicle, error) {
	vehicle := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repositoryImpl) FindByQRCode(ctx context.Context, code string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("qr_code = ?", code).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listVehiclesParams) ([]models.Vehicle, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Vehicle{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.AssignedTo != 0 {
		query = query.Where("assigned_to = ?", params.AssignedTo)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Vehicle
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) ListByAssignee(ctx context.Context, userID int64) ([]models.Vehicle, error) {
	var rows []models.Vehicle
	err := r.db.WithContext(ctx).
		Where("assigned_to = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id int64, changes map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		Updates(changes)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Vehicle{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CountByVIN(ctx context.Context, vin string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("vin = ?", vin).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CreateBinding(ctx context.Context, binding *models.VehiclePart) error {
	return r.db.WithContext(ctx).Create(binding).Error
}

func (r *repositoryImpl) ListBindings(ctx context.Context, vehicleID int64) ([]models.VehiclePart, error) {
	var rows []models.VehiclePart
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) FindBinding(ctx context.Context, vehicleID, bindingID int64) (*models.VehiclePart, error) {
	var binding models.VehiclePart
	err := r.db.WithContext(ctx).
		Where("id = ? AND vehicle_id = ?", bindingID, vehicleID).
		First(&binding).Error
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *repositoryImpl) UpdateBinding(ctx context.Context, vehicleID, bindingID int64, changes map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VehiclePart{}).
		Where("id = ? AND vehicle_id = ?", bindingID, vehicleID).
		Updates(changes)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteBinding(ctx context.Context, vehicleID, bindingID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Delete(&models.VehiclePart{}, "id = ? AND vehicle_id = ?", bindingID, vehicleID)
	return result.RowsAffected, result.Error
}
