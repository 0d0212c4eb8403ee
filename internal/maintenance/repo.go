package maintenance

import (
	"context"

	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	"github.com/fleetyard/fleetyard-backend/pkg/pagination"
)

// Repository exposes maintenance persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dto CreateMaintenanceDTO) (*models.Maintenance, error)
	FindByID(ctx context.Context, id int64) (*models.Maintenance, error)
	List(ctx context.Context, params listTasksParams) ([]models.Maintenance, *pagination.Cursor, error)
	ListByVehicle(ctx context.Context, vehicleID int64) ([]models.Maintenance, error)
	ListPending(ctx context.Context) ([]models.Maintenance, error)
	ListUnscheduled(ctx context.Context) ([]models.Maintenance, error)
	ListPendingApproval(ctx context.Context) ([]models.Maintenance, error)
	Update(ctx context.Context, id int64, changes map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a maintenance repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listTasksParams struct {
	Status     string
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

func (r *repositoryImpl) Create(ctx context.Context, dto CreateMaintenanceDTO) (*models.Maintenance, error) {
	task := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id int64) (*models.Maintenance, error) {
	var task models.Maintenance
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listTasksParams) ([]models.Maintenance, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Maintenance{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.AssignedTo != 0 {
		query = query.Where("assigned_to = ?", params.AssignedTo)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Maintenance
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

func (r *repositoryImpl) ListByVehicle(ctx context.Context, vehicleID int64) ([]models.Maintenance, error) {
	var rows []models.Maintenance
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("due_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPending returns the actionable backlog: tasks whose status is
// pending or overdue, ordered by urgency.
func (r *repositoryImpl) ListPending(ctx context.Context) ([]models.Maintenance, error) {
	var rows []models.Maintenance
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.MaintenanceStatus{
			enums.MaintenanceStatusPending,
			enums.MaintenanceStatusOverdue,
		}).
		Order("due_date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListUnscheduled(ctx context.Context) ([]models.Maintenance, error) {
	var rows []models.Maintenance
	err := r.db.WithContext(ctx).
		Where("is_unscheduled = ?", true).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListPendingApproval(ctx context.Context) ([]models.Maintenance, error) {
	var rows []models.Maintenance
	err := r.db.WithContext(ctx).
		Where("is_unscheduled = ? AND approval_status = ?", true, enums.ApprovalStatusPending).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id int64, changes map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Maintenance{}).
		Where("id = ?", id).
		Updates(changes)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Maintenance{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
