package parts

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/pagination"
)

// Repository exposes part persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dto CreatePartDTO) (*models.Part, error)
	FindByID(ctx context.Context, id int64) (*models.Part, error)
	FindBySKU(ctx context.Context, sku string) (*models.Part, error)
	List(ctx context.Context, params listPartsParams) ([]models.Part, *pagination.Cursor, error)
	ListLowStock(ctx context.Context) ([]models.Part, error)
	Update(ctx context.Context, id int64, changes map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	CountBySKU(ctx context.Context, sku string) (int64, error)
	IncrementQuantity(ctx context.Context, id int64, delta int, restockedAt *time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a parts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listPartsParams struct {
	Category string
	Supplier string
	Limit    int
	Cursor   *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, dto CreatePartDTO) (*models.Part, error) {
	part := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(part).Error; err != nil {
		return nil, err
	}
	return part, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id int64) (*models.Part, error) {
	var part models.Part
	if err := r.db.WithContext(ctx).First(&part, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *repositoryImpl) FindBySKU(ctx context.Context, sku string) (*models.Part, error) {
	var part models.Part
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&part).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listPartsParams) ([]models.Part, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Part{})
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Supplier != "" {
		query = query.Where("supplier = ?", params.Supplier)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Part
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

// ListLowStock mirrors models.Part.IsLowStock in SQL so the predicate
// stays consistent between single reads and the low-stock report.
func (r *repositoryImpl) ListLowStock(ctx context.Context) ([]models.Part, error) {
	var rows []models.Part
	err := r.db.WithContext(ctx).
		Where("minimum_stock > 0 AND quantity < minimum_stock").
		Order("quantity ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id int64, changes map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("id = ?", id).
		Updates(changes)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Part{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CountBySKU(ctx context.Context, sku string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("sku = ?", sku).
		Count(&count).Error
	return count, err
}

// IncrementQuantity applies the delta in SQL to avoid read-modify-write
// races between concurrent restocks.
func (r *repositoryImpl) IncrementQuantity(ctx context.Context, id int64, delta int, restockedAt *time.Time) (int64, error) {
	changes := map[string]any{
		"quantity": gorm.Expr("quantity + ?", delta),
	}
	if restockedAt != nil {
		changes["last_restocked"] = *restockedAt
	}
	result := r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("id = ?", id).
		Updates(changes)
	return result.RowsAffected, result.Error
}
