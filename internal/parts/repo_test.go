package parts

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

func setupPartsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Part{}))
	return db
}

func partFixture(sku string, quantity, minimum int) CreatePartDTO {
	return CreatePartDTO{
		Name:         "Oil filter",
		SKU:          sku,
		Category:     "filters",
		Quantity:     quantity,
		MinimumStock: minimum,
		Price:        decimal.NewFromFloat(12.50),
	}
}

func TestRepository_SKUUnique(t *testing.T) {
	db := setupPartsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, partFixture("FLT-001", 10, 2))
	require.NoError(t, err)

	count, err := repo.CountBySKU(ctx, "FLT-001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.Create(ctx, partFixture("FLT-001", 5, 1))
	assert.Error(t, err)
}

func TestRepository_ListLowStockMatchesPredicate(t *testing.T) {
	db := setupPartsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	low, err := repo.Create(ctx, partFixture("LOW-001", 1, 5))
	require.NoError(t, err)
	_, err = repo.Create(ctx, partFixture("OK-001", 10, 5))
	require.NoError(t, err)
	// Zero minimum disables the check even at zero quantity.
	_, err = repo.Create(ctx, partFixture("ZERO-001", 0, 0))
	require.NoError(t, err)

	rows, err := repo.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, low.ID, rows[0].ID)
	assert.True(t, rows[0].IsLowStock())
}

func TestRepository_IncrementQuantityStampsRestock(t *testing.T) {
	db := setupPartsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	part, err := repo.Create(ctx, partFixture("INC-001", 2, 5))
	require.NoError(t, err)

	now := time.Now().UTC()
	affected, err := repo.IncrementQuantity(ctx, part.ID, 7, &now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	reloaded, err := repo.FindByID(ctx, part.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, reloaded.Quantity)
	require.NotNil(t, reloaded.LastRestocked)
	assert.False(t, reloaded.IsLowStock())
}

func TestRepository_CompatibleVehiclesRoundTrip(t *testing.T) {
	db := setupPartsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	dto := partFixture("CMP-001", 3, 0)
	dto.CompatibleVehicles = types.StringList{"truck", "van"}
	part, err := repo.Create(ctx, dto)
	require.NoError(t, err)

	reloaded, err := repo.FindByID(ctx, part.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.CompatibleVehicles.Contains("van"))
	assert.False(t, reloaded.CompatibleVehicles.Contains("sedan"))
}

func TestRepository_DeleteMissing(t *testing.T) {
	db := setupPartsTestDB(t)
	repo := NewRepository(db)

	affected, err := repo.Delete(context.Background(), 999)
	require.NoError(t, err)
	assert.Zero(t, affected)
}
