package orders

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
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderItem{}))
	return db
}

func orderFixture(number string) *models.Order {
	return &models.Order{
		OrderNumber: number,
		Status:      enums.OrderStatusPending,
		CreatedDate: time.Now().UTC(),
		CreatedBy:   1,
	}
}

func TestRepository_CreateWithItemsAndPreload(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := orderFixture("PO-2026-0001")
	order.Items = []models.OrderItem{
		{PartID: 7, Quantity: 2, Price: decimal.NewFromInt(10)},
	}
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, int64(7), loaded.Items[0].PartID)
	assert.True(t, loaded.Items[0].LineTotal().Equal(decimal.NewFromInt(20)))
}

func TestRepository_OrderNumberUnique(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, orderFixture("PO-2026-0002")))
	err := repo.Create(ctx, orderFixture("PO-2026-0002"))
	assert.Error(t, err)
}

func TestRepository_DeleteRemovesLines(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := orderFixture("PO-2026-0003")
	order.Items = []models.OrderItem{
		{PartID: 1, Quantity: 1, Price: decimal.NewFromInt(3)},
		{PartID: 2, Quantity: 4, Price: decimal.NewFromInt(8)},
	}
	require.NoError(t, repo.Create(ctx, order))

	affected, err := repo.Delete(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	items, err := repo.ListItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	affected, err = repo.Delete(ctx, order.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestRepository_ListFiltersByStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pending := orderFixture("PO-2026-0004")
	require.NoError(t, repo.Create(ctx, pending))

	cancelled := orderFixture("PO-2026-0005")
	cancelled.Status = enums.OrderStatusCancelled
	require.NoError(t, repo.Create(ctx, cancelled))

	rows, next, err := repo.List(ctx, listOrdersParams{Status: string(enums.OrderStatusPending), Limit: 10})
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)
}
