package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

func setupMaintenanceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Maintenance{}))
	return db
}

func taskFixture(vehicleID int64, due time.Time) CreateMaintenanceDTO {
	return CreateMaintenanceDTO{
		VehicleID: vehicleID,
		Type:      "oil change",
		DueDate:   due,
	}
}

func TestRepository_ListPendingUnion(t *testing.T) {
	db := setupMaintenanceTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	pending, err := repo.Create(ctx, taskFixture(1, now.Add(24*time.Hour)))
	require.NoError(t, err)

	overdue, err := repo.Create(ctx, taskFixture(1, now.Add(-24*time.Hour)))
	require.NoError(t, err)
	_, err = repo.Update(ctx, overdue.ID, map[string]any{"status": enums.MaintenanceStatusOverdue})
	require.NoError(t, err)

	done, err := repo.Create(ctx, taskFixture(1, now.Add(-48*time.Hour)))
	require.NoError(t, err)
	_, err = repo.Update(ctx, done.ID, map[string]any{
		"status":         enums.MaintenanceStatusCompleted,
		"completed_date": now,
	})
	require.NoError(t, err)

	rows, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Ordered by due date ascending, so the overdue task comes first.
	assert.Equal(t, overdue.ID, rows[0].ID)
	assert.Equal(t, pending.ID, rows[1].ID)
}

func TestRepository_ListPendingApproval(t *testing.T) {
	db := setupMaintenanceTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	pendingApproval := enums.ApprovalStatusPending
	unscheduled := taskFixture(2, now)
	unscheduled.IsUnscheduled = true
	unscheduled.ApprovalStatus = &pendingApproval
	created, err := repo.Create(ctx, unscheduled)
	require.NoError(t, err)

	_, err = repo.Create(ctx, taskFixture(2, now))
	require.NoError(t, err)

	rows, err := repo.ListPendingApproval(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, created.ID, rows[0].ID)

	// A decided task drops out of the queue.
	_, err = repo.Update(ctx, created.ID, map[string]any{
		"approval_status": enums.ApprovalStatusApproved,
		"approved_by":     int64(1),
	})
	require.NoError(t, err)

	rows, err = repo.ListPendingApproval(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepository_ListByVehicleOrdersByDueDate(t *testing.T) {
	db := setupMaintenanceTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	later, err := repo.Create(ctx, taskFixture(3, now.Add(72*time.Hour)))
	require.NoError(t, err)
	sooner, err := repo.Create(ctx, taskFixture(3, now.Add(24*time.Hour)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, taskFixture(4, now))
	require.NoError(t, err)

	rows, err := repo.ListByVehicle(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, sooner.ID, rows[0].ID)
	assert.Equal(t, later.ID, rows[1].ID)
}
