package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	return db
}

func notificationFixture(userID int64) *models.Notification {
	return &models.Notification{
		UserID:  userID,
		Title:   "Maintenance due",
		Message: "oil change due on vehicle 4",
		Type:    enums.NotificationTypeMaintenanceDue,
	}
}

func TestRepository_MarkReadFlipsOnlyTarget(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := notificationFixture(3)
	second := notificationFixture(3)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	result, err := repo.MarkRead(ctx, 3, first.ID)
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.True(t, result.Updated)

	unread, err := repo.CountUnread(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	// Re-reading the same row finds it but updates nothing.
	result, err = repo.MarkRead(ctx, 3, first.ID)
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.False(t, result.Updated)
}

func TestRepository_MarkReadWrongUser(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mine := notificationFixture(3)
	require.NoError(t, repo.Create(ctx, mine))

	result, err := repo.MarkRead(ctx, 4, mine.ID)
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestRepository_ListNewestFirst(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	older := notificationFixture(3)
	require.NoError(t, repo.Create(ctx, older))
	newer := notificationFixture(3)
	require.NoError(t, repo.Create(ctx, newer))

	rows, _, err := repo.List(ctx, listNotificationsParams{UserID: 3, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}
