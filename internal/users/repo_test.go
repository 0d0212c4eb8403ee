package users

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

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestRepository_CreateAndFind(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Username:     "jortega",
		PasswordHash: "$argon2id$stub",
		Name:         "J. Ortega",
		Role:         enums.UserRoleDriver,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "jortega", byID.Username)

	byUsername, err := repo.FindByUsername(ctx, "jortega")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)
}

func TestRepository_UsernameUnique(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Username: "dup", PasswordHash: "h", Name: "One"})
	require.NoError(t, err)

	count, err := repo.CountByUsername(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.Create(ctx, CreateUserDTO{Username: "dup", PasswordHash: "h", Name: "Two"})
	assert.Error(t, err)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Username: "mut", PasswordHash: "h", Name: "Before"})
	require.NoError(t, err)

	affected, err := repo.Update(ctx, created.ID, map[string]any{"name": "After"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", reloaded.Name)

	affected, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestRepository_ListFiltersByRole(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Username: "admin1", PasswordHash: "h", Name: "A", Role: enums.UserRoleCompanyAdmin})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Username: "driver1", PasswordHash: "h", Name: "D", Role: enums.UserRoleDriver})
	require.NoError(t, err)

	rows, next, err := repo.List(ctx, listUsersParams{Role: string(enums.UserRoleCompanyAdmin), Limit: 10})
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, rows, 1)
	assert.Equal(t, "admin1", rows[0].Username)
}
