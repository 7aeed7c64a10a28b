package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gogotex/admin-service/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestGORMRepository_InsertFindUpdate(t *testing.T) {
	db := openTestDB(t)
	repo := NewGORMRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "alice", Email: "alice@example.com", Password: "h", Role: models.RoleUser}
	require.NoError(t, repo.Insert(ctx, u))
	require.NotZero(t, u.ID)

	got, err := repo.FindBy(ctx, ColumnUsername, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Nil(t, got.GoogleID)

	missing, err := repo.FindBy(ctx, ColumnEmail, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Update(ctx, got, map[string]interface{}{"password": "h2"}))
	again, err := repo.FindBy(ctx, ColumnEmail, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "h2", again.Password)
}

func TestGORMRepository_UniqueViolations(t *testing.T) {
	db := openTestDB(t)
	repo := NewGORMRepository(db)
	ctx := context.Background()

	gid := "sub-1"
	require.NoError(t, repo.Insert(ctx, &models.User{Username: "a", Email: "a@example.com", Password: "h", Role: models.RoleUser, GoogleID: &gid}))
	// unlinked rows share a NULL google_id without colliding
	require.NoError(t, repo.Insert(ctx, &models.User{Username: "b", Email: "b@example.com", Password: "h", Role: models.RoleUser}))
	require.NoError(t, repo.Insert(ctx, &models.User{Username: "c", Email: "c@example.com", Password: "h", Role: models.RoleUser}))

	err := repo.Insert(ctx, &models.User{Username: "a", Email: "x@example.com", Password: "h", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	err = repo.Insert(ctx, &models.User{Username: "y", Email: "b@example.com", Password: "h", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	dup := "sub-1"
	err = repo.Insert(ctx, &models.User{Username: "z", Email: "z@example.com", Password: "h", Role: models.RoleUser, GoogleID: &dup})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	assert.Equal(t, int64(3), countUsers(t, db))

	linked, err := repo.FindBy(ctx, ColumnGoogleID, "sub-1")
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, "a", linked.Username)
}

func TestGORMRepository_RejectsUnknownColumn(t *testing.T) {
	repo := NewGORMRepository(openTestDB(t))
	_, err := repo.FindBy(context.Background(), Column("password"), "x")
	assert.Error(t, err)
}

func TestService_RegisterDuplicateOnSQLite(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewGORMRepository(db), passwordsForTest())
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "ivy", "ivy@example.com", "password1"))
	before := countUsers(t, db)
	assert.ErrorIs(t, svc.Register(ctx, "ivy", "ivy2@example.com", "password1"), ErrDuplicateName)
	assert.ErrorIs(t, svc.Register(ctx, "ivy2", "ivy@example.com", "password1"), ErrDuplicateName)
	assert.Equal(t, before, countUsers(t, db))
}
