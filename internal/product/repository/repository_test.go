package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gogotex/admin-service/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func exercise(t *testing.T, r Repository) {
	ctx := context.Background()

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, r.Create(ctx, &models.Product{Name: "Widget", Price: 9.5, Stock: 3}))
	require.NoError(t, r.Create(ctx, &models.Product{Name: "Gadget", Price: 20}))
	require.ErrorIs(t, r.Create(ctx, &models.Product{Price: 1}), ErrInvalidProduct)
	require.ErrorIs(t, r.Create(ctx, &models.Product{Name: "Bad", Price: -1}), ErrInvalidProduct)

	list, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Widget", list[0].Name)
	require.Equal(t, 3, list[0].Stock)
	require.Equal(t, "Gadget", list[1].Name)
	require.NotZero(t, list[1].ID)
}

func TestMemoryRepo(t *testing.T) {
	exercise(t, NewMemoryRepo())
}

func TestGORMRepo(t *testing.T) {
	exercise(t, NewGORMRepo(openTestDB(t)))
}

func TestMemoryRepoReturnsCopies(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &models.Product{Name: "Widget", Price: 1}))
	list, err := r.List(ctx)
	require.NoError(t, err)
	list[0].Name = "changed"

	again, err := r.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "Widget", again[0].Name)
}
