package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gogotex/admin-service/internal/models"
)

// GORMRepo implements Repository on the products table.
type GORMRepo struct {
	db *gorm.DB
}

func NewGORMRepo(db *gorm.DB) *GORMRepo {
	return &GORMRepo{db: db}
}

func (r *GORMRepo) Create(ctx context.Context, p *models.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *GORMRepo) List(ctx context.Context) ([]*models.Product, error) {
	var out []*models.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}
