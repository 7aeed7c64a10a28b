package repository

import (
	"context"
	"errors"

	"github.com/gogotex/admin-service/internal/models"
)

var ErrInvalidProduct = errors.New("invalid product")

// Repository is the product catalogue store used by the dashboard.
type Repository interface {
	Create(ctx context.Context, p *models.Product) error
	List(ctx context.Context) ([]*models.Product, error)
}

func validate(p *models.Product) error {
	if p.Name == "" || p.Price < 0 || p.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}
