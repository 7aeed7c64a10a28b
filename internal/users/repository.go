package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gogotex/admin-service/internal/models"
)

// Column is a lookup column of the users table. Only the unique columns are
// valid lookup keys.
type Column string

const (
	ColumnUsername Column = "username"
	ColumnEmail    Column = "email"
	ColumnGoogleID Column = "google_id"
)

func (c Column) valid() bool {
	switch c {
	case ColumnUsername, ColumnEmail, ColumnGoogleID:
		return true
	}
	return false
}

// Repository defines persistence operations for users.
// FindBy returns (nil, nil) when no row matches. Insert and Update return
// ErrDuplicateKey when a unique index rejects the write.
type Repository interface {
	FindBy(ctx context.Context, column Column, value string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User, fields map[string]interface{}) error
}

// GORMRepository implements Repository on a relational database.
// The *gorm.DB must be opened with TranslateError enabled.
type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) FindBy(ctx context.Context, column Column, value string) (*models.User, error) {
	if !column.valid() {
		return nil, fmt.Errorf("lookup by unsupported column %q", column)
	}
	var u models.User
	err := r.db.WithContext(ctx).Where(string(column)+" = ?", value).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	return &u, nil
}

func (r *GORMRepository) Insert(ctx context.Context, u *models.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *GORMRepository) Update(ctx context.Context, u *models.User, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(u).Updates(fields).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return nil
}
