package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the connection shared by the cart and product repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx, or the raw connection for a nil ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// First loads the first row matching query into dest. A missing row yields
// gorm.ErrRecordNotFound.
func (b Base) First(ctx context.Context, dest any, query string, args ...any) error {
	return b.DB(ctx).Where(query, args...).First(dest).Error
}

// Count returns how many rows of model match query.
func (b Base) Count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var count int64
	err := b.DB(ctx).Model(model).Where(query, args...).Count(&count).Error
	return count, err
}
