package product

import (
	"context"

	"github.com/angelmondragon/packfinderz-carts/internal/repo"
	"github.com/angelmondragon/packfinderz-carts/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the product reads used by carts.
type ProductRepository interface {
	FindByID(context.Context, uuid.UUID) (*models.Product, error)
	CountByIDs(context.Context, []uuid.UUID) (int64, error)
}

// Repository persists products with GORM.
type Repository struct {
	repo.Base
}

// NewRepository constructs a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a single product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.First(ctx, &product, "id = ?", id); err != nil {
		return nil, err
	}
	return &product, nil
}

// CountByIDs returns how many of the distinct ids exist.
func (r *Repository) CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.Count(ctx, &models.Product{}, "id IN ?", ids)
}
