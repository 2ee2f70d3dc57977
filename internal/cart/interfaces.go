package cart

import (
	"context"

	"github.com/angelmondragon/packfinderz-carts/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Touch(ctx context.Context, id uuid.UUID) error
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	NextPosition(ctx context.Context, cartID uuid.UUID) (int, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
}

// ProductChecker verifies that referenced products exist.
type ProductChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// Cache stores cart snapshots between reads. Get returns the current
// snapshot, or nil on a miss, together with the generation a fresh snapshot
// must be stored under. Invalidate advances that generation.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Cart, int64, error)
	Set(ctx context.Context, cart *models.Cart, generation int64) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}
