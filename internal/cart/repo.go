package cart

import (
	"context"
	"database/sql"
	"time"

	"github.com/angelmondragon/packfinderz-carts/internal/repo"
	"github.com/angelmondragon/packfinderz-carts/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for carts and their lines.
type Repository struct {
	repo.Base
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Create inserts a new empty cart.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.DB(ctx).Omit("Items").Create(cart).Error; err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// FindByID loads a cart with its lines, in position order, and their products.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Touch bumps the cart's updated_at.
func (r *Repository) Touch(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).
		Model(&models.Cart{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}

// FindItem returns the line for productID inside cartID.
func (r *Repository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.First(ctx, &item, "cart_id = ? AND product_id = ?", cartID, productID); err != nil {
		return nil, err
	}
	return &item, nil
}

// NextPosition returns the position for a line appended to cartID.
func (r *Repository) NextPosition(ctx context.Context, cartID uuid.UUID) (int, error) {
	var max sql.NullInt64
	err := r.DB(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).
		Select("MAX(position)").
		Row().
		Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// CreateItem inserts a cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.DB(ctx).Omit("Product").Create(item).Error
}

// UpdateItemQuantity sets the quantity of a single line.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.DB(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// DeleteItem removes a single line.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

// DeleteItems removes every line of cartID.
func (r *Repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.DB(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
