package cart

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/angelmondragon/packfinderz-carts/pkg/db"
	"github.com/angelmondragon/packfinderz-carts/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-carts/pkg/errors"
	"github.com/angelmondragon/packfinderz-carts/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductNotInCart  = errors.New("product not found in cart")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrDuplicateProducts = errors.New("products must be unique within a cart")
	ErrConcurrentAdd     = errors.New("product was added to the cart concurrently")
	ErrQuantityLimit     = errors.New("quantity exceeds the maximum per line")
)

// MaxQuantity is the largest quantity a cart line can store.
const MaxQuantity = math.MaxInt32

func quantityLimitError(quantity int) error {
	return pkgerrors.Wrap(pkgerrors.CodeInvalidTypes, ErrQuantityLimit, "Quantity limit exceeded").
		WithDetails(map[string]int{"quantity": quantity, "max": MaxQuantity})
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart persistence operations.
type Service interface {
	CreateCart(ctx context.Context) (*models.Cart, error)
	GetCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	AddProductToCart(ctx context.Context, cartID, productID uuid.UUID) (*models.Cart, error)
	DeleteProductFromCart(ctx context.Context, cartID, productID uuid.UUID) (*models.Cart, error)
	UpdateCart(ctx context.Context, cartID uuid.UUID, items []ItemInput) (*models.Cart, error)
	UpdateProductQuantityInCart(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*models.Cart, error)
	DeleteAllProductsFromCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
}

// ItemInput is one requested line when replacing a cart's contents.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	repo     CartRepository
	products ProductChecker
	tx       txRunner
	cache    Cache
	logg     *logger.Logger
}

// NewService builds a cart service. cache may be nil to disable caching.
func NewService(repo CartRepository, products ProductChecker, tx txRunner, cache Cache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product checker required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
		cache:    cache,
		logg:     logg,
	}, nil
}

func (s *service) CreateCart(ctx context.Context) (*models.Cart, error) {
	cart, err := s.repo.Create(ctx, &models.Cart{})
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// GetCartByID reads through the cache. The generation observed before the
// load tags the stored snapshot, so a write committed in between makes it
// unusable.
func (s *service) GetCartByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	cached, gen, cacheable := s.cached(ctx, id)
	if cached != nil {
		return cached, nil
	}

	cart, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.remember(ctx, cart, gen)
	}
	return cart, nil
}

func (s *service) AddProductToCart(ctx context.Context, cartID, productID uuid.UUID) (*models.Cart, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("load product %s: %w", productID, err)
	}

	return s.mutate(ctx, cartID, func(repo CartRepository) error {
		item, err := repo.FindItem(ctx, cartID, productID)
		switch {
		case err == nil:
			if item.Quantity >= MaxQuantity {
				return quantityLimitError(item.Quantity + 1)
			}
			return repo.UpdateItemQuantity(ctx, item.ID, item.Quantity+1)
		case !db.IsNotFound(err):
			return err
		}

		position, err := repo.NextPosition(ctx, cartID)
		if err != nil {
			return err
		}
		err = repo.CreateItem(ctx, &models.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  1,
			Position:  position,
		})
		if pkgerrors.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrConcurrentAdd, err)
		}
		return err
	})
}

func (s *service) DeleteProductFromCart(ctx context.Context, cartID, productID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(repo CartRepository) error {
		item, err := s.findItem(ctx, repo, cartID, productID)
		if err != nil {
			return err
		}
		return repo.DeleteItem(ctx, item.ID)
	})
}

func (s *service) UpdateCart(ctx context.Context, cartID uuid.UUID, items []ItemInput) (*models.Cart, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if item.Quantity > MaxQuantity {
			return nil, quantityLimitError(item.Quantity)
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, ErrDuplicateProducts
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	found, err := s.products.CountByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check products: %w", err)
	}
	if found != int64(len(ids)) {
		return nil, fmt.Errorf("%w: %d of %d products exist", ErrProductNotFound, found, len(ids))
	}

	return s.mutate(ctx, cartID, func(repo CartRepository) error {
		if err := repo.DeleteItems(ctx, cartID); err != nil {
			return err
		}
		for i, item := range items {
			if err := repo.CreateItem(ctx, &models.CartItem{
				CartID:    cartID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Position:  i,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *service) UpdateProductQuantityInCart(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return nil, quantityLimitError(quantity)
	}
	return s.mutate(ctx, cartID, func(repo CartRepository) error {
		item, err := s.findItem(ctx, repo, cartID, productID)
		if err != nil {
			return err
		}
		return repo.UpdateItemQuantity(ctx, item.ID, quantity)
	})
}

func (s *service) DeleteAllProductsFromCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(repo CartRepository) error {
		return repo.DeleteItems(ctx, cartID)
	})
}

// mutate checks the cart exists, applies fn and reloads the cart in one
// transaction, then drops the cached snapshot.
func (s *service) mutate(ctx context.Context, cartID uuid.UUID, fn func(repo CartRepository) error) (*models.Cart, error) {
	var updated *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.load(ctx, repo, cartID); err != nil {
			return err
		}
		if err := fn(repo); err != nil {
			return err
		}
		if err := repo.Touch(ctx, cartID); err != nil {
			return err
		}
		cart, err := s.load(ctx, repo, cartID)
		if err != nil {
			return err
		}
		updated = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.forget(ctx, cartID)
	return updated, nil
}

func (s *service) load(ctx context.Context, repo CartRepository, id uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrCartNotFound, id)
		}
		return nil, fmt.Errorf("load cart %s: %w", id, err)
	}
	return cart, nil
}

func (s *service) findItem(ctx context.Context, repo CartRepository, cartID, productID uuid.UUID) (*models.CartItem, error) {
	item, err := repo.FindItem(ctx, cartID, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("%w: cart %s, product %s", ErrProductNotInCart, cartID, productID)
		}
		return nil, err
	}
	return item, nil
}

func (s *service) cached(ctx context.Context, id uuid.UUID) (*models.Cart, int64, bool) {
	if s.cache == nil {
		return nil, 0, false
	}
	cart, gen, err := s.cache.Get(ctx, id)
	if err != nil {
		s.warn(ctx, id, "cart cache read failed", err)
		return nil, 0, false
	}
	return cart, gen, true
}

func (s *service) remember(ctx context.Context, cart *models.Cart, gen int64) {
	if err := s.cache.Set(ctx, cart, gen); err != nil {
		s.warn(ctx, cart.ID, "cart cache write failed", err)
	}
}

func (s *service) forget(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.warn(ctx, id, "cart cache invalidation failed", err)
	}
}

func (s *service) warn(ctx context.Context, id uuid.UUID, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithCartID(ctx, id.String())
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
