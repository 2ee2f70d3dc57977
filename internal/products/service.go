package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/packfinderz-carts/pkg/db"
	"github.com/angelmondragon/packfinderz-carts/pkg/db/models"
	"github.com/google/uuid"
)

// ErrProductNotFound is returned when no product matches the id.
var ErrProductNotFound = errors.New("product not found")

// Service exposes product lookups.
type Service interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo ProductRepository
}

// NewService builds a product service backed by the provided repository.
func NewService(repo ProductRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	return product, nil
}
