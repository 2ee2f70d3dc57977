package cart

import (
	"context"
	"fmt"
	"testing"

	product "github.com/angelmondragon/packfinderz-carts/internal/products"
	"github.com/angelmondragon/packfinderz-carts/pkg/db"
	"github.com/angelmondragon/packfinderz-carts/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, title string, priceCents int64) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:      title,
		PriceCents: priceCents,
		Code:       "code-" + uuid.NewString(),
		Stock:      5,
		Owner:      "seller@example.com",
		Status:     true,
	}
	require.NoError(t, conn.Create(p).Error)
	return p
}

type fakeCache struct {
	entries     map[uuid.UUID]*models.Cart
	tags        map[uuid.UUID]int64
	gens        map[uuid.UUID]int64
	gets        int
	invalidated []uuid.UUID
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: map[uuid.UUID]*models.Cart{},
		tags:    map[uuid.UUID]int64{},
		gens:    map[uuid.UUID]int64{},
	}
}

func (c *fakeCache) Get(_ context.Context, id uuid.UUID) (*models.Cart, int64, error) {
	c.gets++
	if c.getErr != nil {
		return nil, 0, c.getErr
	}
	gen := c.gens[id]
	cart, ok := c.entries[id]
	if !ok || c.tags[id] != gen {
		return nil, gen, nil
	}
	return cart, gen, nil
}

func (c *fakeCache) Set(_ context.Context, cart *models.Cart, generation int64) error {
	c.entries[cart.ID] = cart
	c.tags[cart.ID] = generation
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.gens[id]++
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

// interleavedRepo runs afterLoad once, right after the next FindByID made
// outside a transaction returns.
type interleavedRepo struct {
	*Repository
	afterLoad func()
}

func (r *interleavedRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	cart, err := r.Repository.FindByID(ctx, id)
	if hook := r.afterLoad; hook != nil {
		r.afterLoad = nil
		hook()
	}
	return cart, err
}

func newTestService(t *testing.T, conn *gorm.DB, cache Cache) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), product.NewRepository(conn), db.NewFromConn(conn), cache, nil)
	require.NoError(t, err)
	return svc
}
