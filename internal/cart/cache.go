package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/angelmondragon/packfinderz-carts/pkg/db/models"
	"github.com/angelmondragon/packfinderz-carts/pkg/redis"
	"github.com/google/uuid"
)

// generationTTL bounds how long an idle cart keeps its write counter.
const generationTTL = 24 * time.Hour

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	CartKey(cartID string) string
	CartGenerationKey(cartID string) string
}

type snapshot struct {
	Generation int64        `json:"generation"`
	Cart       *models.Cart `json:"cart"`
}

// RedisCache keeps JSON snapshots of carts in Redis. Every snapshot is tagged
// with the cart's write generation; a snapshot whose tag no longer matches is
// treated as a miss.
type RedisCache struct {
	store cacheStore
	ttl   time.Duration
}

// NewRedisCache returns a cache writing snapshots with the given TTL.
func NewRedisCache(store cacheStore, ttl time.Duration) *RedisCache {
	return &RedisCache{store: store, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, id uuid.UUID) (*models.Cart, int64, error) {
	gen, err := c.generation(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	raw, err := c.store.Get(ctx, c.store.CartKey(id.String()))
	if err != nil {
		if redis.IsMiss(err) {
			return nil, gen, nil
		}
		return nil, 0, err
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, 0, fmt.Errorf("decode cached cart: %w", err)
	}
	if snap.Cart == nil || snap.Generation != gen {
		return nil, gen, nil
	}
	if snap.Cart.Items == nil {
		snap.Cart.Items = []models.CartItem{}
	}
	return snap.Cart, gen, nil
}

func (c *RedisCache) Set(ctx context.Context, cart *models.Cart, generation int64) error {
	payload, err := json.Marshal(snapshot{Generation: generation, Cart: cart})
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return c.store.Set(ctx, c.store.CartKey(cart.ID.String()), payload, c.ttl)
}

// Invalidate bumps the generation before dropping the snapshot, so a reader
// that loaded the cart earlier cannot store a snapshot that will be served.
func (c *RedisCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if _, err := c.store.Incr(ctx, c.store.CartGenerationKey(id.String()), c.generationTTL()); err != nil {
		return fmt.Errorf("bump cart generation: %w", err)
	}
	return c.store.Del(ctx, c.store.CartKey(id.String()))
}

func (c *RedisCache) generation(ctx context.Context, id uuid.UUID) (int64, error) {
	raw, err := c.store.Get(ctx, c.store.CartGenerationKey(id.String()))
	if err != nil {
		if redis.IsMiss(err) {
			return 0, nil
		}
		return 0, err
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode cart generation: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) generationTTL() time.Duration {
	if c.ttl*2 > generationTTL {
		return c.ttl * 2
	}
	return generationTTL
}
