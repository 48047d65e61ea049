package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	productListKey       = "catalog:products"
	productGenerationKey = "catalog:products:gen"
)

// cachedProductList is the stored value. Generation is the value of
// productGenerationKey when the list was read from the store.
type cachedProductList struct {
	Generation int64           `json:"generation"`
	Products   []model.Product `json:"products"`
}

type productListCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewProductListCache(client redis.Cmdable, ttl time.Duration) repository.ProductListCache {
	return &productListCache{client: client, ttl: ttl}
}

func (c *productListCache) Get(ctx context.Context) ([]model.Product, int64, error) {
	vals, err := c.client.MGet(ctx, productGenerationKey, productListKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read product list from redis: %w", err)
	}

	generation, err := parseGeneration(vals[0])
	if err != nil {
		return nil, 0, err
	}

	raw, ok := vals[1].(string)
	if !ok {
		return nil, generation, repository.ErrCacheMiss
	}

	var entry cachedProductList
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		_ = c.client.Del(ctx, productListKey).Err()
		return nil, generation, fmt.Errorf("failed to unmarshal cached product list: %w", err)
	}
	if entry.Generation != generation {
		return nil, generation, repository.ErrCacheMiss
	}
	if entry.Products == nil {
		entry.Products = []model.Product{}
	}
	return entry.Products, generation, nil
}

func (c *productListCache) Set(ctx context.Context, generation int64, products []model.Product) error {
	data, err := json.Marshal(cachedProductList{Generation: generation, Products: products})
	if err != nil {
		return fmt.Errorf("failed to marshal product list: %w", err)
	}
	if err := c.client.Set(ctx, productListKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write product list to redis: %w", err)
	}
	return nil
}

// Invalidate advances the generation before dropping the list, so a reader
// that loaded the store earlier cannot bring its copy back.
func (c *productListCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, productGenerationKey)
		pipe.Del(ctx, productListKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate product list: %w", err)
	}
	return nil
}

func parseGeneration(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid catalog generation %q: %w", s, err)
	}
	return n, nil
}
