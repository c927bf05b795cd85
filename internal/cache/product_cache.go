package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZNilakshi/clothify/internal/models"
	"github.com/ZNilakshi/clothify/internal/repository"
	"github.com/ZNilakshi/clothify/pkg/logkey"
)

const notFoundSentinel = "notfound"

// CachedProductRepository fronts a ProductRepository with redis. Stock in a
// cached product may lag; reservations against inventory stay authoritative,
// so the TTL is kept short.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
}

func NewCachedProductRepository(realRepo repository.ProductRepository, rdb *redis.Client) *CachedProductRepository {
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    rdb,
		ttl:      time.Minute,
	}
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	key := fmt.Sprintf("product:%d", id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundSentinel {
			return nil, repository.ErrNotFound
		}
		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			slog.Warn("failed to unmarshal cached product, falling through to db",
				slog.String(logkey.ERROR, err.Error()))
			break
		}
		return &product, nil

	case errors.Is(err, redis.Nil):
		// cache miss

	default:
		slog.Warn("redis get failed, falling through to db", slog.String(logkey.ERROR, err.Error()))
	}

	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundSentinel, time.Minute).Err(); setErr != nil {
				slog.Warn("failed to cache notfound marker", slog.String(logkey.ERROR, setErr.Error()))
			}
		}
		return nil, err
	}

	jsonData, err := json.Marshal(product)
	if err != nil {
		slog.Warn("failed to marshal product for cache", slog.String(logkey.ERROR, err.Error()))
		return product, nil
	}
	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		slog.Warn("failed to cache product", slog.String(logkey.ERROR, err.Error()))
	}
	return product, nil
}
