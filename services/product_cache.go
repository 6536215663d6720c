package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ProductCachePrefix     = "product:detail:"
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"
)

// CacheClient is the part of *redis.Client the product cache uses.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ProductCache caches catalog reads in Redis. Every key embeds the catalog
// version; bumping the version invalidates every cached entry at once.
// Callers take the version before reading the store and fill under it, so a
// fill that races a write lands under a retired key.
// All methods are safe on a nil *ProductCache.
type ProductCache struct {
	redis  CacheClient
	ttl    time.Duration
	logger *zap.Logger
	async  bool
}

func NewProductCache(client CacheClient, ttl time.Duration, log *zap.Logger) *ProductCache {
	if client == nil {
		return nil
	}
	return &ProductCache{redis: client, ttl: ttl, logger: log, async: true}
}

// Version returns the current catalog version, or 0 when the cache should be
// bypassed.
func (pc *ProductCache) Version(ctx context.Context) int64 {
	if pc == nil {
		return 0
	}
	version, err := pc.version(ctx)
	if err != nil {
		pc.logger.Debug("product cache version unavailable", zap.Error(err))
		return 0
	}
	return version
}

// GetProductList returns the cached list for a category ("" is all).
func (pc *ProductCache) GetProductList(ctx context.Context, version int64, category string) ([]models.Product, bool) {
	if pc == nil || version == 0 {
		return nil, false
	}
	var products []models.Product
	if !pc.get(ctx, listKey(version, category), &products) {
		return nil, false
	}
	return products, true
}

func (pc *ProductCache) SetProductList(version int64, category string, products []models.Product) {
	if pc == nil || version == 0 {
		return
	}
	pc.run(func(ctx context.Context) {
		pc.set(ctx, listKey(version, category), products)
	})
}

func (pc *ProductCache) GetProduct(ctx context.Context, version int64, id string) (*models.Product, bool) {
	if pc == nil || version == 0 {
		return nil, false
	}
	var product models.Product
	if !pc.get(ctx, detailKey(version, id), &product) {
		return nil, false
	}
	return &product, true
}

func (pc *ProductCache) SetProduct(version int64, product *models.Product) {
	if pc == nil || version == 0 {
		return
	}
	pc.run(func(ctx context.Context) {
		pc.set(ctx, detailKey(version, product.ID), product)
	})
}

// InvalidateProduct bumps the catalog version and drops the product's detail
// entry under the version it retired.
func (pc *ProductCache) InvalidateProduct(ctx context.Context, id string) {
	if pc == nil {
		return
	}
	newVersion, err := pc.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		pc.logger.Error("failed to invalidate product cache", zap.String("product_id", id), zap.Error(err))
		return
	}
	pc.logger.Debug("product cache invalidated", zap.Int64("new_version", newVersion))
	if id == "" || newVersion < 2 {
		return
	}
	if err := pc.redis.Del(ctx, detailKey(newVersion-1, id)).Err(); err != nil {
		pc.logger.Warn("failed to delete product cache", zap.String("product_id", id), zap.Error(err))
	}
}

func (pc *ProductCache) version(ctx context.Context) (int64, error) {
	ver, err := pc.redis.Get(ctx, CacheVersionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if errors.Is(err, redis.Nil) {
		if err := pc.redis.Set(ctx, CacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err == nil {
		err = fmt.Errorf("invalid cache version %d", ver)
	}
	return 0, err
}

func (pc *ProductCache) get(ctx context.Context, key string, dst interface{}) bool {
	data, err := pc.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			pc.logger.Debug("product cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		pc.logger.Warn("failed to unmarshal cached products", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (pc *ProductCache) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		pc.logger.Warn("failed to marshal products for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := pc.redis.Set(ctx, key, data, pc.ttl).Err(); err != nil {
		pc.logger.Warn("failed to cache products", zap.String("key", key), zap.Error(err))
	}
}

// run executes fn in the background with its own 5s deadline.
func (pc *ProductCache) run(fn func(ctx context.Context)) {
	do := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fn(ctx)
	}
	if pc.async {
		go do()
		return
	}
	do()
}

func listKey(version int64, category string) string {
	return fmt.Sprintf("%s%d:c:%s", ProductListCachePrefix, version, category)
}

func detailKey(version int64, id string) string {
	return fmt.Sprintf("%sv%d:%s", ProductCachePrefix, version, id)
}
