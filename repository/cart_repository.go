package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"

	"github.com/redis/go-redis/v9"
)

type CartRepository interface {
	Load(ctx context.Context, userID string) (*models.Cart, error)
	// Save stores cart unless a newer revision is already persisted. It
	// reports whether the write was applied.
	Save(ctx context.Context, cart *models.Cart) (bool, error)
}

// saveCartScript writes rev+data unless the stored rev is greater.
// KEYS[1]=cart key, ARGV[1]=revision, ARGV[2]=payload, ARGV[3]=ttl ms.
var saveCartScript = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'rev') or '-1')
if tonumber(ARGV[1]) < cur then
  return 0
end
redis.call('HSET', KEYS[1], 'rev', ARGV[1], 'data', ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// CartClient is the part of *redis.Client the cart store uses.
type CartClient interface {
	redis.Scripter
	HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd
}

// RedisCartRepository keeps one hash per user holding the latest snapshot.
type RedisCartRepository struct {
	client CartClient
	ttl    time.Duration
}

func NewRedisCartRepository(client CartClient, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func cartKey(userID string) string {
	return "cart:user:" + userID
}

type cartPayload struct {
	Items     []models.CartItem `json:"items"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Load returns the persisted cart, or an empty cart at revision 0 when the
// user has none.
func (r *RedisCartRepository) Load(ctx context.Context, userID string) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID, Items: []models.CartItem{}}

	vals, err := r.client.HMGet(ctx, cartKey(userID), "rev", "data").Result()
	if errors.Is(err, redis.Nil) {
		return cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	rev, _ := vals[0].(string)
	data, _ := vals[1].(string)
	if data == "" {
		return cart, nil
	}

	var payload cartPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if n, err := strconv.ParseInt(rev, 10, 64); err == nil {
		cart.Revision = n
	}
	if payload.Items != nil {
		cart.Items = payload.Items
	}
	cart.UpdatedAt = payload.UpdatedAt
	return cart, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, cart *models.Cart) (bool, error) {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	data, err := json.Marshal(cartPayload{Items: items, UpdatedAt: cart.UpdatedAt})
	if err != nil {
		return false, fmt.Errorf("encode cart: %w", err)
	}

	applied, err := saveCartScript.Run(ctx, r.client,
		[]string{cartKey(cart.UserID)},
		cart.Revision, string(data), r.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("save cart: %w", err)
	}
	return applied == 1, nil
}
