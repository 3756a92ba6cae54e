package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCartStore keeps each cart as a JSON value whose Redis TTL matches
// the cart's expiry.
type RedisCartStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisCartStore(client redis.UniversalClient) *RedisCartStore {
	return &RedisCartStore{
		client: client,
		now:    time.Now,
	}
}

func (r *RedisCartStore) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

func (r *RedisCartStore) Save(ctx context.Context, cart *domain.Cart) error {
	key := cartKey(cart.ID)
	ttl := cart.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCartStore) Delete(ctx context.Context, cartID string) (bool, error) {
	n, err := r.client.Del(ctx, cartKey(cartID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis delete failed: %w", err)
	}
	return n > 0, nil
}

func cartKey(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}
