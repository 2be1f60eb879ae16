package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medstore/internal/apperrors"
	"medstore/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// RedisCartRepository keeps each cart as a JSON document under cart:{userID}.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartRepository creates a Redis-backed cart repository. A zero ttl keeps carts forever.
func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now().UTC()
	if cart.ID == "" {
		cart.ID = uuid.New().String()
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	if err := cart.BeforeSave(nil); err != nil {
		return err
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, cartKeyPrefix+cart.UserID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
