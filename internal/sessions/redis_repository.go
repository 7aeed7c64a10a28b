package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository implements Repository using Redis as the backing store.
// Attempts are stored as JSON under key: "<prefix><id>" with TTL = expiresAt - now
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis-based attempt repository. Prefix may be empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "oauth_attempt:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(id string) string {
	return r.prefix + id
}

func (r *RedisRepository) Create(ctx context.Context, a *Attempt) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	exp := time.Until(a.ExpiresAt)
	if exp <= 0 {
		// ensure a minimal TTL so Redis won't store expired attempts
		exp = time.Second
	}
	return r.client.Set(ctx, r.key(a.ID), b, exp).Err()
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*Attempt, error) {
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var a Attempt
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, err
	}
	if time.Now().UTC().After(a.ExpiresAt) {
		_ = r.client.Del(ctx, r.key(id)).Err()
		return nil, nil
	}
	return &a, nil
}

// Take reads and removes the attempt with a single GETDEL.
func (r *RedisRepository) Take(ctx context.Context, id string) (*Attempt, error) {
	b, err := r.client.GetDel(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var a Attempt
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, err
	}
	if time.Now().UTC().After(a.ExpiresAt) {
		return nil, nil
	}
	return &a, nil
}
