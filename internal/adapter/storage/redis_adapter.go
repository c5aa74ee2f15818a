package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buensabor/storefront/internal/core/domain"
)

const (
	profileKeyPrefix = "profile:"

	// A submission guard only needs to outlive the longest plausible
	// in-flight request; it is explicitly released on completion anyway.
	submissionGuardTTL = 10 * time.Minute
)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, submissionGuardTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisAdapter) GetProfile(ctx context.Context, sessionKey string) (*domain.Profile, error) {
	fields, err := r.client.HGetAll(ctx, profileKeyPrefix+sessionKey).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	return &domain.Profile{
		Name:    fields["name"],
		Email:   fields["email"],
		Phone:   fields["phone"],
		Address: fields["address"],
	}, nil
}

func (r *RedisAdapter) SaveProfile(ctx context.Context, sessionKey string, profile domain.Profile) error {
	return r.client.HSet(ctx, profileKeyPrefix+sessionKey,
		"name", profile.Name,
		"email", profile.Email,
		"phone", profile.Phone,
		"address", profile.Address,
	).Err()
}
