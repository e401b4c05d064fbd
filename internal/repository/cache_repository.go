package repository

import (
	"account-server/config"
	"account-server/internal/apperr"
	"account-server/internal/util"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type CacheRepository struct {
	client *config.RedisClient
}

func NewCacheRepository(rdb *config.RedisClient) *CacheRepository {
	return &CacheRepository{rdb}
}

func (r *CacheRepository) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	cmd := r.client.Client.Set(ctx, key, value, ttl)
	if err := cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *CacheRepository) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperr.ErrNotFound // нет в кэше или истёк TTL
	} else if err != nil {
		return "", util.LogError("ошибка получения значения из Redis", err)
	}
	return val, nil
}

func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Client.Del(ctx, key).Err(); err != nil {
		return util.LogError("ошибка удаления ключа из Redis", err)
	}
	return nil
}

func (r *CacheRepository) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.client.Client.TTL(ctx, key).Result()
	if err != nil {
		return 0, util.LogError("ошибка получения TTL из Redis", err)
	}
	return ttl, nil
}

// Scan : постраничный обход ключей по шаблону, не блокирует Redis в отличие от KEYS
func (r *CacheRepository) Scan(ctx context.Context, pattern string, cursor uint64, count int64) ([]string, uint64, error) {
	keys, next, err := r.client.Client.Scan(ctx, cursor, pattern, count).Result()
	if err != nil {
		return nil, 0, util.LogError("ошибка сканирования ключей Redis", err)
	}
	return keys, next, nil
}

// MGet : значения в порядке ключей, пустая строка для отсутствующих
func (r *CacheRepository) MGet(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	raw, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, util.LogError("ошибка группового чтения из Redis", err)
	}

	values := make([]string, len(raw))
	for i, v := range raw {
		if s, ok := v.(string); ok {
			values[i] = s
		}
	}
	return values, nil
}
