package ports

import (
	"context"
	"time"
)

// EphemeralStore : Redis слой — key/value с TTL на каждый ключ
type EphemeralStore interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get возвращает apperr.ErrNotFound, если ключа нет или он истёк
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// TTL возвращает оставшееся время жизни ключа
	TTL(ctx context.Context, key string) (time.Duration, error)
	// Scan — постраничный обход ключей по шаблону (cursor-based)
	Scan(ctx context.Context, pattern string, cursor uint64, count int64) ([]string, uint64, error)
	// MGet возвращает значения в порядке ключей, "" для отсутствующих
	MGet(ctx context.Context, keys []string) ([]string, error)
}
