package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	"github.com/redis/go-redis/v9"
)

// ErrRecordNotFound is returned by Records.Get for an absent or expired key.
var ErrRecordNotFound = errors.New("record not found")

// Records is the durable key/value mirror behind the cart and admin stores.
type Records interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type RedisRecords struct {
	rdb redis.Cmdable
}

func NewRedisRecords(rdb redis.Cmdable) (*RedisRecords, error) {
	if rdb == nil {
		return nil, errors.New("redis client must be non-nil")
	}
	return &RedisRecords{rdb: rdb}, nil
}

func (r *RedisRecords) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, models.WrapRedis(err)
	}
	return val, nil
}

func (r *RedisRecords) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return models.WrapRedis(r.rdb.Set(ctx, key, value, ttl).Err())
}

func (r *RedisRecords) Delete(ctx context.Context, key string) error {
	return models.WrapRedis(r.rdb.Del(ctx, key).Err())
}

type memoryRecord struct {
	value     []byte
	expiresAt time.Time
}

// MemoryRecords keeps records in process memory. Used when no Redis is
// configured and in tests.
type MemoryRecords struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	now     func() time.Time
}

func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

func (m *MemoryRecords) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if !rec.expiresAt.IsZero() && !m.now().Before(rec.expiresAt) {
		delete(m.records, key)
		return nil, ErrRecordNotFound
	}
	out := make([]byte, len(rec.value))
	copy(out, rec.value)
	return out, nil
}

func (m *MemoryRecords) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	rec := memoryRecord{value: make([]byte, len(value))}
	copy(rec.value, value)
	if ttl > 0 {
		rec.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.records[key] = rec
	m.mu.Unlock()
	return nil
}

func (m *MemoryRecords) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.records, key)
	m.mu.Unlock()
	return nil
}

var (
	_ Records = (*RedisRecords)(nil)
	_ Records = (*MemoryRecords)(nil)
)
