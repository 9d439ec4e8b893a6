package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/campushub/registrar/internal/domain/course"
	"github.com/redis/go-redis/v9"
)

const catalogKey = "courses:catalog:v1"

// CourseCatalog caches the full course listing. The catalog changes
// only on admin mutations, which invalidate it; a short TTL covers
// anything that slips through.
type CourseCatalog interface {
	Get(ctx context.Context) ([]course.Course, bool)
	Set(ctx context.Context, courses []course.Course)
	Invalidate(ctx context.Context)
}

// MemoryCatalog keeps the catalog per-process.
type MemoryCatalog struct {
	c *Cache
}

func NewMemoryCatalog(ttl time.Duration) *MemoryCatalog {
	return &MemoryCatalog{c: New(ttl)}
}

func (m *MemoryCatalog) Get(_ context.Context) ([]course.Course, bool) {
	v, ok := m.c.Get(catalogKey)
	if !ok {
		return nil, false
	}

	courses, ok := v.([]course.Course)
	return courses, ok
}

func (m *MemoryCatalog) Set(_ context.Context, courses []course.Course) {
	m.c.Set(catalogKey, courses)
}

func (m *MemoryCatalog) Invalidate(_ context.Context) {
	m.c.Delete(catalogKey)
}

// RedisCatalog shares the catalog across instances. Failures degrade to
// a cache miss, never to a request failure.
type RedisCatalog struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func NewRedisCatalog(rdb *redis.Client, ttl time.Duration) *RedisCatalog {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &RedisCatalog{rdb: rdb, ttl: ttl}
}

func (r *RedisCatalog) Get(ctx context.Context) ([]course.Course, bool) {
	raw, err := r.rdb.Get(ctx, catalogKey).Bytes()
	if err != nil {
		return nil, false
	}

	var courses []course.Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, false
	}

	return courses, true
}

func (r *RedisCatalog) Set(ctx context.Context, courses []course.Course) {
	raw, err := json.Marshal(courses)
	if err != nil {
		return
	}

	_ = r.rdb.Set(ctx, catalogKey, raw, r.ttl).Err()
}

func (r *RedisCatalog) Invalidate(ctx context.Context) {
	_ = r.rdb.Del(ctx, catalogKey).Err()
}
