package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matst80/council-finder/pkg/common/jsoncompat"
	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

// Store is the raw byte interface the rest of the module caches through.
type Store interface {
	GetRaw(ctx context.Context, key string) ([]byte, error)
	SetRaw(ctx context.Context, key string, data []byte, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type localEntry struct {
	expires time.Time
	data    []byte
}

// Cache is a redis backed Store with a short lived in-process layer in front.
type Cache struct {
	Addr     string
	Password string
	DB       int
	LocalTTL time.Duration
	client   *redis.Client
	mu       sync.RWMutex
	memCache map[string]localEntry
}

func NewCache(addr, password string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{
		Addr:     addr,
		Password: password,
		DB:       db,
		LocalTTL: time.Minute,
		client:   rdb,
		memCache: make(map[string]localEntry),
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) GetRaw(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	local, found := c.memCache[key]
	c.mu.RUnlock()
	if found {
		if time.Now().Before(local.expires) {
			return local.data, nil
		}
		c.mu.Lock()
		delete(c.memCache, key)
		c.mu.Unlock()
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	c.setLocal(key, data, c.LocalTTL)
	return data, nil
}

func (c *Cache) SetRaw(ctx context.Context, key string, data []byte, expiration time.Duration) error {
	c.setLocal(key, data, min(expiration, c.LocalTTL))
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.memCache, key)
	}
	c.mu.Unlock()
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) setLocal(key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.memCache[key] = localEntry{expires: time.Now().Add(ttl), data: data}
	c.mu.Unlock()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Helper caches the json form of T in a Store.
type Helper[T any] struct {
	Store Store
}

func NewHelper[T any](store Store) *Helper[T] {
	return &Helper[T]{Store: store}
}

// Handle reads key into out, or computes it with fn and stores the result.
// A nil Store always computes.
func (c *Helper[T]) Handle(ctx context.Context, key string, out *T, fn func() (T, error), expiration time.Duration) error {
	if c == nil || c.Store == nil {
		v, err := fn()
		*out = v
		return err
	}
	if data, err := c.Store.GetRaw(ctx, key); err == nil {
		if err = jsoncompat.Unmarshal(data, out); err == nil {
			return nil
		}
	}
	v, err := fn()
	if err != nil {
		return err
	}
	*out = v
	data, err := jsoncompat.Marshal(v)
	if err != nil {
		return err
	}
	return c.Store.SetRaw(ctx, key, data, expiration)
}
