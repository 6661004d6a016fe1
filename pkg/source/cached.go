package source

import (
	"context"
	"errors"
	"time"

	"github.com/matst80/council-finder/pkg/cache"
	"github.com/matst80/council-finder/pkg/common/jsoncompat"
	"github.com/matst80/council-finder/pkg/types"
	"go.uber.org/zap"
)

const rawKeyPrefix = "council:raw:"

type cachedPayload struct {
	Format types.RawFormat `json:"format"`
	Data   []byte          `json:"data"`
}

// CachedSource is a read-through cache in front of another DataSource.
// Cache failures are logged and never fail a fetch.
type CachedSource struct {
	Source     types.DataSource
	Cache      cache.Store
	Expiration time.Duration
	logger     *zap.Logger
}

func NewCachedSource(src types.DataSource, store cache.Store, expiration time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{
		Source:     src,
		Cache:      store,
		Expiration: expiration,
		logger:     logger,
	}
}

func RawKey(code string) string {
	return rawKeyPrefix + code
}

func (c *CachedSource) Fetch(ctx context.Context, m types.Municipality) (*types.RawRecords, error) {
	key := RawKey(m.Code)
	data, err := c.Cache.GetRaw(ctx, key)
	if err == nil {
		var p cachedPayload
		if err = jsoncompat.Unmarshal(data, &p); err == nil {
			return &types.RawRecords{Municipality: m, Format: p.Format, Data: p.Data}, nil
		}
		c.logger.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
	} else if !errors.Is(err, cache.ErrMiss) {
		c.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
	}

	raw, err := c.Source.Fetch(ctx, m)
	if err != nil {
		return nil, err
	}
	payload, err := jsoncompat.Marshal(cachedPayload{Format: raw.Format, Data: raw.Data})
	if err == nil {
		err = c.Cache.SetRaw(ctx, key, payload, c.Expiration)
	}
	if err != nil {
		c.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
	return raw, nil
}

// Invalidate drops the cached payloads of the given municipality codes.
func (c *CachedSource) Invalidate(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = RawKey(code)
	}
	return c.Cache.Delete(ctx, keys...)
}
