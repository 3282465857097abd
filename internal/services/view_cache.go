package services

import (
	"context"
	"tanker-dispatch-service/internal/domain"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/ports"
	"time"
)

// viewCache wraps the optional response cache. Cache failures are logged and
// treated as misses so reads always fall through to the store.
type viewCache struct {
	cache ports.Cache
	ttl   time.Duration
	log   *logger.Logger
}

func weekKey(weekStart time.Time) string {
	return "week:" + domain.DateOf(weekStart).Format(time.DateOnly)
}

func scheduleKey(date time.Time) string {
	return "schedule:" + domain.DateOf(date).Format(time.DateOnly)
}

func (v viewCache) get(ctx context.Context, key string, dst any) bool {
	if v.cache == nil {
		return false
	}
	ok, err := v.cache.Get(ctx, key, dst)
	if err != nil {
		v.log.Error(ctx, "cache_get_failed", "Cache read failed", err, map[string]any{"key": key})
		return false
	}
	return ok
}

func (v viewCache) set(ctx context.Context, key string, value any) {
	if v.cache == nil {
		return
	}
	if err := v.cache.Set(ctx, key, value, v.ttl); err != nil {
		v.log.Error(ctx, "cache_set_failed", "Cache write failed", err, map[string]any{"key": key})
	}
}

func (v viewCache) invalidate(ctx context.Context, keys ...string) {
	if v.cache == nil || len(keys) == 0 {
		return
	}
	if err := v.cache.Delete(ctx, keys...); err != nil {
		v.log.Error(ctx, "cache_invalidate_failed", "Cache invalidation failed", err, map[string]any{"keys": keys})
	}
}
