package ports

import (
	"context"
	"time"
)

// Port: a JSON response cache. A miss is (false, nil); callers treat cache
// errors as misses.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
