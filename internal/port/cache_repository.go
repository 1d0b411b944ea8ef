package port

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss reports that the key has no cached value. Callers treat a
// miss and any other cache failure the same way (fall back to the ledger);
// the distinction only matters for logging.
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository is a read accelerator, never authoritative. All
// implementations are best-effort: a failing cache must not fail a request.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
