package service

import (
	"context"
	"time"
)

// Cache is a byte-oriented TTL cache. Get reports a miss with ok=false and
// a nil error; errors are reserved for transport failures.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Clock is injected wherever "now" matters so tests can pin time.
type Clock func() time.Time
