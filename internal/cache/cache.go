package cache

import (
	"context"
	"time"
)

// Store is the read-through cache used by content endpoints. Values are
// JSON blobs; a miss is (nil, nil). Order state is never cached.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Disabled is the no-op store used when the admin-selected strategy
// does not involve the external cache. Every Get is a miss.
type Disabled struct{}

func (Disabled) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }

func (Disabled) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (Disabled) Delete(ctx context.Context, key string) error { return nil }
