package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// Cache stores opaque byte payloads with an expiry.
type Cache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key that starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// GetJSON decodes a cached JSON value into dst.
func GetJSON(ctx context.Context, c Cache, key string, dst any) (bool, error) {
	if c == nil {
		return false, nil
	}

	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, eris.Wrapf(err, "decoding cached value: %s", key)
	}
	return true, nil
}

// SetJSON encodes value as JSON and stores it.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	if c == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return eris.Wrapf(err, "encoding cache value: %s", key)
	}
	return c.Set(ctx, key, raw, ttl)
}
