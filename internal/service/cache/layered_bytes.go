package cache

import (
	"context"
	"errors"
	"time"

	pkgcache "FinSight/pkg/cache"
)

// LayeredBytes adapts a pkg/cache Service (redis or layered) to the
// BytesCache API used by the HTTP handlers.
type LayeredBytes struct {
	svc pkgcache.Service
}

// NewLayeredBytes wraps a cache service.
func NewLayeredBytes(svc pkgcache.Service) *LayeredBytes {
	return &LayeredBytes{svc: svc}
}

func (c *LayeredBytes) GetBytes(key string) ([]byte, bool, error) {
	var s string
	err := c.svc.Get(context.Background(), key, &s)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(s), true, nil
}

func (c *LayeredBytes) SetBytes(key string, value []byte, ttl time.Duration) error {
	return c.svc.Set(context.Background(), key, string(value), ttl)
}
