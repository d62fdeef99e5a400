package cache

import "time"

// BytesCache stores serialized responses with a TTL. Implemented by the
// in-process TTLCache and the redis-backed LayeredBytes adapter.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
