package cache

import "context"

// NoOpCache is a cache implementation that does nothing.
// Used as a fallback when Redis is unavailable - all operations succeed
// but every lookup is a miss, so counts are always recomputed.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// GetCount always reports a miss
func (c *NoOpCache) GetCount(ctx context.Context, key string) (int, bool, error) {
	return 0, false, nil
}

// SetCount does nothing and always succeeds
func (c *NoOpCache) SetCount(ctx context.Context, key string, count int) error {
	return nil
}

// Close does nothing and always succeeds
func (c *NoOpCache) Close() error {
	return nil
}
