package cache

import "context"

// Cache memoizes token counts. Tokenization is deterministic, so entries
// never need invalidation; a miss just means the count gets recomputed.
type Cache interface {
	// GetCount retrieves a cached token count by key.
	// The second return is false on a miss.
	GetCount(ctx context.Context, key string) (int, bool, error)

	// SetCount stores a token count under key.
	SetCount(ctx context.Context, key string, count int) error

	// Close closes the cache connection.
	Close() error
}
