package tokenizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"doc-segmenter/internal/cache"
)

const cacheOpTimeout = 2 * time.Second

// Cached decorates a Counter with count memoization. Counting is
// deterministic, so cached entries are trusted forever; cache errors
// degrade to recomputing and never fail a count.
type Cached struct {
	inner Counter
	store cache.Cache
	log   *slog.Logger
}

// NewCached wraps inner with the given cache.
func NewCached(inner Counter, store cache.Cache, log *slog.Logger) *Cached {
	return &Cached{inner: inner, store: store, log: log}
}

func (c *Cached) Count(text string) int {
	key := c.key(text)
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	if count, ok, err := c.store.GetCount(ctx, key); err == nil && ok {
		return count
	} else if err != nil {
		c.log.Debug("token cache read failed", "err", err)
	}

	count := c.inner.Count(text)
	if err := c.store.SetCount(ctx, key, count); err != nil {
		c.log.Debug("token cache write failed", "err", err)
	}
	return count
}

func (c *Cached) Truncate(text string, maxTokens int) string {
	return c.inner.Truncate(text, maxTokens)
}

func (c *Cached) Encoding() string {
	return c.inner.Encoding()
}

// key hashes the text so arbitrarily long sections stay within key size
// limits; the encoding name keeps counts from different tokenizers apart.
func (c *Cached) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.inner.Encoding() + ":" + hex.EncodeToString(sum[:])
}
