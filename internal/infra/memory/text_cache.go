package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizforge/internal/domain"
	"quizforge/internal/extract"
)

// TextCache caches extracted PDF text by content hash with TTL to avoid
// re-extracting the same upload.
type TextCache struct {
	next  extract.PDFExtractor
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedText
}

type cachedText struct {
	text      domain.Outcome[string]
	expiresAt time.Time
}

func NewTextCache(next extract.PDFExtractor, ttl time.Duration) *TextCache {
	return &TextCache{
		next:  next,
		ttl:   ttl,
		clock: time.Now,
		cache: make(map[string]cachedText),
	}
}

func (c *TextCache) ExtractPDF(ctx context.Context, data []byte) (domain.Outcome[string], error) {
	key := ContentKey(data)

	if out, ok := c.lookup(key); ok {
		return out, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if out, ok := c.lookup(key); ok {
			return out, nil
		}
		out, err := c.next.ExtractPDF(ctx, data)
		if err != nil {
			return domain.Outcome[string]{}, err
		}

		c.mu.Lock()
		c.cache[key] = cachedText{
			text:      out,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return domain.Outcome[string]{}, err
	}
	return result.(domain.Outcome[string]), nil
}

func (c *TextCache) lookup(key string) (domain.Outcome[string], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Outcome[string]{}, false
	}
	return entry.text, true
}

func (c *TextCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int64N(jitterMax+1))
}

// ContentKey is the hex SHA-256 of data.
func ContentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
