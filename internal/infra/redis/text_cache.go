package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizforge/internal/domain"
	"quizforge/internal/extract"
)

// TextCache caches extracted PDF text in Redis (hash per document) and falls
// back to the wrapped extractor on a miss.
// Stored as: HSET quizforge:text:{sha256} text {text} reason {degradedReason}
type TextCache struct {
	client *redis.Client
	next   extract.PDFExtractor
	ttl    time.Duration
	sf     singleflight.Group
}

func NewTextCache(client *redis.Client, next extract.PDFExtractor, ttl time.Duration) *TextCache {
	return &TextCache{client: client, next: next, ttl: ttl}
}

func (c *TextCache) ExtractPDF(ctx context.Context, data []byte) (domain.Outcome[string], error) {
	sum := sha256.Sum256(data)
	key := c.textKey(hex.EncodeToString(sum[:]))

	if out, ok := c.lookup(ctx, key); ok {
		return out, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if out, ok := c.lookup(ctx, key); ok {
			return out, nil
		}

		out, err := c.next.ExtractPDF(ctx, data)
		if err != nil {
			return domain.Outcome[string]{}, err
		}

		pipe := c.client.Pipeline()
		pipe.HSet(ctx, key, "text", out.Value, "reason", out.Reason)
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return out, nil
	})
	if err != nil {
		return domain.Outcome[string]{}, err
	}
	return result.(domain.Outcome[string]), nil
}

func (c *TextCache) lookup(ctx context.Context, key string) (domain.Outcome[string], bool) {
	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return domain.Outcome[string]{}, false
	}
	text, ok := fields["text"]
	if !ok {
		return domain.Outcome[string]{}, false
	}
	return domain.Outcome[string]{Value: text, Reason: fields["reason"]}, true
}

func (c *TextCache) textKey(digest string) string {
	return "quizforge:text:" + digest
}

func (c *TextCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int64N(jitterMax+1))
}
