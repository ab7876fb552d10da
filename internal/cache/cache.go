package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/irenemg8/chatbot-sub001/internal/models"
)

const (
	KeyPatterns = "privacy:patterns"

	patternTTL = 5 * time.Minute
)

// PatternCache keeps the merged custom-pattern set in Redis so repeated
// classifier rebuilds skip the database. Cache failures degrade to a
// miss, never to an error for the caller.
type PatternCache struct {
	rdb *redis.Client
}

// NewRedis connects a Redis client from a redis:// URL.
func NewRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func NewPatternCache(rdb *redis.Client) *PatternCache {
	return &PatternCache{rdb: rdb}
}

// Get returns the cached pattern set, or ok=false on miss or error.
func (c *PatternCache) Get(ctx context.Context) ([]models.Pattern, bool) {
	raw, err := c.rdb.Get(ctx, KeyPatterns).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Pattern cache read failed: %v", err)
		}
		return nil, false
	}
	var patterns []models.Pattern
	if err := json.Unmarshal(raw, &patterns); err != nil {
		log.Printf("Pattern cache payload corrupt, ignoring: %v", err)
		return nil, false
	}
	return patterns, true
}

// Set stores the pattern set with a TTL.
func (c *PatternCache) Set(ctx context.Context, patterns []models.Pattern) {
	raw, err := json.Marshal(patterns)
	if err != nil {
		log.Printf("Pattern cache marshal failed: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, KeyPatterns, raw, patternTTL).Err(); err != nil {
		log.Printf("Pattern cache write failed: %v", err)
	}
}

// Clear drops the cached pattern set.
func (c *PatternCache) Clear(ctx context.Context) {
	if err := c.rdb.Del(ctx, KeyPatterns).Err(); err != nil {
		log.Printf("Pattern cache clear failed: %v", err)
	}
}
