// Package cache stores validated recommendations in Redis so repeat visits
// to a page skip the generative backend entirely.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sonicpdf/model"
)

// ErrCacheMiss is returned when a page has no cached recommendation.
var ErrCacheMiss = errors.New("recommendation not in cache")

// RecommendationCache keys entries by document and page. Entries expire so a
// changed document or prompt eventually refreshes.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecommendationCache wraps a Redis client. A zero ttl means entries
// never expire.
func NewRecommendationCache(client *redis.Client, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{client: client, ttl: ttl}
}

func recommendationKey(docID int64, page int) string {
	return fmt.Sprintf("rec:%d:%d", docID, page)
}

// Get fetches a cached recommendation, ErrCacheMiss when absent.
func (c *RecommendationCache) Get(ctx context.Context, docID int64, page int) (model.Recommendation, error) {
	var rec model.Recommendation
	if c.client == nil {
		return rec, ErrCacheMiss
	}

	raw, err := c.client.Get(ctx, recommendationKey(docID, page)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return rec, ErrCacheMiss
		}
		return rec, fmt.Errorf("failed to read recommendation cache: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// A corrupt entry behaves like a miss and gets overwritten.
		return model.Recommendation{}, ErrCacheMiss
	}
	return rec, nil
}

// Put stores a recommendation for a page.
func (c *RecommendationCache) Put(ctx context.Context, docID int64, page int, rec model.Recommendation) error {
	if c.client == nil {
		return nil
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}
	if err := c.client.Set(ctx, recommendationKey(docID, page), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write recommendation cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached page of a document.
func (c *RecommendationCache) Invalidate(ctx context.Context, docID int64) error {
	if c.client == nil {
		return nil
	}

	pattern := fmt.Sprintf("rec:%d:*", docID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to drop cached recommendation: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan recommendation keys: %w", err)
	}
	return nil
}
