package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/JonnyWalker81/moodlens/backend/internal/metrics"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

// IdempotencyStore records successful responses keyed by Idempotency-Key, route and user
type IdempotencyStore struct {
	client *Client
	ttl    time.Duration
}

// NewIdempotencyStore creates an idempotency store
func NewIdempotencyStore(client *Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func idempotencyKey(key, route, userID string) string {
	return fmt.Sprintf("%sidempotency:%s:%s:%s", keyPrefix, userID, route, key)
}

// Get returns the stored response, or nil when the key has not been seen
func (s *IdempotencyStore) Get(ctx context.Context, key, route, userID string) (*models.IdempotentResponse, error) {
	data, err := s.client.getBytes(ctx, idempotencyKey(key, route, userID))
	if errors.Is(err, ErrMiss) {
		metrics.CacheMiss("idempotency")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp models.IdempotentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode idempotent response: %w", err)
	}
	metrics.CacheHit("idempotency")
	return &resp, nil
}

// Store saves a response. An existing record for the same key is kept.
func (s *IdempotencyStore) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	if len(responseBody) == 0 {
		responseBody = nil
	}
	data, err := json.Marshal(models.IdempotentResponse{
		StatusCode:   statusCode,
		ResponseBody: responseBody,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode idempotent response: %w", err)
	}

	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()
	if err := s.client.rdb.SetNX(ctx, idempotencyKey(key, route, userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
