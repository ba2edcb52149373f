package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/pkg/supabase"
)

const idempotencyTable = "idempotency_keys"

// IdempotencyRepository stores replayable responses in Postgres. It backs the
// idempotency middleware when Redis is disabled.
type IdempotencyRepository struct {
	client *supabase.Client
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(client *supabase.Client) *IdempotencyRepository {
	return &IdempotencyRepository{client: client}
}

// Get returns the stored response, or nil when the key has not been seen
func (r *IdempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotentResponse, error) {
	query := supabase.Filters{}
	query.Set("key", supabase.Eq(key))
	query.Set("route", supabase.Eq(route))
	query.Set("user_id", supabase.Eq(userID))
	query.Set("select", "status_code,response_body,created_at")

	body, err := r.client.Query(ctx, idempotencyTable, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}

	var rows []models.IdempotentResponse
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency keys: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil // Not found - this is not an error
	}

	return &rows[0], nil
}

// Store saves a response. The first stored response for a key wins.
func (r *IdempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	data := map[string]interface{}{
		"key":         key,
		"route":       route,
		"user_id":     userID,
		"status_code": statusCode,
	}
	if len(responseBody) > 0 {
		data["response_body"] = json.RawMessage(responseBody)
	}

	if _, err := r.client.Insert(ctx, idempotencyTable, data); err != nil {
		if supabase.IsStatus(err, http.StatusConflict) {
			return nil
		}
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}

	return nil
}
