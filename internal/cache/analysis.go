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

// AnalysisStore keeps the most recent external analysis per user so clients can
// pull it without triggering a new provider call.
type AnalysisStore struct {
	client *Client
	ttl    time.Duration
}

// NewAnalysisStore creates an analysis store. A zero ttl keeps results until replaced.
func NewAnalysisStore(client *Client, ttl time.Duration) *AnalysisStore {
	return &AnalysisStore{client: client, ttl: ttl}
}

func analysisKey(userID string) string {
	return keyPrefix + "analysis:latest:" + userID
}

// SaveLatest replaces the stored analysis for the analysis owner
func (s *AnalysisStore) SaveLatest(ctx context.Context, analysis *models.AIAnalysis) error {
	if analysis.UserID == "" {
		return fmt.Errorf("analysis has no user id")
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	return s.client.setBytes(ctx, analysisKey(analysis.UserID), data, s.ttl)
}

// Latest returns the stored analysis or ErrMiss
func (s *AnalysisStore) Latest(ctx context.Context, userID string) (*models.AIAnalysis, error) {
	data, err := s.client.getBytes(ctx, analysisKey(userID))
	if errors.Is(err, ErrMiss) {
		metrics.CacheMiss("analysis")
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var analysis models.AIAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	metrics.CacheHit("analysis")
	return &analysis, nil
}
