// Package ai talks to the external mood analysis provider. The provider is optional:
// callers treat every error from it as "no AI recommendations this time".
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks github.com/JonnyWalker81/moodlens/backend/internal/ai Provider

// ErrUnavailable means the provider could not produce an analysis
var ErrUnavailable = errors.New("ai provider unavailable")

// DefaultAnalysisType is requested when the caller does not name one
const DefaultAnalysisType = "mood_patterns"

// Provider produces recommendations for a window of entries
type Provider interface {
	RequestAnalysis(ctx context.Context, userID string, entries []models.MoodEntry, analysisType string) (*models.AIAnalysis, error)
}

// HTTPProvider posts entries as JSON to an analysis endpoint
type HTTPProvider struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

// NewHTTPProvider creates a provider. The client timeout is a backstop; callers
// bound each request with their own context deadline.
func NewHTTPProvider(endpoint, apiKey string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Free text never leaves the service
type analysisEntry struct {
	Timestamp         time.Time         `json:"timestamp"`
	MoodScore         int               `json:"mood_score"`
	MoodLabel         models.MoodLabel  `json:"mood_label"`
	Activities        []models.Activity `json:"activities"`
	StressLevel       *int              `json:"stress_level,omitempty"`
	EnergyLevel       *int              `json:"energy_level,omitempty"`
	SocialInteraction *int              `json:"social_interaction,omitempty"`
	SleepHours        *float64          `json:"sleep_hours,omitempty"`
}

type analysisRequest struct {
	UserID       string          `json:"user_id"`
	AnalysisType string          `json:"analysis_type"`
	Entries      []analysisEntry `json:"entries"`
}

type analysisResponse struct {
	MoodTrend       string `json:"mood_trend"`
	Summary         string `json:"summary"`
	Recommendations []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	} `json:"recommendations"`
}

// RequestAnalysis implements Provider
func (p *HTTPProvider) RequestAnalysis(ctx context.Context, userID string, entries []models.MoodEntry, analysisType string) (*models.AIAnalysis, error) {
	if analysisType == "" {
		analysisType = DefaultAnalysisType
	}

	payload := analysisRequest{
		UserID:       userID,
		AnalysisType: analysisType,
		Entries:      make([]analysisEntry, 0, len(entries)),
	}
	for _, e := range entries {
		payload.Entries = append(payload.Entries, analysisEntry{
			Timestamp:         e.Timestamp.UTC(),
			MoodScore:         e.MoodScore,
			MoodLabel:         e.MoodLabel,
			Activities:        e.Activities,
			StressLevel:       e.StressLevel,
			EnergyLevel:       e.EnergyLevel,
			SocialInteraction: e.SocialInteraction,
			SleepHours:        e.SleepHours,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var decoded analysisResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	analysis := &models.AIAnalysis{
		UserID:          userID,
		AnalysisType:    analysisType,
		MoodTrend:       normalizeTrend(decoded.MoodTrend),
		Summary:         decoded.Summary,
		Recommendations: make([]models.Insight, 0, len(decoded.Recommendations)),
		GeneratedAt:     p.now().UTC(),
	}
	for _, r := range decoded.Recommendations {
		if r.Title == "" {
			continue
		}
		analysis.Recommendations = append(analysis.Recommendations, models.Insight{
			Title:       r.Title,
			Description: r.Description,
			Priority:    normalizePriority(r.Priority),
			Category:    models.InsightCategoryAI,
			Source:      models.InsightSourceAI,
		})
	}

	return analysis, nil
}

func normalizePriority(p string) models.Priority {
	switch models.Priority(p) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return models.Priority(p)
	}
	return models.PriorityLow
}

func normalizeTrend(t string) models.Trend {
	switch models.Trend(t) {
	case models.TrendImproving, models.TrendDeclining, models.TrendStable:
		return models.Trend(t)
	}
	return models.TrendUnknown
}
