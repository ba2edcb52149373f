package models

import (
	"encoding/json"
	"time"
)

// Trend is the classified direction of mood change over a window
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
	TrendUnknown   Trend = "unknown"
)

// Season is a calendar-month season bucket
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

// Factor is an optional numeric entry field that can be correlated with mood
type Factor string

const (
	FactorStress            Factor = "stress_level"
	FactorEnergy            Factor = "energy_level"
	FactorSocialInteraction Factor = "social_interaction"
	FactorSleepHours        Factor = "sleep_hours"
)

// AllFactors lists every correlatable factor
var AllFactors = []Factor{FactorStress, FactorEnergy, FactorSocialInteraction, FactorSleepHours}

// BasicStats holds scalar summary statistics for a window.
// A nil *BasicStats means the window had no entries.
type BasicStats struct {
	AverageScore float64 `json:"average_score"`
	MinScore     int     `json:"min_score"`
	MaxScore     int     `json:"max_score"`
	TotalEntries int     `json:"total_entries"`
}

// FieldAverages holds means of the optional numeric fields.
// A nil field means no entry in the window carried it.
type FieldAverages struct {
	StressLevel       *float64 `json:"stress_level"`
	EnergyLevel       *float64 `json:"energy_level"`
	SocialInteraction *float64 `json:"social_interaction"`
	SleepHours        *float64 `json:"sleep_hours"`
}

// AnalyticsSnapshot is derived on demand from a window of entries
type AnalyticsSnapshot struct {
	WindowStart         time.Time            `json:"window_start"`
	WindowEnd           time.Time            `json:"window_end"`
	BasicStats          *BasicStats          `json:"basic_stats"`
	MoodDistribution    map[MoodLabel]int    `json:"mood_distribution"`
	FieldAverages       FieldAverages        `json:"field_averages"`
	Trend               Trend                `json:"trend"`
	TrendStrength       *float64             `json:"trend_strength"`
	MoodVariability     *float64             `json:"mood_variability"`
	MoodStability       *float64             `json:"mood_stability"`
	TimePatterns        map[int]float64      `json:"time_patterns"`
	WeeklyPatterns      map[int]float64      `json:"weekly_patterns"`
	SeasonalPatterns    map[Season]float64   `json:"seasonal_patterns"`
	ActivityCorrelation map[Activity]float64 `json:"activity_correlation"`
	ActivityRanking     []ActivityImpact     `json:"activity_ranking"`
	FactorCorrelation   map[Factor]float64   `json:"factor_correlation"`
}

// ActivityImpact is the mean score of entries carrying one activity tag
type ActivityImpact struct {
	Activity  Activity `json:"activity"`
	MeanScore float64  `json:"mean_score"`
	Count     int      `json:"count"`
}

// Priority is the urgency of an insight
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities; higher is more urgent. Unknown priorities rank as low.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// InsightCategory groups insights by what produced them
type InsightCategory string

const (
	InsightCategoryTrend     InsightCategory = "trend"
	InsightCategoryActivity  InsightCategory = "activity"
	InsightCategoryStability InsightCategory = "stability"
	InsightCategoryTemporal  InsightCategory = "temporal"
	InsightCategoryWellbeing InsightCategory = "wellbeing"
	InsightCategoryFactor    InsightCategory = "factor"
	InsightCategoryAI        InsightCategory = "ai"
)

// InsightSource distinguishes rule-based insights from provider recommendations
type InsightSource string

const (
	InsightSourceRule InsightSource = "rule"
	InsightSourceAI   InsightSource = "ai"
)

// Insight is a human-readable observation or recommendation
type Insight struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    Priority        `json:"priority"`
	Category    InsightCategory `json:"category"`
	Source      InsightSource   `json:"source"`
	MetricValue *float64        `json:"metric_value,omitempty"`
}

// AIStatus reports what happened with the external analysis provider
type AIStatus string

const (
	AIStatusOK          AIStatus = "ok"
	AIStatusUnavailable AIStatus = "unavailable"
	AIStatusTimeout     AIStatus = "timeout"
	AIStatusDisabled    AIStatus = "disabled"
	AIStatusNoConsent   AIStatus = "no_consent"
)

// Dashboard is the response for a dashboard fetch
type Dashboard struct {
	Snapshot   *AnalyticsSnapshot `json:"snapshot"`
	Insights   []Insight          `json:"insights"`
	Goals      []MoodGoal         `json:"goals"`
	AIStatus   AIStatus           `json:"ai_status"`
	ComputedAt time.Time          `json:"computed_at"`
}

// ExportBundle is handed unmodified to the export collaborator
type ExportBundle struct {
	UserID      string             `json:"user_id"`
	WindowStart time.Time          `json:"window_start"`
	WindowEnd   time.Time          `json:"window_end"`
	Entries     []MoodEntry        `json:"entries"`
	Snapshot    *AnalyticsSnapshot `json:"snapshot"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// AIAnalysis is the result of one external analysis request
type AIAnalysis struct {
	UserID          string    `json:"user_id"`
	AnalysisType    string    `json:"analysis_type"`
	MoodTrend       Trend     `json:"mood_trend,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Recommendations []Insight `json:"recommendations"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// IdempotentResponse is a stored response replayed for a repeated Idempotency-Key
type IdempotentResponse struct {
	StatusCode   int             `json:"status_code"`
	ResponseBody json.RawMessage `json:"response_body"`
	CreatedAt    time.Time       `json:"created_at"`
}
