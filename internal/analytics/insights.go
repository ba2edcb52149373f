package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

// Insight generation thresholds
const (
	// UrgentDeclineStrength escalates a declining trend from high to urgent
	UrgentDeclineStrength = 0.75
	// LowStabilityThreshold flags fluctuating mood below this stability
	LowStabilityThreshold = 0.5
	// HighStabilityThreshold flags steady mood at or above this stability
	HighStabilityThreshold = 0.8
	// MinEntriesForPattern is the fewest entries a temporal insight is drawn from
	MinEntriesForPattern = 7
	// LowWellbeingAverage flags a window whose average score is at or below it
	LowWellbeingAverage = 2.0
	// MinEntriesForWellbeing is the fewest entries the wellbeing check needs
	MinEntriesForWellbeing = 3
	// StrongFactorCorrelation is the |r| at which a factor insight is emitted
	StrongFactorCorrelation = 0.5
)

var factorNames = map[models.Factor]string{
	models.FactorStress:            "stress",
	models.FactorEnergy:            "energy",
	models.FactorSocialInteraction: "social interaction",
	models.FactorSleepHours:        "sleep",
}

// GenerateInsights derives rule-based insights from a snapshot.
// A snapshot with no entries yields no insights.
func GenerateInsights(snap *models.AnalyticsSnapshot) []models.Insight {
	insights := []models.Insight{}
	if snap == nil || snap.BasicStats == nil {
		return insights
	}

	if in, ok := wellbeingInsight(snap); ok {
		insights = append(insights, in)
	}
	if in, ok := trendInsight(snap); ok {
		insights = append(insights, in)
	}
	if in, ok := activityInsight(snap); ok {
		insights = append(insights, in)
	}
	if in, ok := stabilityInsight(snap); ok {
		insights = append(insights, in)
	}
	insights = append(insights, factorInsights(snap)...)
	insights = append(insights, temporalInsights(snap)...)

	return insights
}

func ruleInsight(category models.InsightCategory, priority models.Priority, title, description string, metric float64) models.Insight {
	return models.Insight{
		Title:       title,
		Description: description,
		Priority:    priority,
		Category:    category,
		Source:      models.InsightSourceRule,
		MetricValue: &metric,
	}
}

func trendInsight(snap *models.AnalyticsSnapshot) (models.Insight, bool) {
	if snap.Trend == models.TrendUnknown || snap.Trend == "" || snap.TrendStrength == nil {
		return models.Insight{}, false
	}
	strength := *snap.TrendStrength

	switch snap.Trend {
	case models.TrendDeclining:
		priority := models.PriorityHigh
		if strength >= UrgentDeclineStrength {
			priority = models.PriorityUrgent
		}
		return ruleInsight(models.InsightCategoryTrend, priority,
			"Your mood has been declining",
			"Scores have dropped over this period. Consider what has changed recently and reach out to someone you trust.",
			strength), true
	case models.TrendImproving:
		return ruleInsight(models.InsightCategoryTrend, models.PriorityLow,
			"Your mood is improving",
			"Scores have risen over this period. Keep doing what is working.",
			strength), true
	default:
		return ruleInsight(models.InsightCategoryTrend, models.PriorityLow,
			"Your mood has been stable",
			"Scores have held roughly level over this period.",
			strength), true
	}
}

func activityInsight(snap *models.AnalyticsSnapshot) (models.Insight, bool) {
	if len(snap.ActivityRanking) == 0 {
		return models.Insight{}, false
	}
	top := snap.ActivityRanking[0]
	return ruleInsight(models.InsightCategoryActivity, models.PriorityMedium,
		fmt.Sprintf("%s lifts your mood", displayName(string(top.Activity))),
		fmt.Sprintf("Entries tagged %s average %.1f across %d entries, your highest of any activity.",
			top.Activity, top.MeanScore, top.Count),
		top.MeanScore), true
}

func stabilityInsight(snap *models.AnalyticsSnapshot) (models.Insight, bool) {
	if snap.MoodStability == nil {
		return models.Insight{}, false
	}
	stability := *snap.MoodStability

	if stability < LowStabilityThreshold {
		return ruleInsight(models.InsightCategoryStability, models.PriorityMedium,
			"Your mood has been fluctuating",
			"Scores have varied widely. Regular sleep and routines can help smooth things out.",
			stability), true
	}
	if stability >= HighStabilityThreshold {
		return ruleInsight(models.InsightCategoryStability, models.PriorityLow,
			"Your mood has been steady",
			"Scores have stayed consistent over this period.",
			stability), true
	}
	return models.Insight{}, false
}

func wellbeingInsight(snap *models.AnalyticsSnapshot) (models.Insight, bool) {
	stats := snap.BasicStats
	if stats.TotalEntries < MinEntriesForWellbeing || stats.AverageScore > LowWellbeingAverage {
		return models.Insight{}, false
	}
	return ruleInsight(models.InsightCategoryWellbeing, models.PriorityUrgent,
		"Your mood has been consistently low",
		"You have been feeling low for a while. Talking to a friend or a professional could help.",
		stats.AverageScore), true
}

func factorInsights(snap *models.AnalyticsSnapshot) []models.Insight {
	var out []models.Insight
	// Fixed iteration order keeps output deterministic
	for _, f := range models.AllFactors {
		r, ok := snap.FactorCorrelation[f]
		if !ok || math.Abs(r) < StrongFactorCorrelation {
			continue
		}
		direction := "higher"
		if r < 0 {
			direction = "lower"
		}
		out = append(out, ruleInsight(models.InsightCategoryFactor, models.PriorityMedium,
			fmt.Sprintf("%s is linked to your mood", displayName(factorNames[f])),
			fmt.Sprintf("Higher %s tends to come with %s mood scores (r = %.2f).", factorNames[f], direction, r),
			r))
	}
	return out
}

func temporalInsights(snap *models.AnalyticsSnapshot) []models.Insight {
	if snap.BasicStats.TotalEntries < MinEntriesForPattern {
		return nil
	}

	var out []models.Insight
	if best, worst, ok := PeakBucket(snap.WeeklyPatterns); ok && best != worst {
		out = append(out, ruleInsight(models.InsightCategoryTemporal, models.PriorityLow,
			fmt.Sprintf("%ss are your best days", DayName(best)),
			fmt.Sprintf("Your mood averages %.1f on %ss compared with %.1f on %ss.",
				snap.WeeklyPatterns[best], DayName(best), snap.WeeklyPatterns[worst], DayName(worst)),
			snap.WeeklyPatterns[best]))
	}
	if best, worst, ok := PeakBucket(snap.TimePatterns); ok && best != worst {
		out = append(out, ruleInsight(models.InsightCategoryTemporal, models.PriorityLow,
			fmt.Sprintf("You feel best around %s", formatHour(best)),
			fmt.Sprintf("Entries logged around %s average %.1f, the highest of any hour.",
				formatHour(best), snap.TimePatterns[best]),
			snap.TimePatterns[best]))
	}
	return out
}

// MergeInsights combines rule-based and provider insights into one list ordered by
// priority tier. Within a tier rule insights come first and each source keeps its
// own relative order.
func MergeInsights(rule, ai []models.Insight) []models.Insight {
	merged := make([]models.Insight, 0, len(rule)+len(ai))
	merged = append(merged, rule...)
	merged = append(merged, ai...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Priority.Rank() > merged[j].Priority.Rank()
	})
	return merged
}

func displayName(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
