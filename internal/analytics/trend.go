package analytics

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

// Trend classification constants.
//
// The slope is fitted against a normalized index x = i/(n-1), so it is the fitted change
// in score from the first entry of the window to the last.
const (
	// MinEntriesForTrend is the fewest entries a trend is fitted over
	MinEntriesForTrend = 2
	// TrendSlopeThreshold is the fitted change (in score points) needed to call a trend
	TrendSlopeThreshold = 0.5
	// ScoreRange is the widest possible fitted change, used to normalize strength
	ScoreRange = float64(models.MaxMoodScore - models.MinMoodScore)
	// MaxStdDev is the largest population standard deviation a score set can have
	MaxStdDev = ScoreRange / 2
)

// TrendResult holds the output of the trend and stability analyzer.
// The pointer fields are nil when there were fewer than MinEntriesForTrend entries.
type TrendResult struct {
	Trend       models.Trend
	Slope       float64
	Strength    *float64
	Variability *float64
	Stability   *float64
}

// SortEntries orders entries by timestamp, breaking ties by ID, in place
func SortEntries(entries []models.MoodEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		return entries[i].ID < entries[j].ID
	})
}

// ComputeTrend fits a least-squares line to the scores of time-ordered entries and
// measures their dispersion. entries must already be sorted with SortEntries.
func ComputeTrend(entries []models.MoodEntry) TrendResult {
	if len(entries) < MinEntriesForTrend {
		return TrendResult{Trend: models.TrendUnknown}
	}

	slope := fitSlope(entries)

	trend := models.TrendStable
	if slope > TrendSlopeThreshold {
		trend = models.TrendImproving
	} else if slope < -TrendSlopeThreshold {
		trend = models.TrendDeclining
	}

	strength := clamp01(math.Abs(slope) / ScoreRange)

	// Population: the window is the whole set being described, not a sample
	sd, err := stats.StandardDeviationPopulation(scoreData(entries))
	if err != nil {
		sd = 0
	}
	variability := clamp01(sd / MaxStdDev)
	stability := 1 - variability

	return TrendResult{
		Trend:       trend,
		Slope:       slope,
		Strength:    &strength,
		Variability: &variability,
		Stability:   &stability,
	}
}

// fitSlope is simple linear regression of score on normalized index
func fitSlope(entries []models.MoodEntry) float64 {
	n := float64(len(entries))
	last := float64(len(entries) - 1)
	sumX := 0.0
	sumY := 0.0
	sumXY := 0.0
	sumXX := 0.0

	for i, e := range entries {
		x := float64(i) / last
		y := float64(e.MoodScore)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
