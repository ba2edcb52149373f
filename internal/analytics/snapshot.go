// Package analytics turns a window of mood entries into statistics, patterns,
// trends and insights. Every function here is a pure function of its inputs.
package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

// Options parameterizes a computation. There is no package-level state.
type Options struct {
	// Location is the timezone hour, weekday, season and goal periods are computed in.
	// Nil means UTC.
	Location *time.Location
	// EnumerateLabels lists labels reported in the mood distribution even with a zero
	// count. Nil omits every zero-count label.
	EnumerateLabels []models.MoodLabel
}

// DefaultOptions returns UTC bucketing with zero-count labels omitted
func DefaultOptions() Options {
	return Options{Location: time.UTC}
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// ComputeSnapshot derives the analytics snapshot for entries in [windowStart, windowEnd].
// The input slice is not modified. The only error is ctx cancellation.
func ComputeSnapshot(ctx context.Context, entries []models.MoodEntry, windowStart, windowEnd time.Time, opts Options) (*models.AnalyticsSnapshot, error) {
	sorted := make([]models.MoodEntry, len(entries))
	copy(sorted, entries)
	SortEntries(sorted)

	var (
		basic    *models.BasicStats
		dist     map[models.MoodLabel]int
		averages models.FieldAverages
		patterns TemporalPatterns
		impact   map[models.Activity]models.ActivityImpact
		factors  map[models.Factor]float64
		trend    TrendResult
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		basic = ComputeStats(sorted)
		dist = MoodDistribution(sorted, opts.EnumerateLabels)
		averages = ComputeFieldAverages(sorted)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		patterns = ComputeTemporalPatterns(sorted, opts.location())
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		impact = ComputeActivityImpact(sorted)
		factors = ComputeFactorCorrelation(sorted)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		trend = ComputeTrend(sorted)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.AnalyticsSnapshot{
		WindowStart:         windowStart,
		WindowEnd:           windowEnd,
		BasicStats:          basic,
		MoodDistribution:    dist,
		FieldAverages:       averages,
		Trend:               trend.Trend,
		TrendStrength:       trend.Strength,
		MoodVariability:     trend.Variability,
		MoodStability:       trend.Stability,
		TimePatterns:        patterns.Hourly,
		WeeklyPatterns:      patterns.Weekly,
		SeasonalPatterns:    patterns.Seasonal,
		ActivityCorrelation: ActivityCorrelation(impact),
		ActivityRanking:     RankActivities(impact),
		FactorCorrelation:   factors,
	}, nil
}
