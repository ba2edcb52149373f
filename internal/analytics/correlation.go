package analytics

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

// MinPairsForCorrelation is the minimum number of (factor, score) pairs
// needed before a factor correlation is reported
const MinPairsForCorrelation = 5

// ComputeActivityImpact returns the mean mood score of the entries carrying each tag.
// An entry tagged with several activities counts toward every one of them.
// Tags that never occur are absent.
func ComputeActivityImpact(entries []models.MoodEntry) map[models.Activity]models.ActivityImpact {
	sums := make(map[models.Activity]*bucket)
	for _, e := range entries {
		seen := make(map[models.Activity]bool, len(e.Activities))
		for _, a := range e.Activities {
			if seen[a] {
				continue
			}
			seen[a] = true
			if sums[a] == nil {
				sums[a] = &bucket{}
			}
			sums[a].sum += e.MoodScore
			sums[a].count++
		}
	}

	impact := make(map[models.Activity]models.ActivityImpact, len(sums))
	for a, b := range sums {
		impact[a] = models.ActivityImpact{Activity: a, MeanScore: b.mean(), Count: b.count}
	}
	return impact
}

// ActivityCorrelation reduces an impact map to tag -> mean score
func ActivityCorrelation(impact map[models.Activity]models.ActivityImpact) map[models.Activity]float64 {
	out := make(map[models.Activity]float64, len(impact))
	for a, i := range impact {
		out[a] = i.MeanScore
	}
	return out
}

// RankActivities orders activities by mean score descending, then by entry count
// descending, then by tag name
func RankActivities(impact map[models.Activity]models.ActivityImpact) []models.ActivityImpact {
	ranked := make([]models.ActivityImpact, 0, len(impact))
	for _, i := range impact {
		ranked = append(ranked, i)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.MeanScore != b.MeanScore {
			return a.MeanScore > b.MeanScore
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Activity < b.Activity
	})
	return ranked
}

// ComputeFactorCorrelation computes the Pearson r between each optional factor and the
// mood score, over the entries that carry the factor. Factors with too few pairs or no
// variance are omitted.
func ComputeFactorCorrelation(entries []models.MoodEntry) map[models.Factor]float64 {
	out := make(map[models.Factor]float64)
	for _, f := range models.AllFactors {
		var xs, ys []float64
		for _, e := range entries {
			v, ok := factorValue(e, f)
			if !ok {
				continue
			}
			xs = append(xs, v)
			ys = append(ys, float64(e.MoodScore))
		}
		if r, ok := pearson(xs, ys); ok {
			out[f] = r
		}
	}
	return out
}

func factorValue(e models.MoodEntry, f models.Factor) (float64, bool) {
	switch f {
	case models.FactorStress:
		if e.StressLevel != nil {
			return float64(*e.StressLevel), true
		}
	case models.FactorEnergy:
		if e.EnergyLevel != nil {
			return float64(*e.EnergyLevel), true
		}
	case models.FactorSocialInteraction:
		if e.SocialInteraction != nil {
			return float64(*e.SocialInteraction), true
		}
	case models.FactorSleepHours:
		if e.SleepHours != nil {
			return *e.SleepHours, true
		}
	}
	return 0, false
}

// pearson computes the Pearson correlation coefficient.
// ok is false when there are too few pairs or either side has no variance.
func pearson(xValues, yValues []float64) (r float64, ok bool) {
	n := len(xValues)
	if n != len(yValues) || n < MinPairsForCorrelation {
		return 0, false
	}

	// Neither slice is empty here, so Mean cannot fail
	meanX, _ := stats.Mean(xValues)
	meanY, _ := stats.Mean(yValues)

	var numerator, denomX, denomY float64
	for i := 0; i < n; i++ {
		dx := xValues[i] - meanX
		dy := yValues[i] - meanY
		numerator += dx * dy
		denomX += dx * dx
		denomY += dy * dy
	}

	if denomX == 0 || denomY == 0 {
		return 0, false
	}

	r = numerator / math.Sqrt(denomX*denomY)
	// Rounding can push |r| marginally past 1
	return math.Max(-1, math.Min(1, r)), true
}
