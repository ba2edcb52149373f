package analytics

import (
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

// Bucketing conventions:
//   - hour of day 0-23 and weekday 0=Sunday..6=Saturday, both in the configured location
//   - seasons by calendar month: Dec-Feb winter, Mar-May spring, Jun-Aug summer, Sep-Nov autumn

var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// TemporalPatterns holds per-bucket mean mood scores. Empty buckets are absent.
type TemporalPatterns struct {
	Hourly   map[int]float64
	Weekly   map[int]float64
	Seasonal map[models.Season]float64
}

// SeasonOf maps a calendar month to its season bucket
func SeasonOf(m time.Month) models.Season {
	switch m {
	case time.December, time.January, time.February:
		return models.SeasonWinter
	case time.March, time.April, time.May:
		return models.SeasonSpring
	case time.June, time.July, time.August:
		return models.SeasonSummer
	default:
		return models.SeasonAutumn
	}
}

type bucket struct {
	sum   int
	count int
}

func (b bucket) mean() float64 {
	return float64(b.sum) / float64(b.count)
}

// ComputeTemporalPatterns buckets entries by hour, weekday and season in loc.
// Sums are integer so the result does not depend on entry order.
func ComputeTemporalPatterns(entries []models.MoodEntry, loc *time.Location) TemporalPatterns {
	if loc == nil {
		loc = time.UTC
	}

	hours := make(map[int]*bucket)
	days := make(map[int]*bucket)
	seasons := make(map[models.Season]*bucket)

	add := func(b *bucket, score int) {
		b.sum += score
		b.count++
	}

	for _, e := range entries {
		local := e.Timestamp.In(loc)

		h := local.Hour()
		if hours[h] == nil {
			hours[h] = &bucket{}
		}
		add(hours[h], e.MoodScore)

		d := int(local.Weekday())
		if days[d] == nil {
			days[d] = &bucket{}
		}
		add(days[d], e.MoodScore)

		s := SeasonOf(local.Month())
		if seasons[s] == nil {
			seasons[s] = &bucket{}
		}
		add(seasons[s], e.MoodScore)
	}

	patterns := TemporalPatterns{
		Hourly:   make(map[int]float64, len(hours)),
		Weekly:   make(map[int]float64, len(days)),
		Seasonal: make(map[models.Season]float64, len(seasons)),
	}
	for k, b := range hours {
		patterns.Hourly[k] = b.mean()
	}
	for k, b := range days {
		patterns.Weekly[k] = b.mean()
	}
	for k, b := range seasons {
		patterns.Seasonal[k] = b.mean()
	}
	return patterns
}

// PeakBucket returns the buckets with the highest and lowest mean.
// Ties go to the lowest bucket index; ok is false for an empty pattern.
func PeakBucket(pattern map[int]float64) (best, worst int, ok bool) {
	if len(pattern) == 0 {
		return 0, 0, false
	}

	first := true
	for k, v := range pattern {
		if first {
			best, worst = k, k
			first = false
			continue
		}
		if v > pattern[best] || (v == pattern[best] && k < best) {
			best = k
		}
		if v < pattern[worst] || (v == pattern[worst] && k < worst) {
			worst = k
		}
	}
	return best, worst, true
}

// DayName returns the English name for weekday index d (0=Sunday)
func DayName(d int) string {
	if d < 0 || d >= len(dayNames) {
		return "Unknown"
	}
	return dayNames[d]
}

// formatHour formats an hour (0-23) as a readable string
func formatHour(hour int) string {
	if hour == 0 {
		return "12 AM"
	} else if hour < 12 {
		return fmt.Sprintf("%d AM", hour)
	} else if hour == 12 {
		return "12 PM"
	} else {
		return fmt.Sprintf("%d PM", hour-12)
	}
}
