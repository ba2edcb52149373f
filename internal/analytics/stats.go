package analytics

import (
	"github.com/montanaflynn/stats"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

// scoreData extracts mood scores in entry order
func scoreData(entries []models.MoodEntry) stats.Float64Data {
	data := make(stats.Float64Data, len(entries))
	for i, e := range entries {
		data[i] = float64(e.MoodScore)
	}
	return data
}

// ComputeStats returns summary statistics over the entries, or nil when there are none.
// "No data" is never reported as a zero average.
func ComputeStats(entries []models.MoodEntry) *models.BasicStats {
	if len(entries) == 0 {
		return nil
	}

	scores := scoreData(entries)
	// Errors only occur on empty input, which is handled above
	mean, _ := stats.Mean(scores)
	lo, _ := stats.Min(scores)
	hi, _ := stats.Max(scores)

	return &models.BasicStats{
		AverageScore: mean,
		MinScore:     int(lo),
		MaxScore:     int(hi),
		TotalEntries: len(entries),
	}
}

// MoodDistribution counts entries per label. When there is at least one entry, labels
// listed in enumerate are present even with a zero count; any other label appears only
// if it occurs. An empty window has an empty distribution.
func MoodDistribution(entries []models.MoodEntry, enumerate []models.MoodLabel) map[models.MoodLabel]int {
	if len(entries) == 0 {
		return map[models.MoodLabel]int{}
	}
	dist := make(map[models.MoodLabel]int, len(enumerate))
	for _, label := range enumerate {
		dist[label] = 0
	}
	for _, e := range entries {
		dist[e.MoodLabel]++
	}
	return dist
}

// ComputeFieldAverages averages each optional numeric field over the entries that carry it
func ComputeFieldAverages(entries []models.MoodEntry) models.FieldAverages {
	var stress, energy, social, sleep stats.Float64Data
	for _, e := range entries {
		if e.StressLevel != nil {
			stress = append(stress, float64(*e.StressLevel))
		}
		if e.EnergyLevel != nil {
			energy = append(energy, float64(*e.EnergyLevel))
		}
		if e.SocialInteraction != nil {
			social = append(social, float64(*e.SocialInteraction))
		}
		if e.SleepHours != nil {
			sleep = append(sleep, *e.SleepHours)
		}
	}

	return models.FieldAverages{
		StressLevel:       meanOrNil(stress),
		EnergyLevel:       meanOrNil(energy),
		SocialInteraction: meanOrNil(social),
		SleepHours:        meanOrNil(sleep),
	}
}

func meanOrNil(data stats.Float64Data) *float64 {
	if len(data) == 0 {
		return nil
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return nil
	}
	return &mean
}
