package analytics

import (
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

var baseDay = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) // a Monday

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// dailyEntries builds one entry per consecutive day starting at baseDay
func dailyEntries(scores ...int) []models.MoodEntry {
	entries := make([]models.MoodEntry, len(scores))
	for i, s := range scores {
		entries[i] = models.MoodEntry{
			ID:        fmt.Sprintf("entry-%02d", i),
			UserID:    "user-1",
			Timestamp: baseDay.AddDate(0, 0, i),
			MoodScore: s,
			MoodLabel: labelFor(s),
		}
	}
	return entries
}

func labelFor(score int) models.MoodLabel {
	switch score {
	case 1:
		return models.MoodVerySad
	case 2:
		return models.MoodSad
	case 3:
		return models.MoodNeutral
	case 4:
		return models.MoodHappy
	default:
		return models.MoodVeryHappy
	}
}

func withActivities(e models.MoodEntry, acts ...models.Activity) models.MoodEntry {
	e.Activities = acts
	return e
}
