package analytics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

func newGoal(target int, freq models.TargetFrequency) *models.MoodGoal {
	return &models.MoodGoal{
		ID:              "goal-1",
		UserID:          "user-1",
		Title:           "Feel good",
		TargetMoodScore: target,
		TargetFrequency: freq,
		StartDate:       baseDay.Add(-time.Hour),
		IsActive:        true,
	}
}

func TestAdvanceGoal_DailyStreakScenario(t *testing.T) {
	goal := newGoal(4, models.FrequencyDaily)
	now := baseDay.AddDate(0, 0, 10)

	var streaks []int
	for _, e := range dailyEntries(4, 5, 3, 4, 4) {
		changed := AdvanceGoal(goal, e, now, time.UTC)
		require.True(t, changed)
		streaks = append(streaks, goal.Progress.CurrentStreak)
	}

	assert.Equal(t, []int{1, 2, 0, 1, 2}, streaks)
	assert.Equal(t, 2, goal.Progress.CurrentStreak)
	assert.Equal(t, 2, goal.Progress.LongestStreak)
	assert.Equal(t, 4, goal.Progress.QualifyingEntries)
	assert.Equal(t, 5, goal.Progress.TotalEntries)
	assert.InDelta(t, 0.8, goal.Progress.SuccessRate, 1e-9)
	assert.Equal(t, models.GoalStatusOnTrack, goal.Status)
}

func TestAdvanceGoal_StreakRules(t *testing.T) {
	at := func(days, hours int) time.Time {
		return baseDay.AddDate(0, 0, days).Add(time.Duration(hours) * time.Hour)
	}
	entry := func(ts time.Time, score int) models.MoodEntry {
		return models.MoodEntry{Timestamp: ts, MoodScore: score}
	}

	tests := []struct {
		name    string
		freq    models.TargetFrequency
		entries []models.MoodEntry
		want    []int
	}{
		{
			name:    "same day counts once",
			freq:    models.FrequencyDaily,
			entries: []models.MoodEntry{entry(at(0, 0), 4), entry(at(0, 3), 5), entry(at(1, 0), 4)},
			want:    []int{1, 1, 2},
		},
		{
			name:    "gap restarts at one",
			freq:    models.FrequencyDaily,
			entries: []models.MoodEntry{entry(at(0, 0), 4), entry(at(1, 0), 4), entry(at(4, 0), 5)},
			want:    []int{1, 2, 1},
		},
		{
			name:    "out of order leaves streak",
			freq:    models.FrequencyDaily,
			entries: []models.MoodEntry{entry(at(1, 0), 4), entry(at(2, 0), 4), entry(at(0, 0), 4)},
			want:    []int{1, 2, 2},
		},
		{
			name: "weekly periods",
			freq: models.FrequencyWeekly,
			// Monday, Saturday same week; following Sunday starts the next week
			entries: []models.MoodEntry{entry(at(0, 0), 4), entry(at(5, 0), 4), entry(at(6, 0), 4), entry(at(20, 0), 4)},
			want:    []int{1, 1, 2, 1},
		},
		{
			name:    "monthly periods",
			freq:    models.FrequencyMonthly,
			entries: []models.MoodEntry{entry(at(0, 0), 4), entry(at(28, 0), 4), entry(at(60, 0), 4)},
			want:    []int{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := newGoal(4, tt.freq)
			now := baseDay.AddDate(0, 3, 0)
			var got []int
			for _, e := range tt.entries {
				AdvanceGoal(goal, e, now, time.UTC)
				got = append(got, goal.Progress.CurrentStreak)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvanceGoal_Inactive(t *testing.T) {
	goal := newGoal(4, models.FrequencyDaily)
	goal.IsActive = false

	changed := AdvanceGoal(goal, dailyEntries(5)[0], baseDay.AddDate(0, 0, 1), time.UTC)
	assert.False(t, changed)
	assert.Equal(t, models.GoalProgress{}, goal.Progress)
}

func TestAdvanceGoal_EndDatePassed(t *testing.T) {
	goal := newGoal(4, models.FrequencyDaily)
	end := baseDay.AddDate(0, 0, 2)
	goal.EndDate = &end

	changed := AdvanceGoal(goal, dailyEntries(5)[0], baseDay.AddDate(0, 0, 3), time.UTC)
	assert.True(t, changed)
	assert.False(t, goal.IsActive)
	assert.Equal(t, models.GoalStatusInactive, goal.Status)
	assert.Equal(t, 0, goal.Progress.TotalEntries)

	// Once inactive nothing moves
	assert.False(t, AdvanceGoal(goal, dailyEntries(5)[0], baseDay, time.UTC))
	assert.Equal(t, models.GoalProgress{}, goal.Progress)
}

func TestAdvanceGoal_EntryBeforeStart(t *testing.T) {
	goal := newGoal(4, models.FrequencyDaily)
	goal.StartDate = baseDay.AddDate(0, 0, 5)

	changed := AdvanceGoal(goal, dailyEntries(5)[0], baseDay.AddDate(0, 0, 6), time.UTC)
	assert.False(t, changed)
	assert.Equal(t, 0, goal.Progress.TotalEntries)
}

func TestGoalStatusOf(t *testing.T) {
	goal := newGoal(4, models.FrequencyDaily)
	assert.Equal(t, models.GoalStatusBroken, GoalStatusOf(goal))

	goal.Progress.CurrentStreak = 3
	assert.Equal(t, models.GoalStatusOnTrack, GoalStatusOf(goal))

	goal.IsActive = false
	assert.Equal(t, models.GoalStatusInactive, GoalStatusOf(goal))
}

func TestAchieved(t *testing.T) {
	goal := newGoal(4, models.FrequencyDaily)
	goal.Progress.CurrentStreak = 7

	assert.True(t, Achieved(goal, 7))
	assert.False(t, Achieved(goal, 8))
	assert.False(t, Achieved(goal, 0))
}

func TestPeriodIndex(t *testing.T) {
	sat := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)
	sun := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, PeriodIndex(sat, models.FrequencyDaily, time.UTC)+1, PeriodIndex(sun, models.FrequencyDaily, time.UTC))
	assert.Equal(t, PeriodIndex(sat, models.FrequencyWeekly, time.UTC)+1, PeriodIndex(sun, models.FrequencyWeekly, time.UTC))
	assert.Equal(t, PeriodIndex(sat, models.FrequencyMonthly, time.UTC), PeriodIndex(sun, models.FrequencyMonthly, time.UTC))

	// Before the epoch still yields consecutive indexes
	old := time.Date(1969, 12, 27, 12, 0, 0, 0, time.UTC) // Saturday
	assert.Equal(t, PeriodIndex(old, models.FrequencyWeekly, time.UTC)+1,
		PeriodIndex(old.AddDate(0, 0, 1), models.FrequencyWeekly, time.UTC))

	// Local dates decide the period
	loc := time.FixedZone("UTC+3", 3*3600)
	assert.Equal(t, PeriodIndex(sun, models.FrequencyDaily, time.UTC), PeriodIndex(sat, models.FrequencyDaily, loc))
}

func TestGoalLocker_SerializesUpdates(t *testing.T) {
	locker := NewGoalLocker()
	goal := newGoal(1, models.FrequencyDaily)
	now := baseDay.AddDate(0, 0, 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(goal.ID)
			defer unlock()
			AdvanceGoal(goal, models.MoodEntry{Timestamp: baseDay, MoodScore: 3}, now, time.UTC)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, goal.Progress.TotalEntries)
	assert.Equal(t, 50, goal.Progress.QualifyingEntries)
	assert.Empty(t, locker.locks)
}
