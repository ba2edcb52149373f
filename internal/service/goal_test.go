package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

func createDailyGoal(t *testing.T, svc *goalService, userID string, target int) *models.MoodGoal {
	t.Helper()
	goal, err := svc.CreateGoal(context.Background(), userID, &models.CreateGoalRequest{
		Title:           "Good days",
		TargetMoodScore: target,
		TargetFrequency: models.FrequencyDaily,
		StartDate:       timePtr(testNow.AddDate(0, 0, -30)),
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	return goal
}

func entryAt(userID string, ts time.Time, score int) *models.MoodEntry {
	return &models.MoodEntry{ID: ts.String(), UserID: userID, Timestamp: ts, MoodScore: score, MoodLabel: models.MoodNeutral}
}

func TestCreateGoal(t *testing.T) {
	svc := newTestGoalService(newMockGoalRepository())
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, "user-1", &models.CreateGoalRequest{
		Title:           "Weekly lift",
		TargetMoodScore: 4,
		TargetFrequency: models.FrequencyWeekly,
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if !goal.IsActive {
		t.Error("new goals are active")
	}
	if !goal.StartDate.Equal(testNow) {
		t.Errorf("StartDate = %v, want now", goal.StartDate)
	}
	if goal.Status != models.GoalStatusBroken {
		t.Errorf("Status = %s, want broken before any entry", goal.Status)
	}

	_, err = svc.CreateGoal(ctx, "user-1", &models.CreateGoalRequest{
		Title:           "Bad",
		TargetMoodScore: 9,
		TargetFrequency: "hourly",
	})
	if !errors.Is(err, models.ErrInvalidGoal) {
		t.Errorf("expected ErrInvalidGoal, got %v", err)
	}
}

func TestGetGoal_Ownership(t *testing.T) {
	svc := newTestGoalService(newMockGoalRepository())
	goal := createDailyGoal(t, svc, "user-1", 4)

	if _, err := svc.GetGoal(context.Background(), "user-2", goal.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's goal, got %v", err)
	}
	if _, err := svc.GetGoal(context.Background(), "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing goal, got %v", err)
	}
	if err := svc.DeleteGoal(context.Background(), "user-2", goal.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting another user's goal, got %v", err)
	}
	if err := svc.DeleteGoal(context.Background(), "user-1", goal.ID); err != nil {
		t.Errorf("DeleteGoal: %v", err)
	}
}

func TestListGoals_PastEndDateReadsInactive(t *testing.T) {
	goalRepo := newMockGoalRepository()
	svc := newTestGoalService(goalRepo)
	ctx := context.Background()
	current := createDailyGoal(t, svc, "user-1", 4)

	// Stored before its end date passed and never touched since
	ended := models.MoodGoal{
		ID:              "ended",
		UserID:          "user-1",
		Title:           "March only",
		TargetMoodScore: 3,
		TargetFrequency: models.FrequencyDaily,
		StartDate:       testNow.AddDate(0, -1, -10),
		EndDate:         timePtr(testNow.AddDate(0, 0, -10)),
		IsActive:        true,
		Status:          models.GoalStatusOnTrack,
	}
	goalRepo.goals[ended.ID] = ended

	active, err := svc.ListGoals(ctx, "user-1", true)
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(active) != 1 || active[0].ID != current.ID {
		t.Errorf("active goals = %+v, want only %s", active, current.ID)
	}

	all, err := svc.ListGoals(ctx, "user-1", false)
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d goals, want 2", len(all))
	}
	for _, g := range all {
		if g.ID == ended.ID && (g.IsActive || g.Status != models.GoalStatusInactive) {
			t.Errorf("ended goal = active:%v status:%s, want inactive", g.IsActive, g.Status)
		}
	}

	got, err := svc.GetGoal(ctx, "user-1", ended.ID)
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if got.IsActive || got.Status != models.GoalStatusInactive {
		t.Errorf("GetGoal = active:%v status:%s, want inactive", got.IsActive, got.Status)
	}
}

func TestUpdateGoal(t *testing.T) {
	ctx := context.Background()

	t.Run("title and description", func(t *testing.T) {
		svc := newTestGoalService(newMockGoalRepository())
		goal := createDailyGoal(t, svc, "user-1", 4)

		updated, err := svc.UpdateGoal(ctx, "user-1", goal.ID, &models.UpdateGoalRequest{
			Title:       models.NullableString{Value: "Better days", Valid: true, Set: true},
			Description: models.NullableString{Set: true},
		})
		if err != nil {
			t.Fatalf("UpdateGoal: %v", err)
		}
		if updated.Title != "Better days" || updated.Description != "" {
			t.Errorf("unexpected goal after update: %+v", updated)
		}
	})

	t.Run("end date before start", func(t *testing.T) {
		svc := newTestGoalService(newMockGoalRepository())
		goal := createDailyGoal(t, svc, "user-1", 4)

		_, err := svc.UpdateGoal(ctx, "user-1", goal.ID, &models.UpdateGoalRequest{
			EndDate: models.NullableTime{Value: goal.StartDate.AddDate(0, 0, -1), Valid: true, Set: true},
		})
		if !errors.Is(err, models.ErrInvalidGoal) {
			t.Errorf("expected ErrInvalidGoal, got %v", err)
		}
	})

	t.Run("reactivating an expired goal", func(t *testing.T) {
		svc := newTestGoalService(newMockGoalRepository())
		goal := createDailyGoal(t, svc, "user-1", 4)

		inactive := false
		_, err := svc.UpdateGoal(ctx, "user-1", goal.ID, &models.UpdateGoalRequest{
			IsActive: &inactive,
			EndDate:  models.NullableTime{Value: testNow.AddDate(0, 0, -1), Valid: true, Set: true},
		})
		if err != nil {
			t.Fatalf("deactivate: %v", err)
		}

		active := true
		_, err = svc.UpdateGoal(ctx, "user-1", goal.ID, &models.UpdateGoalRequest{IsActive: &active})
		if !errors.Is(err, models.ErrInvalidGoal) {
			t.Errorf("expected ErrInvalidGoal, got %v", err)
		}

		// Extending the end date makes reactivation legal
		updated, err := svc.UpdateGoal(ctx, "user-1", goal.ID, &models.UpdateGoalRequest{
			IsActive: &active,
			EndDate:  models.NullableTime{Value: testNow.AddDate(0, 1, 0), Valid: true, Set: true},
		})
		if err != nil {
			t.Fatalf("reactivate: %v", err)
		}
		if !updated.IsActive {
			t.Error("goal should be active again")
		}
	})
}

func TestApplyEntry_TracksStreak(t *testing.T) {
	goalRepo := newMockGoalRepository()
	svc := newTestGoalService(goalRepo)
	ctx := context.Background()
	goal := createDailyGoal(t, svc, "user-1", 4)

	day := testNow.AddDate(0, 0, -5)
	steps := []struct {
		offset  int
		score   int
		current int
		longest int
	}{
		{0, 4, 1, 1},
		{1, 5, 2, 2},
		{1, 4, 2, 2}, // same day counts once
		{2, 5, 3, 3},
		{3, 2, 0, 3},
		{4, 4, 1, 3},
	}

	for i, step := range steps {
		if err := svc.ApplyEntry(ctx, entryAt("user-1", day.AddDate(0, 0, step.offset).Add(time.Duration(i)*time.Minute), step.score)); err != nil {
			t.Fatalf("step %d: ApplyEntry: %v", i, err)
		}
		got, _ := goalRepo.GetByID(ctx, goal.ID)
		if got.Progress.CurrentStreak != step.current || got.Progress.LongestStreak != step.longest {
			t.Errorf("step %d: streak = %d/%d, want %d/%d", i,
				got.Progress.CurrentStreak, got.Progress.LongestStreak, step.current, step.longest)
		}
	}

	// Entries of other users never touch this goal
	if err := svc.ApplyEntry(ctx, entryAt("user-2", testNow, 5)); err != nil {
		t.Fatalf("ApplyEntry: %v", err)
	}
	got, _ := goalRepo.GetByID(ctx, goal.ID)
	if got.Progress.TotalEntries != len(steps) {
		t.Errorf("TotalEntries = %d, want %d", got.Progress.TotalEntries, len(steps))
	}
}

func TestApplyEntry_ExpiredGoalBecomesInactive(t *testing.T) {
	goalRepo := newMockGoalRepository()
	svc := newTestGoalService(goalRepo)
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, "user-1", &models.CreateGoalRequest{
		Title:           "Short sprint",
		TargetMoodScore: 3,
		TargetFrequency: models.FrequencyDaily,
		StartDate:       timePtr(testNow.AddDate(0, 0, -10)),
		EndDate:         timePtr(testNow.AddDate(0, 0, -1)),
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	if err := svc.ApplyEntry(ctx, entryAt("user-1", testNow, 5)); err != nil {
		t.Fatalf("ApplyEntry: %v", err)
	}

	got, _ := goalRepo.GetByID(ctx, goal.ID)
	if got.IsActive || got.Status != models.GoalStatusInactive {
		t.Errorf("goal = active:%v status:%s, want inactive", got.IsActive, got.Status)
	}
	if got.Progress.TotalEntries != 0 {
		t.Error("expired goals must not progress")
	}
}

func TestApplyEntry_CountsPeriodsInOwnerTimezone(t *testing.T) {
	users := newMockUserRepository()
	users.users["user-la"] = models.User{ID: "user-la", Timezone: "America/Los_Angeles"}

	goalRepo := newMockGoalRepository()
	svc := NewGoalService(goalRepo, users, time.UTC).(*goalService)
	svc.now = func() time.Time { return testNow }
	ctx := context.Background()

	utcGoal := createDailyGoal(t, svc, "user-utc", 4)
	laGoal := createDailyGoal(t, svc, "user-la", 4)

	// Same UTC day, but the evening of April 8th and the afternoon of April 9th in Los Angeles
	first := time.Date(2024, 4, 9, 5, 0, 0, 0, time.UTC)
	second := time.Date(2024, 4, 9, 20, 0, 0, 0, time.UTC)
	for _, userID := range []string{"user-utc", "user-la"} {
		for _, ts := range []time.Time{first, second} {
			if err := svc.ApplyEntry(ctx, entryAt(userID, ts, 5)); err != nil {
				t.Fatalf("ApplyEntry: %v", err)
			}
		}
	}

	got, _ := goalRepo.GetByID(ctx, utcGoal.ID)
	if got.Progress.CurrentStreak != 1 {
		t.Errorf("UTC streak = %d, want 1", got.Progress.CurrentStreak)
	}
	got, _ = goalRepo.GetByID(ctx, laGoal.ID)
	if got.Progress.CurrentStreak != 2 {
		t.Errorf("Los Angeles streak = %d, want 2", got.Progress.CurrentStreak)
	}
}

func TestApplyEntry_ConcurrentEntriesAreAllCounted(t *testing.T) {
	goalRepo := newMockGoalRepository()
	svc := newTestGoalService(goalRepo)
	goal := createDailyGoal(t, svc, "user-1", 3)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ts := testNow.Add(-time.Duration(i) * time.Second)
			if err := svc.ApplyEntry(context.Background(), entryAt("user-1", ts, 4)); err != nil {
				t.Errorf("ApplyEntry: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := goalRepo.GetByID(context.Background(), goal.ID)
	if got.Progress.TotalEntries != n {
		t.Errorf("TotalEntries = %d, want %d", got.Progress.TotalEntries, n)
	}
	if got.Progress.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1 for a single day", got.Progress.CurrentStreak)
	}
}
