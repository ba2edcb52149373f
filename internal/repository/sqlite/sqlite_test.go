package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "moodlens.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "moodlens.db")

	db, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create database with nested path: %v", err)
	}
	defer db.Close()

	if db.Path() != dbPath {
		t.Errorf("Expected path %s, got %s", dbPath, db.Path())
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSchema_TablesExist(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"users", "mood_entries", "mood_goals"} {
		var name string
		err := db.QueryRowContext(context.Background(), "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s does not exist: %v", table, err)
		}
	}
}

func TestEntryRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewEntryRepository(newTestDB(t))

	stress := 7
	sleep := 6.5
	note := "long day"
	base := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, &models.MoodEntry{
		UserID:       "user-1",
		Timestamp:    base,
		MoodScore:    2,
		MoodLabel:    models.MoodStressed,
		Activities:   []models.Activity{models.ActivityWork},
		StressLevel:  &stress,
		SleepHours:   &sleep,
		TextFeedback: &note,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Timestamp.Equal(base) || got.MoodScore != 2 || got.MoodLabel != models.MoodStressed {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.StressLevel == nil || *got.StressLevel != 7 {
		t.Errorf("StressLevel = %v, want 7", got.StressLevel)
	}
	if got.EnergyLevel != nil {
		t.Errorf("EnergyLevel = %v, want nil", *got.EnergyLevel)
	}
	if got.SleepHours == nil || *got.SleepHours != 6.5 {
		t.Errorf("SleepHours = %v, want 6.5", got.SleepHours)
	}
	if got.TextFeedback == nil || *got.TextFeedback != note {
		t.Errorf("TextFeedback = %v", got.TextFeedback)
	}
	if len(got.Activities) != 1 || got.Activities[0] != models.ActivityWork {
		t.Errorf("Activities = %v", got.Activities)
	}

	if _, err := repo.Create(ctx, got); !errors.Is(err, repository.ErrConflict) {
		t.Errorf("expected ErrConflict on duplicate id, got %v", err)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryRepository_RejectsInvalid(t *testing.T) {
	repo := NewEntryRepository(newTestDB(t))

	_, err := repo.Create(context.Background(), &models.MoodEntry{
		UserID:    "user-1",
		Timestamp: time.Now(),
		MoodScore: 9,
		MoodLabel: models.MoodHappy,
	})
	if !errors.Is(err, models.ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestEntryRepository_DateRange(t *testing.T) {
	ctx := context.Background()
	repo := NewEntryRepository(newTestDB(t))
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	// Inserted out of order, with one entry for another user
	for _, e := range []models.MoodEntry{
		{UserID: "user-1", Timestamp: base.AddDate(0, 0, 3), MoodScore: 3, MoodLabel: models.MoodNeutral},
		{UserID: "user-1", Timestamp: base.AddDate(0, 0, 1), MoodScore: 4, MoodLabel: models.MoodHappy},
		{UserID: "user-1", Timestamp: base.AddDate(0, 0, 10), MoodScore: 5, MoodLabel: models.MoodVeryHappy},
		{UserID: "user-2", Timestamp: base.AddDate(0, 0, 2), MoodScore: 1, MoodLabel: models.MoodVerySad},
	} {
		e := e
		if _, err := repo.Create(ctx, &e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.GetByUserIDAndDateRange(ctx, "user-1", base, base.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("GetByUserIDAndDateRange: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].MoodScore != 4 || got[1].MoodScore != 3 {
		t.Errorf("entries not ordered by timestamp: %+v", got)
	}

	if err := repo.DeleteByUserIDAndDateRange(ctx, "user-1", base, base.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("DeleteByUserIDAndDateRange: %v", err)
	}
	left, err := repo.GetByUserIDAndDateRange(ctx, "user-1", base, base.AddDate(1, 0, 0))
	if err != nil {
		t.Fatalf("GetByUserIDAndDateRange: %v", err)
	}
	if len(left) != 1 || left[0].MoodScore != 5 {
		t.Errorf("expected only the day-10 entry to remain, got %+v", left)
	}
}

func TestGoalRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewGoalRepository(newTestDB(t))
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	goal, err := repo.Create(ctx, &models.MoodGoal{
		UserID:          "user-1",
		Title:           "Good days",
		TargetMoodScore: 4,
		TargetFrequency: models.FrequencyDaily,
		StartDate:       start,
		IsActive:        true,
		Status:          models.GoalStatusBroken,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if goal.EndDate != nil {
		t.Errorf("EndDate = %v, want nil", goal.EndDate)
	}

	last := start.Add(48 * time.Hour)
	goal.Progress = models.GoalProgress{CurrentStreak: 3, LongestStreak: 3, SuccessRate: 0.75, QualifyingEntries: 3, TotalEntries: 4, LastQualifyingAt: &last}
	goal.Status = models.GoalStatusOnTrack
	if err := repo.UpdateProgress(ctx, goal); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	got, err := repo.GetByID(ctx, goal.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Progress.CurrentStreak != 3 || got.Progress.SuccessRate != 0.75 || got.Status != models.GoalStatusOnTrack {
		t.Errorf("progress not persisted: %+v", got)
	}
	if got.Progress.LastQualifyingAt == nil || !got.Progress.LastQualifyingAt.Equal(last) {
		t.Errorf("LastQualifyingAt = %v", got.Progress.LastQualifyingAt)
	}

	got.IsActive = false
	got.Status = models.GoalStatusInactive
	if _, err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	active, err := repo.GetByUserID(ctx, "user-1", true)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active goals, got %d", len(active))
	}
	all, err := repo.GetByUserID(ctx, "user-1", false)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 goal, got %d", len(all))
	}

	if err := repo.Delete(ctx, goal.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, goal.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUserRepository_Preferences(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	if _, err := repo.Create(ctx, &models.User{ID: "user-1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	consent := true
	tz := "Europe/Berlin"
	user, err := repo.UpdatePreferences(ctx, "user-1", &models.UpdatePreferencesRequest{AIConsent: &consent, Timezone: &tz})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if !user.AIConsent || user.Timezone != tz {
		t.Errorf("preferences not applied: %+v", user)
	}

	if _, err := repo.GetByID(ctx, "nobody"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
