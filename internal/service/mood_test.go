package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

var testNow = time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

func newTestMoodService(entries *mockEntryRepository, goals GoalService, snaps SnapshotCache) *moodService {
	svc := NewMoodService(entries, goals, snaps).(*moodService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func newTestGoalService(goals *mockGoalRepository) *goalService {
	svc := NewGoalService(goals, nil, time.UTC).(*goalService)
	svc.now = func() time.Time { return testNow }
	return svc
}

type failingGoalService struct {
	GoalService
}

func (failingGoalService) ApplyEntry(context.Context, *models.MoodEntry) error {
	return errors.New("goal store down")
}

func TestRecordEntry_StoresAndAdvancesGoals(t *testing.T) {
	entryRepo := newMockEntryRepository()
	goalRepo := newMockGoalRepository()
	snaps := newMemorySnapshotCache()
	goals := newTestGoalService(goalRepo)
	svc := newTestMoodService(entryRepo, goals, snaps)
	ctx := context.Background()

	goal, err := goals.CreateGoal(ctx, "user-1", &models.CreateGoalRequest{
		Title:           "Feel good daily",
		TargetMoodScore: 4,
		TargetFrequency: models.FrequencyDaily,
		StartDate:       timePtr(testNow.AddDate(0, 0, -7)),
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	ts := testNow.Add(-time.Hour)
	entry, err := svc.RecordEntry(ctx, "user-1", &models.CreateMoodEntryRequest{
		Timestamp:   &ts,
		MoodScore:   5,
		MoodLabel:   models.MoodVeryHappy,
		Activities:  []models.Activity{models.ActivityExercise, models.ActivityExercise, models.ActivitySocial},
		StressLevel: intPtr(3),
	})
	if err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}

	if entry.ID == "" {
		t.Error("expected a generated id")
	}
	if len(entry.Activities) != 2 {
		t.Errorf("activities = %v, want duplicates collapsed", entry.Activities)
	}
	if !entry.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", entry.Timestamp, ts)
	}

	updated, err := goals.GetGoal(ctx, "user-1", goal.ID)
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if updated.Progress.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", updated.Progress.CurrentStreak)
	}
	if updated.Status != models.GoalStatusOnTrack {
		t.Errorf("Status = %s, want on_track", updated.Status)
	}

	if len(snaps.invalidated) != 1 || snaps.invalidated[0] != "user-1" {
		t.Errorf("invalidated = %v, want [user-1]", snaps.invalidated)
	}
}

func TestRecordEntry_DefaultsTimestampToNow(t *testing.T) {
	svc := newTestMoodService(newMockEntryRepository(), nil, nil)

	entry, err := svc.RecordEntry(context.Background(), "user-1", &models.CreateMoodEntryRequest{
		MoodScore: 3,
		MoodLabel: models.MoodNeutral,
	})
	if err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if !entry.Timestamp.Equal(testNow) {
		t.Errorf("timestamp = %v, want %v", entry.Timestamp, testNow)
	}
}

func TestRecordEntry_Rejections(t *testing.T) {
	future := testNow.Add(2 * time.Minute)
	v4 := "0b6f9f4e-5c1f-4d7b-9a51-6f0e0d7c9a10"

	tests := []struct {
		name string
		req  models.CreateMoodEntryRequest
	}{
		{name: "score too low", req: models.CreateMoodEntryRequest{MoodScore: 0, MoodLabel: models.MoodSad}},
		{name: "score too high", req: models.CreateMoodEntryRequest{MoodScore: 6, MoodLabel: models.MoodHappy}},
		{name: "unknown label", req: models.CreateMoodEntryRequest{MoodScore: 3, MoodLabel: "meh"}},
		{name: "future timestamp", req: models.CreateMoodEntryRequest{MoodScore: 3, MoodLabel: models.MoodNeutral, Timestamp: &future}},
		{name: "stress out of range", req: models.CreateMoodEntryRequest{MoodScore: 3, MoodLabel: models.MoodNeutral, StressLevel: intPtr(11)}},
		{name: "non v7 id", req: models.CreateMoodEntryRequest{ID: v4, MoodScore: 3, MoodLabel: models.MoodNeutral}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entryRepo := newMockEntryRepository()
			svc := newTestMoodService(entryRepo, nil, nil)

			_, err := svc.RecordEntry(context.Background(), "user-1", &tt.req)
			if !errors.Is(err, models.ErrInvalidEntry) {
				t.Fatalf("expected ErrInvalidEntry, got %v", err)
			}
			var verr *models.ValidationError
			if !errors.As(err, &verr) || len(verr.Fields) == 0 {
				t.Errorf("expected field violations, got %v", err)
			}
			if len(entryRepo.entries) != 0 {
				t.Error("rejected entry must not be stored")
			}
		})
	}
}

func TestRecordEntry_DuplicateIDReturnsStoredEntry(t *testing.T) {
	entryRepo := newMockEntryRepository()
	svc := newTestMoodService(entryRepo, nil, nil)
	ctx := context.Background()

	id := entryIDAt(t, testNow.Add(-time.Minute))
	req := &models.CreateMoodEntryRequest{ID: id, MoodScore: 4, MoodLabel: models.MoodHappy}

	first, err := svc.RecordEntry(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("first RecordEntry: %v", err)
	}

	retry := *req
	retry.MoodScore = 1
	second, err := svc.RecordEntry(ctx, "user-1", &retry)
	if err != nil {
		t.Fatalf("retried RecordEntry: %v", err)
	}
	if second.ID != first.ID || second.MoodScore != 4 {
		t.Errorf("retry returned %+v, want the stored entry", second)
	}
	if len(entryRepo.entries) != 1 {
		t.Errorf("stored %d entries, want 1", len(entryRepo.entries))
	}

	// Someone else's id is a conflict, not a replay
	_, err = svc.RecordEntry(ctx, "user-2", req)
	if !errors.Is(err, repository.ErrConflict) {
		t.Errorf("expected ErrConflict for another user, got %v", err)
	}
}

func TestRecordEntry_GoalFailureDoesNotFailRequest(t *testing.T) {
	entryRepo := newMockEntryRepository()
	svc := newTestMoodService(entryRepo, failingGoalService{}, nil)

	entry, err := svc.RecordEntry(context.Background(), "user-1", &models.CreateMoodEntryRequest{
		MoodScore: 2,
		MoodLabel: models.MoodSad,
	})
	if err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if _, ok := entryRepo.entries[entry.ID]; !ok {
		t.Error("entry should be stored even when goals fail")
	}
}

func TestListAndDeleteEntries(t *testing.T) {
	entryRepo := newMockEntryRepository()
	snaps := newMemorySnapshotCache()
	svc := newTestMoodService(entryRepo, nil, snaps)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ts := testNow.AddDate(0, 0, -i)
		if _, err := svc.RecordEntry(ctx, "user-1", &models.CreateMoodEntryRequest{
			Timestamp: &ts,
			MoodScore: 3,
			MoodLabel: models.MoodNeutral,
		}); err != nil {
			t.Fatalf("RecordEntry: %v", err)
		}
	}

	start, end := testNow.AddDate(0, 0, -2), testNow
	got, err := svc.ListEntries(ctx, "user-1", start, end)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("ListEntries returned %d entries, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Error("entries should be oldest first")
		}
	}

	if _, err := svc.ListEntries(ctx, "user-1", end, start); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}

	if err := svc.DeleteEntries(ctx, "user-1", start, end); err != nil {
		t.Fatalf("DeleteEntries: %v", err)
	}
	if len(entryRepo.entries) != 2 {
		t.Errorf("%d entries left, want 2", len(entryRepo.entries))
	}
	if n := len(snaps.invalidated); n != 6 {
		t.Errorf("invalidations = %d, want 6", n)
	}
}
