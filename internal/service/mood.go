package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/metrics"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

type moodService struct {
	entryRepo repository.EntryRepository
	goals     GoalService
	snapshots SnapshotCache
	now       func() time.Time
}

// NewMoodService creates a new mood service. snapshots may be nil when caching is off.
func NewMoodService(entryRepo repository.EntryRepository, goals GoalService, snapshots SnapshotCache) MoodService {
	return &moodService{
		entryRepo: entryRepo,
		goals:     goals,
		snapshots: snapshots,
		now:       time.Now,
	}
}

func (s *moodService) RecordEntry(ctx context.Context, userID string, req *models.CreateMoodEntryRequest) (*models.MoodEntry, error) {
	log := logger.Ctx(ctx)
	now := s.now()

	if err := models.ValidateCreateEntry(req, now); err != nil {
		metrics.EntriesIngested.WithLabelValues("rejected").Inc()
		return nil, err
	}

	id, err := resolveEntryID(req.ID, now)
	if err != nil {
		metrics.EntriesIngested.WithLabelValues("rejected").Inc()
		return nil, models.InvalidEntryError(models.FieldViolation{Field: "id", Message: err.Error(), Code: "invalid_uuid"})
	}

	timestamp := now
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	entry := &models.MoodEntry{
		ID:                id,
		UserID:            userID,
		Timestamp:         timestamp.UTC(),
		MoodScore:         req.MoodScore,
		MoodLabel:         req.MoodLabel,
		Activities:        models.NormalizeActivities(req.Activities),
		StressLevel:       req.StressLevel,
		EnergyLevel:       req.EnergyLevel,
		SocialInteraction: req.SocialInteraction,
		SleepHours:        req.SleepHours,
		TextFeedback:      req.TextFeedback,
	}

	created, err := s.entryRepo.Create(ctx, entry)
	if errors.Is(err, repository.ErrConflict) {
		// A retried upload of an entry we already hold returns the stored copy
		existing, getErr := s.entryRepo.GetByID(ctx, id)
		if getErr == nil && existing.UserID == userID {
			log.Debug("duplicate entry submission", logger.String("entry_id", id))
			metrics.EntriesIngested.WithLabelValues("duplicate").Inc()
			return existing, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store entry: %w", err)
	}
	metrics.EntriesIngested.WithLabelValues("accepted").Inc()

	// The entry is stored; goal or cache failures must not fail the request
	if s.goals != nil {
		if err := s.goals.ApplyEntry(ctx, created); err != nil {
			log.Error("failed to apply entry to goals",
				logger.Err(err),
				logger.String("entry_id", created.ID),
			)
		}
	}
	s.invalidate(ctx, userID)

	log.Info("mood entry recorded",
		logger.String("entry_id", created.ID),
		logger.Int("mood_score", created.MoodScore),
	)
	return created, nil
}

func (s *moodService) ListEntries(ctx context.Context, userID string, start, end time.Time) ([]models.MoodEntry, error) {
	if end.Before(start) {
		return nil, ErrInvalidWindow
	}
	return s.entryRepo.GetByUserIDAndDateRange(ctx, userID, start, end)
}

func (s *moodService) DeleteEntries(ctx context.Context, userID string, start, end time.Time) error {
	if end.Before(start) {
		return ErrInvalidWindow
	}
	if err := s.entryRepo.DeleteByUserIDAndDateRange(ctx, userID, start, end); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *moodService) invalidate(ctx context.Context, userID string) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.InvalidateUser(ctx, userID); err != nil {
		logger.Ctx(ctx).Warn("failed to invalidate snapshot cache", logger.Err(err))
	}
}
