package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/analytics"
	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/metrics"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

type goalService struct {
	goalRepo repository.GoalRepository
	userRepo repository.UserRepository
	locker   *analytics.GoalLocker
	location *time.Location
	now      func() time.Time
}

// NewGoalService creates a new goal service. Goal periods are counted in the owner's
// timezone preference, or in loc when there is none.
func NewGoalService(goalRepo repository.GoalRepository, userRepo repository.UserRepository, loc *time.Location) GoalService {
	if loc == nil {
		loc = time.UTC
	}
	return &goalService{
		goalRepo: goalRepo,
		userRepo: userRepo,
		locker:   analytics.NewGoalLocker(),
		location: loc,
		now:      time.Now,
	}
}

func (s *goalService) CreateGoal(ctx context.Context, userID string, req *models.CreateGoalRequest) (*models.MoodGoal, error) {
	if err := models.ValidateCreateGoal(req); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}

	start := s.now().UTC()
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}

	goal := &models.MoodGoal{
		ID:              id,
		UserID:          userID,
		Title:           req.Title,
		Description:     req.Description,
		TargetMoodScore: req.TargetMoodScore,
		TargetFrequency: req.TargetFrequency,
		StartDate:       start,
		EndDate:         req.EndDate,
		IsActive:        true,
	}
	analytics.ExpireGoal(goal, s.now())
	goal.Status = analytics.GoalStatusOf(goal)

	return s.goalRepo.Create(ctx, goal)
}

func (s *goalService) GetGoal(ctx context.Context, userID, goalID string) (*models.MoodGoal, error) {
	goal, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	analytics.ExpireGoal(goal, s.now())
	return goal, nil
}

// ownedGoal returns the stored goal as is
func (s *goalService) ownedGoal(ctx context.Context, userID, goalID string) (*models.MoodGoal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Other users' goals look exactly like missing ones
	if goal.UserID != userID {
		return nil, ErrNotFound
	}
	return goal, nil
}

// ListGoals reports goals whose end date has passed as inactive even when no entry
// has arrived since to persist that
func (s *goalService) ListGoals(ctx context.Context, userID string, activeOnly bool) ([]models.MoodGoal, error) {
	goals, err := s.goalRepo.GetByUserID(ctx, userID, activeOnly)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := goals[:0]
	for _, g := range goals {
		if analytics.ExpireGoal(&g, now) && activeOnly {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *goalService) UpdateGoal(ctx context.Context, userID, goalID string, req *models.UpdateGoalRequest) (*models.MoodGoal, error) {
	unlock := s.locker.Lock(goalID)
	defer unlock()

	goal, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateUpdateGoal(req, goal); err != nil {
		return nil, err
	}

	if req.Title.Set {
		goal.Title = req.Title.Value
	}
	if req.Description.Set {
		goal.Description = req.Description.Value
	}
	if req.EndDate.Set {
		goal.EndDate = req.EndDate.ToPtr()
	}
	now := s.now()
	if req.IsActive != nil {
		if *req.IsActive && goal.EndDate != nil && goal.EndDate.Before(now) {
			return nil, models.InvalidGoalError(models.FieldViolation{
				Field:   "is_active",
				Message: "cannot reactivate a goal whose end date has passed",
				Code:    "invalid_state",
			})
		}
		goal.IsActive = *req.IsActive
	}
	analytics.ExpireGoal(goal, now)
	goal.Status = analytics.GoalStatusOf(goal)

	return s.goalRepo.Update(ctx, goal)
}

func (s *goalService) DeleteGoal(ctx context.Context, userID, goalID string) error {
	unlock := s.locker.Lock(goalID)
	defer unlock()

	if _, err := s.GetGoal(ctx, userID, goalID); err != nil {
		return err
	}
	if err := s.goalRepo.Delete(ctx, goalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *goalService) ApplyEntry(ctx context.Context, entry *models.MoodEntry) error {
	goals, err := s.goalRepo.GetByUserID(ctx, entry.UserID, true)
	if err != nil {
		return fmt.Errorf("failed to load active goals: %w", err)
	}

	loc := userLocation(ctx, s.userRepo, entry.UserID, s.location)

	var errs []error
	for _, g := range goals {
		if err := s.applyToGoal(ctx, g.ID, entry, loc); err != nil {
			errs = append(errs, fmt.Errorf("goal %s: %w", g.ID, err))
		}
	}
	return errors.Join(errs...)
}

// applyToGoal re-reads the goal under its lock so concurrent entries never
// overwrite each other's progress
func (s *goalService) applyToGoal(ctx context.Context, goalID string, entry *models.MoodEntry, loc *time.Location) error {
	unlock := s.locker.Lock(goalID)
	defer unlock()

	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if errors.Is(err, repository.ErrNotFound) {
		// Deleted since the list was read
		return nil
	}
	if err != nil {
		return err
	}

	if !analytics.AdvanceGoal(goal, *entry, s.now(), loc) {
		return nil
	}
	if err := s.goalRepo.UpdateProgress(ctx, goal); err != nil {
		return err
	}

	metrics.GoalUpdates.WithLabelValues(string(goal.Status)).Inc()
	logger.Ctx(ctx).Debug("goal progress updated",
		logger.String("goal_id", goal.ID),
		logger.Int("current_streak", goal.Progress.CurrentStreak),
		logger.String("status", string(goal.Status)),
	)
	return nil
}
