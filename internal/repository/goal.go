package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/pkg/supabase"
)

const goalsTable = "mood_goals"

type goalRepository struct {
	client *supabase.Client
}

// NewGoalRepository creates a new mood goal repository backed by Supabase
func NewGoalRepository(client *supabase.Client) GoalRepository {
	return &goalRepository{client: client}
}

func (r *goalRepository) Create(ctx context.Context, goal *models.MoodGoal) (*models.MoodGoal, error) {
	data := map[string]interface{}{
		"user_id":           goal.UserID,
		"title":             goal.Title,
		"description":       goal.Description,
		"target_mood_score": goal.TargetMoodScore,
		"target_frequency":  goal.TargetFrequency,
		"start_date":        goal.StartDate,
		"end_date":          goal.EndDate,
		"progress":          goal.Progress,
		"is_active":         goal.IsActive,
		"status":            goal.Status,
	}

	if goal.ID != "" {
		data["id"] = goal.ID
	}

	body, err := r.client.Insert(ctx, goalsTable, data)
	if err != nil {
		if supabase.IsStatus(err, http.StatusConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return firstGoal(body)
}

func (r *goalRepository) GetByID(ctx context.Context, id string) (*models.MoodGoal, error) {
	query := supabase.Filters{}
	query.Set("id", supabase.Eq(id))

	body, err := r.client.Query(ctx, goalsTable, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	return firstGoal(body)
}

func (r *goalRepository) GetByUserID(ctx context.Context, userID string, activeOnly bool) ([]models.MoodGoal, error) {
	query := supabase.Filters{}
	query.Set("user_id", supabase.Eq(userID))
	query.Set("order", "created_at.asc,id.asc")
	if activeOnly {
		query.Set("is_active", supabase.Eq("true"))
	}

	body, err := r.client.Query(ctx, goalsTable, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}

	var goals []models.MoodGoal
	if err := json.Unmarshal(body, &goals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return goals, nil
}

func (r *goalRepository) Update(ctx context.Context, goal *models.MoodGoal) (*models.MoodGoal, error) {
	query := supabase.Filters{}
	query.Set("id", supabase.Eq(goal.ID))

	data := map[string]interface{}{
		"title":       goal.Title,
		"description": goal.Description,
		"end_date":    goal.EndDate,
		"is_active":   goal.IsActive,
		"status":      goal.Status,
	}

	body, err := r.client.Update(ctx, goalsTable, query, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return firstGoal(body)
}

func (r *goalRepository) UpdateProgress(ctx context.Context, goal *models.MoodGoal) error {
	query := supabase.Filters{}
	query.Set("id", supabase.Eq(goal.ID))

	data := map[string]interface{}{
		"progress":  goal.Progress,
		"is_active": goal.IsActive,
		"status":    goal.Status,
	}

	if _, err := r.client.Update(ctx, goalsTable, query, data); err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}
	return nil
}

func (r *goalRepository) Delete(ctx context.Context, id string) error {
	query := supabase.Filters{}
	query.Set("id", supabase.Eq(id))

	if err := r.client.Delete(ctx, goalsTable, query); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func firstGoal(body []byte) (*models.MoodGoal, error) {
	var goals []models.MoodGoal
	if err := json.Unmarshal(body, &goals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(goals) == 0 {
		return nil, ErrNotFound
	}

	return &goals[0], nil
}
