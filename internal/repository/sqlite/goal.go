package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

type goalRepository struct {
	db *DB
}

// NewGoalRepository creates a mood goal repository on db
func NewGoalRepository(db *DB) repository.GoalRepository {
	return &goalRepository{db: db}
}

const goalColumns = `id, user_id, title, description, target_mood_score, target_frequency,
	start_date, end_date, progress, is_active, status, created_at, updated_at`

func (r *goalRepository) Create(ctx context.Context, goal *models.MoodGoal) (*models.MoodGoal, error) {
	stored := *goal
	if stored.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate id: %w", err)
		}
		stored.ID = id.String()
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	progress, err := json.Marshal(stored.Progress)
	if err != nil {
		return nil, fmt.Errorf("failed to encode progress: %w", err)
	}

	query := `INSERT INTO mood_goals (` + goalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		stored.ID,
		stored.UserID,
		stored.Title,
		stored.Description,
		stored.TargetMoodScore,
		string(stored.TargetFrequency),
		formatTime(stored.StartDate),
		nullTime(stored.EndDate),
		string(progress),
		stored.IsActive,
		string(stored.Status),
		formatTime(stored.CreatedAt),
		formatTime(stored.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to insert goal: %w", err)
	}

	return r.GetByID(ctx, stored.ID)
}

func (r *goalRepository) GetByID(ctx context.Context, id string) (*models.MoodGoal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM mood_goals WHERE id = ?`, id)
	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

func (r *goalRepository) GetByUserID(ctx context.Context, userID string, activeOnly bool) ([]models.MoodGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM mood_goals WHERE user_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	goals := []models.MoodGoal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}
	return goals, rows.Err()
}

func (r *goalRepository) Update(ctx context.Context, goal *models.MoodGoal) (*models.MoodGoal, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mood_goals SET title = ?, description = ?, end_date = ?, is_active = ?, status = ?, updated_at = ? WHERE id = ?`,
		goal.Title, goal.Description, nullTime(goal.EndDate), goal.IsActive, string(goal.Status), formatTime(time.Now()), goal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, goal.ID)
}

func (r *goalRepository) UpdateProgress(ctx context.Context, goal *models.MoodGoal) error {
	progress, err := json.Marshal(goal.Progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE mood_goals SET progress = ?, is_active = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(progress), goal.IsActive, string(goal.Status), formatTime(time.Now()), goal.ID)
	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}
	return requireRow(res)
}

func (r *goalRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mood_goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanGoal(s scanner) (*models.MoodGoal, error) {
	var (
		g                               models.MoodGoal
		frequency, status, progress     string
		startDate, createdAt, updatedAt string
		endDate                         sql.NullString
	)

	if err := s.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.TargetMoodScore, &frequency,
		&startDate, &endDate, &progress, &g.IsActive, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if g.StartDate, err = parseTime(startDate); err != nil {
		return nil, fmt.Errorf("bad start_date %q: %w", startDate, err)
	}
	if endDate.Valid {
		end, err := parseTime(endDate.String)
		if err != nil {
			return nil, fmt.Errorf("bad end_date %q: %w", endDate.String, err)
		}
		g.EndDate = &end
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at %q: %w", updatedAt, err)
	}
	if err := json.Unmarshal([]byte(progress), &g.Progress); err != nil {
		return nil, fmt.Errorf("bad progress: %w", err)
	}

	g.TargetFrequency = models.TargetFrequency(frequency)
	g.Status = models.GoalStatus(status)
	return &g, nil
}
