package repository

import (
	"context"
	"errors"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a record with the same ID already exists
	ErrConflict = errors.New("record already exists")
)

// EntryRepository defines the interface for mood entry data access.
// Entries are immutable; there is no update.
type EntryRepository interface {
	Create(ctx context.Context, entry *models.MoodEntry) (*models.MoodEntry, error)
	GetByID(ctx context.Context, id string) (*models.MoodEntry, error)
	// GetByUserIDAndDateRange returns entries with start <= timestamp <= end, oldest first
	GetByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.MoodEntry, error)
	DeleteByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) error
}

// GoalRepository defines the interface for mood goal data access
type GoalRepository interface {
	Create(ctx context.Context, goal *models.MoodGoal) (*models.MoodGoal, error)
	GetByID(ctx context.Context, id string) (*models.MoodGoal, error)
	GetByUserID(ctx context.Context, userID string, activeOnly bool) ([]models.MoodGoal, error)
	Update(ctx context.Context, goal *models.MoodGoal) (*models.MoodGoal, error)
	// UpdateProgress writes only the tracker-owned fields: progress, is_active and status
	UpdateProgress(ctx context.Context, goal *models.MoodGoal) error
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePreferences(ctx context.Context, id string, req *models.UpdatePreferencesRequest) (*models.User, error)
}
