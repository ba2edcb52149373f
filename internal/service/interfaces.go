package service

import (
	"context"
	"errors"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/cache"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
)

var (
	// ErrNotFound is returned for missing records and for records owned by another user
	ErrNotFound = errors.New("not found")
	// ErrInsightsUnavailable is returned when a dashboard cannot be computed in time
	ErrInsightsUnavailable = errors.New("insights temporarily unavailable")
	// ErrInvalidWindow is returned when a window ends before it starts
	ErrInvalidWindow = errors.New("window end is before window start")
	// ErrNoAnalysis is returned when no external analysis has been stored for a user
	ErrNoAnalysis = errors.New("no analysis available")
)

// MoodService defines the interface for mood entry business logic
type MoodService interface {
	RecordEntry(ctx context.Context, userID string, req *models.CreateMoodEntryRequest) (*models.MoodEntry, error)
	ListEntries(ctx context.Context, userID string, start, end time.Time) ([]models.MoodEntry, error)
	DeleteEntries(ctx context.Context, userID string, start, end time.Time) error
}

// GoalService defines the interface for mood goal business logic
type GoalService interface {
	CreateGoal(ctx context.Context, userID string, req *models.CreateGoalRequest) (*models.MoodGoal, error)
	GetGoal(ctx context.Context, userID, goalID string) (*models.MoodGoal, error)
	ListGoals(ctx context.Context, userID string, activeOnly bool) ([]models.MoodGoal, error)
	UpdateGoal(ctx context.Context, userID, goalID string, req *models.UpdateGoalRequest) (*models.MoodGoal, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error
	// ApplyEntry advances every active goal of the entry's owner
	ApplyEntry(ctx context.Context, entry *models.MoodEntry) error
}

// DashboardOptions are per-request dashboard switches
type DashboardOptions struct {
	IncludeAI    bool
	AnalysisType string
}

// DashboardService computes dashboards and serves stored analyses
type DashboardService interface {
	ComputeDashboard(ctx context.Context, userID string, start, end time.Time, opts DashboardOptions) (*models.Dashboard, error)
	GetLatestAnalysis(ctx context.Context, userID string) (*models.AIAnalysis, error)
}

// ExportService assembles export bundles
type ExportService interface {
	Export(ctx context.Context, userID string, start, end time.Time) (*models.ExportBundle, error)
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// UserService manages analysis preferences
type UserService interface {
	GetOrCreate(ctx context.Context, userID, email string) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID, email string, req *models.UpdatePreferencesRequest) (*models.User, error)
}

// SnapshotCache is the subset of the Redis snapshot cache the services use
type SnapshotCache interface {
	Version(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, key cache.SnapshotKey) (*models.AnalyticsSnapshot, error)
	Set(ctx context.Context, key cache.SnapshotKey, snap *models.AnalyticsSnapshot) error
	InvalidateUser(ctx context.Context, userID string) error
}

// AnalysisStore keeps the latest external analysis per user
type AnalysisStore interface {
	SaveLatest(ctx context.Context, analysis *models.AIAnalysis) error
	Latest(ctx context.Context, userID string) (*models.AIAnalysis, error)
}
