package models

import "time"

// MoodLabel is the qualitative label a user attaches to an entry
type MoodLabel string

const (
	MoodVeryHappy MoodLabel = "very_happy"
	MoodHappy     MoodLabel = "happy"
	MoodContent   MoodLabel = "content"
	MoodNeutral   MoodLabel = "neutral"
	MoodAnxious   MoodLabel = "anxious"
	MoodSad       MoodLabel = "sad"
	MoodVerySad   MoodLabel = "very_sad"
	MoodStressed  MoodLabel = "stressed"
	MoodTired     MoodLabel = "tired"
	MoodAngry     MoodLabel = "angry"
)

// AllMoodLabels lists every label in display order
var AllMoodLabels = []MoodLabel{
	MoodVeryHappy, MoodHappy, MoodContent, MoodNeutral, MoodAnxious,
	MoodSad, MoodVerySad, MoodStressed, MoodTired, MoodAngry,
}

// Valid reports whether l is one of the known labels
func (l MoodLabel) Valid() bool {
	for _, known := range AllMoodLabels {
		if l == known {
			return true
		}
	}
	return false
}

// Activity is an activity tag attached to an entry
type Activity string

const (
	ActivityExercise Activity = "exercise"
	ActivityWork     Activity = "work"
	ActivitySocial   Activity = "social"
	ActivitySleep    Activity = "sleep"
	ActivityEating   Activity = "eating"
	ActivityHobby    Activity = "hobby"
	ActivityFamily   Activity = "family"
	ActivityTravel   Activity = "travel"
	ActivityStudy    Activity = "study"
	ActivityOther    Activity = "other"
)

// AllActivities lists every activity tag
var AllActivities = []Activity{
	ActivityExercise, ActivityWork, ActivitySocial, ActivitySleep, ActivityEating,
	ActivityHobby, ActivityFamily, ActivityTravel, ActivityStudy, ActivityOther,
}

// Valid reports whether a is one of the known activity tags
func (a Activity) Valid() bool {
	for _, known := range AllActivities {
		if a == known {
			return true
		}
	}
	return false
}

// Score bounds for MoodEntry.MoodScore
const (
	MinMoodScore = 1
	MaxMoodScore = 5
)

// MaxTextFeedbackLength is the maximum number of characters in TextFeedback
const MaxTextFeedbackLength = 1000

// MoodEntry is a single timestamped self-report. Entries are immutable once stored.
type MoodEntry struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Timestamp         time.Time  `json:"timestamp"`
	MoodScore         int        `json:"mood_score"`
	MoodLabel         MoodLabel  `json:"mood_label"`
	Activities        []Activity `json:"activities"`
	StressLevel       *int       `json:"stress_level,omitempty"`
	EnergyLevel       *int       `json:"energy_level,omitempty"`
	SocialInteraction *int       `json:"social_interaction,omitempty"`
	SleepHours        *float64   `json:"sleep_hours,omitempty"`
	TextFeedback      *string    `json:"text_feedback,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// HasActivity reports whether the entry is tagged with a
func (e *MoodEntry) HasActivity(a Activity) bool {
	for _, tag := range e.Activities {
		if tag == a {
			return true
		}
	}
	return false
}

// CreateMoodEntryRequest represents the request to record a mood entry
type CreateMoodEntryRequest struct {
	ID                string     `json:"id" validate:"omitempty,uuid"`
	Timestamp         *time.Time `json:"timestamp"`
	MoodScore         int        `json:"mood_score" validate:"required,min=1,max=5"`
	MoodLabel         MoodLabel  `json:"mood_label" validate:"required"`
	Activities        []Activity `json:"activities" validate:"omitempty,max=10"`
	StressLevel       *int       `json:"stress_level" validate:"omitempty,min=1,max=10"`
	EnergyLevel       *int       `json:"energy_level" validate:"omitempty,min=1,max=10"`
	SocialInteraction *int       `json:"social_interaction" validate:"omitempty,min=1,max=10"`
	SleepHours        *float64   `json:"sleep_hours" validate:"omitempty,min=0,max=24"`
	TextFeedback      *string    `json:"text_feedback" validate:"omitempty,max=1000"`
}

// TargetFrequency is the period a goal's streak is measured in
type TargetFrequency string

const (
	FrequencyDaily   TargetFrequency = "daily"
	FrequencyWeekly  TargetFrequency = "weekly"
	FrequencyMonthly TargetFrequency = "monthly"
)

// Valid reports whether f is a known frequency
func (f TargetFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// GoalStatus is the derived state of a goal
type GoalStatus string

const (
	GoalStatusOnTrack  GoalStatus = "on_track"
	GoalStatusBroken   GoalStatus = "broken"
	GoalStatusAchieved GoalStatus = "achieved"
	GoalStatusInactive GoalStatus = "inactive"
)

// GoalProgress is mutated only by the goal tracker
type GoalProgress struct {
	CurrentStreak     int        `json:"current_streak"`
	LongestStreak     int        `json:"longest_streak"`
	SuccessRate       float64    `json:"success_rate"`
	QualifyingEntries int        `json:"qualifying_entries"`
	TotalEntries      int        `json:"total_entries"`
	LastQualifyingAt  *time.Time `json:"last_qualifying_at,omitempty"`
	LastEntryAt       *time.Time `json:"last_entry_at,omitempty"`
}

// MoodGoal is a user-declared mood target
type MoodGoal struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	TargetMoodScore int             `json:"target_mood_score"`
	TargetFrequency TargetFrequency `json:"target_frequency"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	Progress        GoalProgress    `json:"progress"`
	IsActive        bool            `json:"is_active"`
	Status          GoalStatus      `json:"status,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateGoalRequest represents the request to create a goal
type CreateGoalRequest struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=1000"`
	TargetMoodScore int             `json:"target_mood_score" validate:"required,min=1,max=5"`
	TargetFrequency TargetFrequency `json:"target_frequency" validate:"required"`
	StartDate       *time.Time      `json:"start_date"`
	EndDate         *time.Time      `json:"end_date"`
}

// UpdateGoalRequest represents a partial goal update. Progress is never client-writable.
type UpdateGoalRequest struct {
	Title       NullableString `json:"title"`
	Description NullableString `json:"description"`
	EndDate     NullableTime   `json:"end_date"`
	IsActive    *bool          `json:"is_active"`
}
