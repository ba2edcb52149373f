package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

type entryRepository struct {
	db *DB
}

// NewEntryRepository creates a mood entry repository on db
func NewEntryRepository(db *DB) repository.EntryRepository {
	return &entryRepository{db: db}
}

const entryColumns = `id, user_id, timestamp, mood_score, mood_label, activities,
	stress_level, energy_level, social_interaction, sleep_hours, text_feedback, created_at`

func (r *entryRepository) Create(ctx context.Context, entry *models.MoodEntry) (*models.MoodEntry, error) {
	if err := models.ValidateEntry(entry); err != nil {
		return nil, err
	}

	stored := *entry
	if stored.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate id: %w", err)
		}
		stored.ID = id.String()
	}
	if stored.Activities == nil {
		stored.Activities = []models.Activity{}
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	activities, err := json.Marshal(stored.Activities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode activities: %w", err)
	}

	var sleep sql.NullFloat64
	if stored.SleepHours != nil {
		sleep = sql.NullFloat64{Float64: *stored.SleepHours, Valid: true}
	}
	var feedback sql.NullString
	if stored.TextFeedback != nil {
		feedback = sql.NullString{String: *stored.TextFeedback, Valid: true}
	}

	query := `INSERT INTO mood_entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		stored.ID,
		stored.UserID,
		formatTime(stored.Timestamp),
		stored.MoodScore,
		string(stored.MoodLabel),
		string(activities),
		nullInt(stored.StressLevel),
		nullInt(stored.EnergyLevel),
		nullInt(stored.SocialInteraction),
		sleep,
		feedback,
		formatTime(stored.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to insert mood entry: %w", err)
	}

	stored.Timestamp = stored.Timestamp.UTC()
	stored.CreatedAt = stored.CreatedAt.UTC()
	return &stored, nil
}

func (r *entryRepository) GetByID(ctx context.Context, id string) (*models.MoodEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM mood_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mood entry: %w", err)
	}
	return entry, nil
}

func (r *entryRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.MoodEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM mood_entries
		WHERE user_id = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query mood entries: %w", err)
	}
	defer rows.Close()

	entries := []models.MoodEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func (r *entryRepository) DeleteByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM mood_entries WHERE user_id = ? AND timestamp >= ? AND timestamp <= ?`,
		userID, formatTime(start), formatTime(end))
	if err != nil {
		return fmt.Errorf("failed to delete mood entries: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*models.MoodEntry, error) {
	var (
		e                      models.MoodEntry
		timestamp, createdAt   string
		label, activities      string
		stress, energy, social sql.NullInt64
		sleep                  sql.NullFloat64
		feedback               sql.NullString
	)

	if err := s.Scan(&e.ID, &e.UserID, &timestamp, &e.MoodScore, &label, &activities,
		&stress, &energy, &social, &sleep, &feedback, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if e.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", timestamp, err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	if err := json.Unmarshal([]byte(activities), &e.Activities); err != nil {
		return nil, fmt.Errorf("bad activities: %w", err)
	}

	e.MoodLabel = models.MoodLabel(label)
	e.StressLevel = intFromNull(stress)
	e.EnergyLevel = intFromNull(energy)
	e.SocialInteraction = intFromNull(social)
	if sleep.Valid {
		e.SleepHours = &sleep.Float64
	}
	if feedback.Valid {
		e.TextFeedback = &feedback.String
	}
	return &e, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
