package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/pkg/supabase"
)

const entriesTable = "mood_entries"

type entryRepository struct {
	client *supabase.Client
}

// NewEntryRepository creates a new mood entry repository backed by Supabase
func NewEntryRepository(client *supabase.Client) EntryRepository {
	return &entryRepository{client: client}
}

func (r *entryRepository) Create(ctx context.Context, entry *models.MoodEntry) (*models.MoodEntry, error) {
	if err := models.ValidateEntry(entry); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"user_id":    entry.UserID,
		"timestamp":  entry.Timestamp.UTC().Format(time.RFC3339Nano),
		"mood_score": entry.MoodScore,
		"mood_label": entry.MoodLabel,
		"activities": entry.Activities,
	}

	// Use client-provided ID if present (for offline-first/UUIDv7 support)
	if entry.ID != "" {
		data["id"] = entry.ID
	}
	if entry.Activities == nil {
		data["activities"] = []models.Activity{}
	}

	if entry.StressLevel != nil {
		data["stress_level"] = *entry.StressLevel
	}
	if entry.EnergyLevel != nil {
		data["energy_level"] = *entry.EnergyLevel
	}
	if entry.SocialInteraction != nil {
		data["social_interaction"] = *entry.SocialInteraction
	}
	if entry.SleepHours != nil {
		data["sleep_hours"] = *entry.SleepHours
	}
	if entry.TextFeedback != nil {
		data["text_feedback"] = *entry.TextFeedback
	}

	body, err := r.client.Insert(ctx, entriesTable, data)
	if err != nil {
		if supabase.IsStatus(err, http.StatusConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create mood entry: %w", err)
	}

	var entries []models.MoodEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no mood entry returned")
	}

	return &entries[0], nil
}

func (r *entryRepository) GetByID(ctx context.Context, id string) (*models.MoodEntry, error) {
	query := supabase.Filters{}
	query.Set("id", supabase.Eq(id))

	body, err := r.client.Query(ctx, entriesTable, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood entry: %w", err)
	}

	var entries []models.MoodEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	return &entries[0], nil
}

func (r *entryRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]models.MoodEntry, error) {
	query := supabase.Filters{}
	query.Set("user_id", supabase.Eq(userID))
	query.Set("and", fmt.Sprintf("(timestamp.gte.%s,timestamp.lte.%s)", start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano)))
	query.Set("order", "timestamp.asc,id.asc")

	body, err := r.client.Query(ctx, entriesTable, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood entries: %w", err)
	}

	var entries []models.MoodEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return entries, nil
}

func (r *entryRepository) DeleteByUserIDAndDateRange(ctx context.Context, userID string, start, end time.Time) error {
	query := supabase.Filters{}
	query.Set("user_id", supabase.Eq(userID))
	query.Set("and", fmt.Sprintf("(timestamp.gte.%s,timestamp.lte.%s)", start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano)))

	if err := r.client.Delete(ctx, entriesTable, query); err != nil {
		return fmt.Errorf("failed to delete mood entries: %w", err)
	}
	return nil
}
