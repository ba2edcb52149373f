package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/pkg/supabase"
)

type userRepository struct {
	client *supabase.Client
}

// NewUserRepository creates a new user repository
func NewUserRepository(client *supabase.Client) UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := supabase.Filters{}
	query.Set("id", supabase.Eq(id))

	body, err := r.client.Query(ctx, "users", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return firstUser(body)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	data := map[string]interface{}{
		"id":         user.ID,
		"email":      user.Email,
		"ai_consent": user.AIConsent,
	}
	if user.Timezone != "" {
		data["timezone"] = user.Timezone
	}

	body, err := r.client.Insert(ctx, "users", data)
	if err != nil {
		if supabase.IsStatus(err, http.StatusConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return firstUser(body)
}

func (r *userRepository) UpdatePreferences(ctx context.Context, id string, req *models.UpdatePreferencesRequest) (*models.User, error) {
	data := map[string]interface{}{}
	if req.AIConsent != nil {
		data["ai_consent"] = *req.AIConsent
	}
	if req.Timezone != nil {
		data["timezone"] = *req.Timezone
	}
	if len(data) == 0 {
		return r.GetByID(ctx, id)
	}

	query := supabase.Filters{}
	query.Set("id", supabase.Eq(id))

	body, err := r.client.Update(ctx, "users", query, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update user preferences: %w", err)
	}

	return firstUser(body)
}

func firstUser(body []byte) (*models.User, error) {
	var users []models.User
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(users) == 0 {
		return nil, ErrNotFound
	}

	return &users[0], nil
}
