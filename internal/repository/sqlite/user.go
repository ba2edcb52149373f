package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

type userRepository struct {
	db *DB
}

// NewUserRepository creates a user repository on db
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var (
		u                    models.User
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, ai_consent, timezone, created_at, updated_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.AIConsent, &u.Timezone, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at %q: %w", updatedAt, err)
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := formatTime(time.Now())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, ai_consent, timezone, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.AIConsent, user.Timezone, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetByID(ctx, user.ID)
}

func (r *userRepository) UpdatePreferences(ctx context.Context, id string, req *models.UpdatePreferencesRequest) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.AIConsent != nil {
		user.AIConsent = *req.AIConsent
	}
	if req.Timezone != nil {
		user.Timezone = *req.Timezone
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE users SET ai_consent = ?, timezone = ?, updated_at = ? WHERE id = ?`,
		user.AIConsent, user.Timezone, formatTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update user preferences: %w", err)
	}
	return r.GetByID(ctx, id)
}
