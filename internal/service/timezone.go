package service

import (
	"context"
	"errors"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

// lookupUser returns the user's profile, or nil when there is none or it cannot be read
func lookupUser(ctx context.Context, users repository.UserRepository, userID string) *models.User {
	if users == nil {
		return nil
	}
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Ctx(ctx).Warn("failed to read user preferences", logger.Err(err))
		}
		return nil
	}
	return user
}

// userLocation is the location the user's hours, weekdays, seasons and goal
// periods are counted in
func userLocation(ctx context.Context, users repository.UserRepository, userID string, fallback *time.Location) *time.Location {
	return lookupUser(ctx, users, userID).Location(fallback)
}
