package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodlens/backend/internal/analytics"
	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

type exportService struct {
	entryRepo repository.EntryRepository
	userRepo  repository.UserRepository
	opts      analytics.Options
	now       func() time.Time
}

// NewExportService creates a new export service. Snapshots in bundles are always
// computed fresh so they match the entries shipped alongside them, in the owner's
// timezone when one is set.
func NewExportService(entryRepo repository.EntryRepository, userRepo repository.UserRepository, opts analytics.Options) ExportService {
	return &exportService{
		entryRepo: entryRepo,
		userRepo:  userRepo,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *exportService) Export(ctx context.Context, userID string, start, end time.Time) (*models.ExportBundle, error) {
	if end.Before(start) {
		return nil, ErrInvalidWindow
	}

	entries, err := s.entryRepo.GetByUserIDAndDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	opts := s.opts
	opts.Location = userLocation(ctx, s.userRepo, userID, opts.Location)
	snap, err := analytics.ComputeSnapshot(ctx, entries, start, end, opts)
	if err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []models.MoodEntry{}
	}

	logger.Ctx(ctx).Info("export bundle assembled", logger.Int("entries", len(entries)))

	return &models.ExportBundle{
		UserID:      userID,
		WindowStart: start,
		WindowEnd:   end,
		Entries:     entries,
		Snapshot:    snap,
		GeneratedAt: s.now().UTC(),
	}, nil
}
