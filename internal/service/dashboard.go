package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/JonnyWalker81/moodlens/backend/internal/ai"
	"github.com/JonnyWalker81/moodlens/backend/internal/analytics"
	"github.com/JonnyWalker81/moodlens/backend/internal/cache"
	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/metrics"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
)

// DashboardConfig holds the dashboard's tunables
type DashboardConfig struct {
	// Location buckets hours, weekdays, seasons and goal periods. Nil means UTC.
	Location *time.Location
	// EnumerateLabels is passed through to the snapshot's mood distribution
	EnumerateLabels []models.MoodLabel
	// Timeout bounds a whole dashboard computation. Zero means no bound.
	Timeout time.Duration
	// AITimeout bounds the provider call. It should be well under Timeout.
	AITimeout time.Duration
	// AnalysisType is requested when DashboardOptions does not name one
	AnalysisType string
}

// DashboardDeps are the collaborators of the dashboard service. Provider, Snapshots
// and Analyses are optional.
type DashboardDeps struct {
	Entries   repository.EntryRepository
	Goals     repository.GoalRepository
	Users     repository.UserRepository
	Provider  ai.Provider
	Snapshots SnapshotCache
	Analyses  AnalysisStore
}

type dashboardService struct {
	deps  DashboardDeps
	cfg   DashboardConfig
	group singleflight.Group
	now   func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(deps DashboardDeps, cfg DashboardConfig) DashboardService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.AnalysisType == "" {
		cfg.AnalysisType = ai.DefaultAnalysisType
	}
	if deps.Analyses == nil {
		deps.Analyses = newMemoryAnalysisStore()
	}
	return &dashboardService{
		deps: deps,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *dashboardService) ComputeDashboard(ctx context.Context, userID string, start, end time.Time, opts DashboardOptions) (*models.Dashboard, error) {
	if end.Before(start) {
		return nil, ErrInvalidWindow
	}
	if opts.AnalysisType == "" {
		opts.AnalysisType = s.cfg.AnalysisType
	}

	// The profile carries both the timezone and the AI consent
	user := lookupUser(ctx, s.deps.Users, userID)
	loc := user.Location(s.cfg.Location)

	// Identical concurrent requests share one computation. It runs detached from
	// the first caller so one client hanging up does not fail the others.
	key := fmt.Sprintf("%s|%d|%d|%s|%t|%s", userID, start.UnixNano(), end.UnixNano(), loc, opts.IncludeAI, opts.AnalysisType)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		cctx, cancel := s.computeContext(ctx)
		defer cancel()
		return s.compute(cctx, user, userID, loc, start, end, opts)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, context.DeadlineExceeded) {
				return nil, ErrInsightsUnavailable
			}
			return nil, res.Err
		}
		// Shared results are copied so callers never alias each other
		dash := *res.Val.(*models.Dashboard)
		return &dash, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrInsightsUnavailable
		}
		return nil, ctx.Err()
	}
}

func (s *dashboardService) computeContext(parent context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(parent)
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, s.cfg.Timeout)
}

func (s *dashboardService) compute(ctx context.Context, user *models.User, userID string, loc *time.Location, start, end time.Time, opts DashboardOptions) (*models.Dashboard, error) {
	began := s.now()
	log := logger.Ctx(ctx)

	// The version is pinned before entries are read, so a snapshot computed from
	// entries that an invalidation has since superseded is stored where no reader looks
	snapKey := cache.SnapshotKey{UserID: userID, Start: start, End: end, Location: loc.String()}
	cached, cacheable := s.cachedSnapshot(ctx, &snapKey)

	var entries []models.MoodEntry
	if cached == nil || opts.IncludeAI {
		var err error
		entries, err = s.deps.Entries.GetByUserIDAndDateRange(ctx, userID, start, end)
		if err != nil {
			metrics.DashboardDuration.WithLabelValues("error").Observe(s.now().Sub(began).Seconds())
			return nil, fmt.Errorf("failed to load entries: %w", err)
		}
	}

	var (
		snap     *models.AnalyticsSnapshot
		aiStatus models.AIStatus
		aiRecs   []models.Insight
		goals    []models.MoodGoal
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if cached != nil {
			snap = cached
			return nil
		}
		computed, err := analytics.ComputeSnapshot(gctx, entries, start, end, analytics.Options{
			Location:        loc,
			EnumerateLabels: s.cfg.EnumerateLabels,
		})
		if err != nil {
			return err
		}
		snap = computed
		if cacheable {
			s.storeSnapshot(gctx, snapKey, computed)
		}
		return nil
	})

	// Never fails; provider problems only change the status
	g.Go(func() error {
		aiStatus, aiRecs = s.requestAnalysis(gctx, user, userID, entries, opts)
		return nil
	})

	g.Go(func() error {
		active, err := s.activeGoals(gctx, userID)
		if err != nil {
			return err
		}
		goals = active
		return nil
	})

	if err := g.Wait(); err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		metrics.DashboardDuration.WithLabelValues(outcome).Observe(s.now().Sub(began).Seconds())
		return nil, err
	}

	dash := &models.Dashboard{
		Snapshot:   snap,
		Insights:   analytics.MergeInsights(analytics.GenerateInsights(snap), aiRecs),
		Goals:      goals,
		AIStatus:   aiStatus,
		ComputedAt: s.now().UTC(),
	}

	elapsed := s.now().Sub(began)
	metrics.DashboardDuration.WithLabelValues("ok").Observe(elapsed.Seconds())
	if snap.BasicStats != nil {
		metrics.DashboardEntries.Observe(float64(snap.BasicStats.TotalEntries))
	}
	log.Debug("dashboard computed",
		logger.Bool("cache_hit", cached != nil),
		logger.String("ai_status", string(aiStatus)),
		logger.Int("insights", len(dash.Insights)),
		logger.Duration("elapsed", elapsed),
	)
	return dash, nil
}

// cachedSnapshot pins key to the user's current cache version and looks it up.
// cacheable is false when the version could not be read; the result must not be stored then.
func (s *dashboardService) cachedSnapshot(ctx context.Context, key *cache.SnapshotKey) (snap *models.AnalyticsSnapshot, cacheable bool) {
	if s.deps.Snapshots == nil {
		return nil, false
	}
	log := logger.Ctx(ctx)

	version, err := s.deps.Snapshots.Version(ctx, key.UserID)
	if err != nil {
		log.Warn("snapshot cache version read failed", logger.Err(err))
		return nil, false
	}
	key.Version = version

	snap, err = s.deps.Snapshots.Get(ctx, *key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn("snapshot cache read failed", logger.Err(err))
		}
		return nil, true
	}
	return snap, true
}

func (s *dashboardService) storeSnapshot(ctx context.Context, key cache.SnapshotKey, snap *models.AnalyticsSnapshot) {
	if s.deps.Snapshots == nil {
		return
	}
	if err := s.deps.Snapshots.Set(ctx, key, snap); err != nil {
		logger.Ctx(ctx).Warn("snapshot cache write failed", logger.Err(err))
	}
}

// activeGoals returns the user's active goals whose end date has not passed
func (s *dashboardService) activeGoals(ctx context.Context, userID string) ([]models.MoodGoal, error) {
	all, err := s.deps.Goals.GetByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	now := s.now()
	goals := make([]models.MoodGoal, 0, len(all))
	for _, g := range all {
		if analytics.ExpireGoal(&g, now) {
			continue
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func (s *dashboardService) requestAnalysis(ctx context.Context, user *models.User, userID string, entries []models.MoodEntry, opts DashboardOptions) (status models.AIStatus, recs []models.Insight) {
	defer func() {
		metrics.AIRequests.WithLabelValues(string(status)).Inc()
	}()

	if !opts.IncludeAI || s.deps.Provider == nil {
		return models.AIStatusDisabled, nil
	}

	log := logger.Ctx(ctx)

	if user == nil || !user.AIConsent {
		return models.AIStatusNoConsent, nil
	}

	actx := ctx
	if s.cfg.AITimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, s.cfg.AITimeout)
		defer cancel()
	}

	analysis, err := s.deps.Provider.RequestAnalysis(actx, userID, entries, opts.AnalysisType)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(actx.Err(), context.DeadlineExceeded) {
			log.Warn("ai analysis timed out", logger.Duration("timeout", s.cfg.AITimeout))
			return models.AIStatusTimeout, nil
		}
		log.Warn("ai analysis unavailable", logger.Err(err))
		return models.AIStatusUnavailable, nil
	}

	if err := s.deps.Analyses.SaveLatest(ctx, analysis); err != nil {
		log.Warn("failed to store ai analysis", logger.Err(err))
	}
	return models.AIStatusOK, analysis.Recommendations
}

func (s *dashboardService) GetLatestAnalysis(ctx context.Context, userID string) (*models.AIAnalysis, error) {
	analysis, err := s.deps.Analyses.Latest(ctx, userID)
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNoAnalysis
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis: %w", err)
	}
	return analysis, nil
}

// memoryAnalysisStore keeps analyses in process when Redis is disabled
type memoryAnalysisStore struct {
	mu     sync.RWMutex
	latest map[string]models.AIAnalysis
}

func newMemoryAnalysisStore() *memoryAnalysisStore {
	return &memoryAnalysisStore{latest: make(map[string]models.AIAnalysis)}
}

func (m *memoryAnalysisStore) SaveLatest(_ context.Context, analysis *models.AIAnalysis) error {
	if analysis.UserID == "" {
		return errors.New("analysis has no user id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[analysis.UserID] = *analysis
	return nil
}

func (m *memoryAnalysisStore) Latest(_ context.Context, userID string) (*models.AIAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.latest[userID]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &a, nil
}
