package main

import (
	"context"
	"fmt"
	"io"

	"github.com/JonnyWalker81/moodlens/backend/internal/ai"
	"github.com/JonnyWalker81/moodlens/backend/internal/analytics"
	"github.com/JonnyWalker81/moodlens/backend/internal/cache"
	"github.com/JonnyWalker81/moodlens/backend/internal/config"
	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/middleware"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository/sqlite"
	"github.com/JonnyWalker81/moodlens/backend/internal/service"
	"github.com/JonnyWalker81/moodlens/backend/pkg/supabase"
)

// app holds everything the commands share
type app struct {
	cfg *config.Config
	log logger.Logger

	entries repository.EntryRepository
	goals   repository.GoalRepository
	users   repository.UserRepository

	identity service.IdentityProvider
	verifier middleware.TokenVerifier

	redis       *cache.Client
	snapshots   service.SnapshotCache
	analyses    service.AnalysisStore
	idempotency middleware.IdempotencyStore

	provider ai.Provider

	closers []func() error
}

// loadConfig reads configuration and installs the default logger. Commands that
// print results pass os.Stderr so logs stay out of their output.
func loadConfig(logOut io.Writer) (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:   logger.ParseLevel(cfg.Logging.Level),
		Format:  cfg.Logging.Format,
		Backend: cfg.Logging.Backend,
		Output:  logOut,
	})
	logger.SetDefault(log)
	return cfg, log, nil
}

func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	if err := a.openCache(ctx); err != nil {
		a.close()
		return nil, err
	}

	if cfg.AI.Enabled {
		a.provider = ai.NewHTTPProvider(cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Timeout)
		log.Info("ai analysis enabled", logger.String("endpoint", cfg.AI.Endpoint))
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store.Driver {
	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, a.cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		a.entries = sqlite.NewEntryRepository(db)
		a.goals = sqlite.NewGoalRepository(db)
		a.users = sqlite.NewUserRepository(db)
		// No identity provider locally; bearer tokens are "dev:<user id>"
		a.verifier = middleware.DevTokenVerifier{}
		a.log.Info("using sqlite store", logger.String("path", db.Path()))
	default:
		client := supabase.NewClient(a.cfg.Supabase.URL, a.cfg.Supabase.ServiceKey)
		a.entries = repository.NewEntryRepository(client)
		a.goals = repository.NewGoalRepository(client)
		a.users = repository.NewUserRepository(client)
		a.identity = client
		a.verifier = client
		// Replaced by the Redis store when the cache is enabled
		a.idempotency = repository.NewIdempotencyRepository(client)
		a.log.Info("using supabase store", logger.String("url", a.cfg.Supabase.URL))
	}
	return nil
}

func (a *app) openCache(ctx context.Context) error {
	if !a.cfg.Cache.Enabled {
		return nil
	}

	rcfg := cache.DefaultConfig()
	rcfg.Addr = a.cfg.Cache.RedisAddr
	rcfg.Password = a.cfg.Cache.RedisPassword
	rcfg.DB = a.cfg.Cache.RedisDB

	client, err := cache.NewClient(ctx, rcfg)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, client.Close)
	a.redis = client
	a.snapshots = cache.NewSnapshotCache(client, a.cfg.Cache.TTL)
	a.analyses = cache.NewAnalysisStore(client, 0)
	a.idempotency = cache.NewIdempotencyStore(client, a.cfg.Cache.IdempotencyTTL)
	a.log.Info("redis cache enabled", logger.String("addr", rcfg.Addr))
	return nil
}

func (a *app) analyticsOptions() analytics.Options {
	opts := analytics.Options{Location: a.cfg.Analytics.Location()}
	if a.cfg.Analytics.EnumerateLabels {
		opts.EnumerateLabels = models.AllMoodLabels
	}
	return opts
}

func (a *app) dashboardService() service.DashboardService {
	opts := a.analyticsOptions()
	return service.NewDashboardService(service.DashboardDeps{
		Entries:   a.entries,
		Goals:     a.goals,
		Users:     a.users,
		Provider:  a.provider,
		Snapshots: a.snapshots,
		Analyses:  a.analyses,
	}, service.DashboardConfig{
		Location:        opts.Location,
		EnumerateLabels: opts.EnumerateLabels,
		Timeout:         a.cfg.Analytics.DashboardTimeout,
		AITimeout:       a.cfg.AI.Timeout,
		AnalysisType:    a.cfg.AI.AnalysisType,
	})
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("failed to close resource", logger.Err(err))
		}
	}
}
