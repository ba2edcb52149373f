package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/moodlens/backend/internal/config"
	"github.com/JonnyWalker81/moodlens/backend/internal/handlers"
	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/middleware"
	"github.com/JonnyWalker81/moodlens/backend/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(nil)
	if err != nil {
		return err
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting moodlens api server",
		logger.String("env", cfg.Server.Env),
		logger.String("store", cfg.Store.Driver),
	)

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	// Only the log level is hot-reloadable
	cfg.Watch(func(next *config.Config) {
		level := logger.ParseLevel(next.Logging.Level)
		if level != log.Level() {
			log.SetLevel(level)
			log.Info("log level changed", logger.String("level", level.String()))
		}
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", logger.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}

func newRouter(a *app) *gin.Engine {
	cfg := a.cfg

	// Set Gin mode based on environment
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	window := handlers.NewWindow(cfg.Analytics.DefaultWindowDays)

	// Initialize services
	goalService := service.NewGoalService(a.goals, a.users, cfg.Analytics.Location())
	moodService := service.NewMoodService(a.entries, goalService, a.snapshots)
	dashboardService := a.dashboardService()
	exportService := service.NewExportService(a.entries, a.users, a.analyticsOptions())
	authService := service.NewAuthService(a.identity, a.users)
	userService := service.NewUserService(a.users)

	// Initialize handlers
	moodHandler := handlers.NewMoodHandler(moodService, window)
	goalHandler := handlers.NewGoalHandler(goalService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, window)
	exportHandler := handlers.NewExportHandler(exportService, window)
	authHandler := handlers.NewAuthHandler(authService, userService)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(a.log))
	router.Use(middleware.Metrics())
	router.Use(middleware.SecurityHeaders(cfg.Server.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok", "env": cfg.Server.Env}
		if a.redis != nil {
			if err := a.redis.HealthCheck(c.Request.Context()); err != nil {
				// Degraded, not down: every cache has a fallback
				body["status"] = "degraded"
				body["cache"] = err.Error()
			}
		}
		c.JSON(status, body)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.Auth(a.verifier)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimitAuth())
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/logout", authHandler.Logout)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(authMiddleware, middleware.RateLimit())
		if a.idempotency != nil {
			protected.Use(middleware.Idempotency(a.idempotency))
		}
		{
			protected.GET("/me", authHandler.Me)
			protected.PATCH("/me/preferences", authHandler.UpdatePreferences)

			// Entry routes
			protected.POST("/entries", moodHandler.CreateEntry)
			protected.GET("/entries", moodHandler.ListEntries)
			protected.DELETE("/entries", moodHandler.DeleteEntries)

			// Goal routes
			protected.POST("/goals", goalHandler.CreateGoal)
			protected.GET("/goals", goalHandler.ListGoals)
			protected.GET("/goals/:id", goalHandler.GetGoal)
			protected.PATCH("/goals/:id", goalHandler.UpdateGoal)
			protected.DELETE("/goals/:id", goalHandler.DeleteGoal)

			// Insight routes
			protected.GET("/dashboard", middleware.RateLimitDashboard(), dashboardHandler.GetDashboard)
			protected.GET("/analysis/latest", dashboardHandler.GetLatestAnalysis)
			protected.GET("/export", exportHandler.Export)
		}
	}

	return router
}
