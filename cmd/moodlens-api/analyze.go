package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/service"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute a dashboard for one user and print it",
	Long: `Compute the analytics dashboard for a user over the last N days using the
configured store, cache and AI provider, and print it as JSON.`,
	RunE: runAnalyze,
}

var (
	analyzeUser string
	analyzeDays int
	analyzeAI   bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "User ID to analyze")
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "Window length in days (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeAI, "ai", false, "Request AI recommendations")
	_ = analyzeCmd.MarkFlagRequired("user")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(os.Stderr)
	if err != nil {
		return err
	}

	days := analyzeDays
	if days <= 0 {
		days = cfg.Analytics.DefaultWindowDays
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	dash, err := a.dashboardService().ComputeDashboard(ctx, analyzeUser, start, end, service.DashboardOptions{IncludeAI: analyzeAI})
	if err != nil {
		return fmt.Errorf("failed to compute dashboard: %w", err)
	}
	log.Debug("dashboard ready",
		logger.String("user_id", analyzeUser),
		logger.Int("insights", len(dash.Insights)),
	)

	out, err := json.MarshalIndent(dash, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
