package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/service"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's entries and analytics to JSON",
	RunE:  runExport,
}

var (
	exportUser  string
	exportStart string
	exportEnd   string
	exportOut   string
)

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "User ID to export")
	exportCmd.Flags().StringVar(&exportStart, "start", "", "Window start, RFC3339 or YYYY-MM-DD (default: window days before end)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "Window end, RFC3339 or YYYY-MM-DD (default: now)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	_ = exportCmd.MarkFlagRequired("user")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(os.Stderr)
	if err != nil {
		return err
	}

	end := time.Now().UTC()
	if exportEnd != "" {
		if end, err = parseFlagTime(exportEnd); err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
	}
	start := end.AddDate(0, 0, -cfg.Analytics.DefaultWindowDays)
	if exportStart != "" {
		if start, err = parseFlagTime(exportStart); err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	bundle, err := service.NewExportService(a.entries, a.users, a.analyticsOptions()).Export(ctx, exportUser, start, end)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	log.Info("export written",
		logger.String("user_id", exportUser),
		logger.Int("entries", len(bundle.Entries)),
		logger.String("out", exportOut),
	)
	return nil
}

func parseFlagTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}
