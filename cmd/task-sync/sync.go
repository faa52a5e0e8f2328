package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/salaamdev/task-sync/internal/config"
	"github.com/salaamdev/task-sync/internal/engine"
	"github.com/salaamdev/task-sync/internal/history"
	"github.com/salaamdev/task-sync/internal/poll"
	"github.com/salaamdev/task-sync/internal/ui"
)

var (
	syncDryRun  bool
	syncMode    string
	syncPoll    time.Duration
	syncLogFile string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a reconciliation cycle (or keep running with --poll)",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := engine.ParseMode(resolveMode())
		if err != nil {
			return err
		}
		cfg := engine.Config{
			Mode:             mode,
			TombstoneTTLDays: config.GetInt("tombstone-ttl-days"),
			DryRun:           syncDryRun || config.GetBool("dry-run"),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng, err := buildEngine(ctx, cfg)
		if err != nil {
			return err
		}

		interval := syncPoll
		if interval == 0 {
			interval = config.GetDuration("poll-interval")
		}
		if interval <= 0 {
			return runCycle(ctx, eng, cfg.DryRun, true)
		}

		if logFile := resolveLogFile(); logFile != "" {
			closeLog := poll.SetupLogFile(logFile)
			defer func() { _ = closeLog() }()
		}

		log.WithField("interval", interval).Info("polling")
		err = poll.Run(ctx, poll.Options{
			Interval:   interval,
			ConfigPath: config.ConfigFileUsed(),
			RunOnce: func(ctx context.Context) error {
				return runCycle(ctx, eng, cfg.DryRun, false)
			},
			OnConfigChange: func() {
				_ = config.Initialize()
			},
			Reload: func() time.Duration {
				return config.GetDuration("poll-interval")
			},
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

// runCycle executes one cycle, records it in history, and renders the
// report. In poll mode render is false and only the log line is emitted.
func runCycle(ctx context.Context, eng *engine.Engine, dryRun, render bool) error {
	report, err := eng.RunCycle(ctx)
	if err != nil {
		return err
	}

	if !dryRun && config.GetBool("history.enabled") {
		if h, herr := history.Open(config.StateDir(), config.GetInt("history.keep")); herr == nil {
			if rerr := h.Record(report); rerr != nil {
				log.WithError(rerr).Warn("recording cycle history failed")
			}
			_ = h.Close()
		} else {
			log.WithError(herr).Warn("opening cycle history failed")
		}
	}

	if !render {
		return nil
	}
	if jsonOutput {
		outputJSON(report)
		return nil
	}
	fmt.Println(ui.RenderSyncReport(report, ui.GetWidth()))
	return nil
}

func resolveMode() string {
	if syncMode != "" {
		return syncMode
	}
	return config.GetString("mode")
}

func resolveLogFile() string {
	if syncLogFile != "" {
		return syncLogFile
	}
	return config.GetString("log-file")
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report intended writes without touching any provider")
	syncCmd.Flags().StringVar(&syncMode, "mode", "", "Sync mode: bidirectional, a-to-b-only, mirror")
	syncCmd.Flags().DurationVar(&syncPoll, "poll", 0, "Keep running, one cycle per interval (e.g. 5m)")
	syncCmd.Flags().StringVar(&syncLogFile, "log-file", "", "Rotate logs to this file in poll mode")
	rootCmd.AddCommand(syncCmd)
}
