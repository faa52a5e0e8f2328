package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/salaamdev/task-sync/internal/config"
	"github.com/salaamdev/task-sync/internal/history"
	"github.com/salaamdev/task-sync/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sync cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := history.Open(config.StateDir(), 0)
		if err != nil {
			return err
		}
		defer func() { _ = h.Close() }()

		entries, err := h.Recent(historyLimit)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(entries)
			return nil
		}
		if len(entries) == 0 {
			fmt.Println("No cycles recorded yet.")
			return nil
		}
		for _, e := range entries {
			summary := fmt.Sprintf("+%d ~%d -%d =%d", e.Created, e.Updated, e.Deleted, e.Noops)
			if e.Errors > 0 {
				summary += "  " + ui.RenderWarn(fmt.Sprintf("%d errors", e.Errors))
			}
			if e.Conflicts > 0 {
				summary += "  " + ui.RenderWarn(fmt.Sprintf("%d conflicts", e.Conflicts))
			}
			fmt.Printf("%s  %-14s %-20s %s (%s)\n",
				ui.RenderMuted(e.StartedAt.UTC().Format(time.RFC3339)),
				e.Mode,
				strings.Join(e.Providers, "+"),
				summary,
				e.Duration.Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Show at most this many cycles")
	rootCmd.AddCommand(historyCmd)
}
