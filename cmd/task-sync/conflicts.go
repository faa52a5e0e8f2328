package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/salaamdev/task-sync/internal/config"
	"github.com/salaamdev/task-sync/internal/conflictlog"
	"github.com/salaamdev/task-sync/internal/ui"
)

var conflictsLimit int

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Show recent merge conflicts (last write won)",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := conflictlog.Tail(config.StateDir(), conflictsLimit)
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(records)
			return nil
		}
		if len(records) == 0 {
			fmt.Println("No conflicts recorded.")
			return nil
		}
		for _, r := range records {
			fmt.Printf("%s  %s  %s: %s kept, %s overwritten\n",
				ui.RenderMuted(r.At.UTC().Format(time.RFC3339)),
				r.CanonicalID,
				r.Field,
				ui.RenderAccent(r.Winner),
				strings.Join(r.Overwritten, ", "))
		}
		return nil
	},
}

func init() {
	conflictsCmd.Flags().IntVarP(&conflictsLimit, "limit", "n", 20, "Show at most this many records (0 for all)")
	rootCmd.AddCommand(conflictsCmd)
}
