// Command task-sync reconciles Google Tasks and Microsoft To Do into one
// logical task list.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/salaamdev/task-sync/internal/config"
)

var (
	// Global flag state, mirrored into config during PersistentPreRun.
	jsonOutput bool
	verbose    bool
	stateDir   string
)

var rootCmd = &cobra.Command{
	Use:   "task-sync",
	Short: "Two-way sync between Google Tasks and Microsoft To Do",
	Long: `task-sync reconciles Google Tasks and Microsoft To Do into one logical
task list: edits merge field by field, deletions win over edits, and every
cycle is crash-safe and idempotent.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}

		// Explicit flags override config file and environment.
		if cmd.Flags().Changed("state-dir") {
			config.Set("state-dir", stateDir)
		}
		if cmd.Flags().Changed("json") {
			config.Set("json", jsonOutput)
		}
		jsonOutput = config.GetBool("json")

		log.SetOutput(os.Stderr)
		log.SetFormatter(&log.TextFormatter{DisableTimestamp: !verbose})
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else if jsonOutput {
			// Keep stdout parseable; only warnings and up on stderr.
			log.SetLevel(log.WarnLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "State directory (default .task-sync, env TASKSYNC_STATE_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
