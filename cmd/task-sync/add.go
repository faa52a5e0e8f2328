package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/salaamdev/task-sync/internal/config"
	"github.com/salaamdev/task-sync/internal/ratelimit"
	"github.com/salaamdev/task-sync/internal/task"
	"github.com/salaamdev/task-sync/internal/ui"
)

var (
	addNotes      string
	addDue        string
	addImportance string
	addProvider   string
	addCategories []string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task; the next sync propagates it everywhere",
	Long: `Add creates the task on one provider (the primary by default). The
--due flag accepts natural language ("tomorrow", "next friday 5pm") as
well as YYYY-MM-DD.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("title must not be empty")
		}

		t := task.Task{
			Title:      title,
			Notes:      addNotes,
			Importance: task.ParseImportance(addImportance),
			Categories: addCategories,
			UpdatedAt:  time.Now().UTC(),
		}
		if addDue != "" {
			dueAt, dueTime, err := parseDue(addDue, time.Now())
			if err != nil {
				return err
			}
			t.DueAt = dueAt
			t.DueTime = dueTime
		}
		t.Normalize()

		providerName := addProvider
		if providerName == "" {
			providerName = configuredProviders()[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dir := config.StateDir()
		creds, err := config.LoadCredentials(dir)
		if err != nil {
			return err
		}
		limiter := ratelimit.NewRegistry(config.GetFloat64("requests-per-second"))
		p, err := buildProvider(ctx, dir, providerName, creds, limiter)
		if err != nil {
			return err
		}

		created, err := p.UpsertTask(ctx, t)
		if err != nil {
			return fmt.Errorf("creating task on %s: %w", providerName, err)
		}

		if jsonOutput {
			outputJSON(created)
			return nil
		}
		fmt.Printf("%s Added %q on %s", ui.RenderPass("✓"), created.Title, providerName)
		if created.DueAt != "" {
			fmt.Printf(" (due %s", created.DueAt)
			if created.DueTime != "" {
				fmt.Printf(" %s", created.DueTime)
			}
			fmt.Print(")")
		}
		fmt.Println()
		return nil
	},
}

// parseDue accepts YYYY-MM-DD directly and falls back to natural-language
// parsing. The time of day is kept only when the phrase carried one.
func parseDue(s string, now time.Time) (dueAt, dueTime string, err error) {
	if t, perr := time.Parse("2006-01-02", s); perr == nil {
		return t.Format("2006-01-02"), "", nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, perr := w.Parse(s, now)
	if perr != nil {
		return "", "", fmt.Errorf("parsing due date %q: %w", s, perr)
	}
	if r == nil {
		return "", "", fmt.Errorf("could not understand due date %q", s)
	}

	dueAt = r.Time.Format("2006-01-02")
	if r.Time.Hour() != 0 || r.Time.Minute() != 0 {
		dueTime = r.Time.Format("15:04")
	}
	return dueAt, dueTime, nil
}

func init() {
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Task notes")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (natural language or YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addImportance, "importance", "normal", "low, normal, or high")
	addCmd.Flags().StringVar(&addProvider, "provider", "", "Create on this provider (default: the primary)")
	addCmd.Flags().StringSliceVar(&addCategories, "category", nil, "Category (repeatable)")
	rootCmd.AddCommand(addCmd)
}
