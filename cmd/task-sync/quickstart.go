package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/salaamdev/task-sync/internal/ui"
)

const quickstartDoc = `# task-sync quickstart

Keep Google Tasks and Microsoft To Do in lockstep.

## 1. Set up

    task-sync init

Walks you through state directory, sync mode, and the OAuth client
credentials for both providers.

## 2. Authorize

    task-sync auth google
    task-sync auth microsoft

Each opens a browser consent page; tokens land in the state directory
and refresh automatically afterwards.

## 3. Sync

    task-sync sync --dry-run   # preview what would change
    task-sync sync             # one reconciliation cycle
    task-sync sync --poll 5m   # keep running, one cycle per interval

Completing, editing, or deleting a task on either side propagates on the
next cycle. Concurrent edits merge field by field; when both sides edit
the *same* field, the newer edit wins and the loser is recorded:

    task-sync conflicts

## Everyday commands

| Command | What it does |
| --- | --- |
| ` + "`task-sync add \"Buy milk\" --due tomorrow`" + ` | Quick-add a task |
| ` + "`task-sync status`" + ` | Watermark, mappings, auth state |
| ` + "`task-sync history`" + ` | Recent cycles and their counts |

## Modes

- **bidirectional** — edits flow both ways (default)
- **a-to-b-only** — the first provider is the only source; the second is
  written but never read back
- **mirror** — like a-to-b-only, and manual changes on the target are
  reverted to match the source
`

var quickstartCmd = &cobra.Command{
	Use:   "quickstart",
	Short: "Show the quickstart guide",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.IsTerminal() {
			fmt.Print(quickstartDoc)
			return nil
		}
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(ui.GetWidth()))
		if err != nil {
			fmt.Print(quickstartDoc)
			return nil
		}
		rendered, err := renderer.Render(quickstartDoc)
		if err != nil {
			rendered = quickstartDoc
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quickstartCmd)
}
