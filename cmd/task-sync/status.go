package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/salaamdev/task-sync/internal/authflow"
	"github.com/salaamdev/task-sync/internal/config"
	"github.com/salaamdev/task-sync/internal/state"
	"github.com/salaamdev/task-sync/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state: watermark, mappings, tombstones, auth",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := config.StateDir()
		st, err := state.NewStore(dir).Load()
		if err != nil {
			return err
		}

		view := ui.StatusView{
			StateDir:   dir,
			Mode:       config.GetString("mode"),
			LastSyncAt: st.LastSyncAt,
			Mappings:   len(st.Mappings),
			Tombstones: len(st.Tombstones),
		}
		for _, name := range configuredProviders() {
			authorized, aerr := authflow.Authorized(dir, name)
			if aerr != nil {
				return aerr
			}
			view.Providers = append(view.Providers, ui.ProviderStatus{Name: name, Authorized: authorized})
		}

		if jsonOutput {
			out := map[string]interface{}{
				"stateDir":   view.StateDir,
				"mode":       view.Mode,
				"mappings":   view.Mappings,
				"tombstones": view.Tombstones,
			}
			if view.LastSyncAt != nil {
				out["lastSyncAt"] = view.LastSyncAt.UTC().Format(time.RFC3339)
			}
			auth := map[string]bool{}
			for _, p := range view.Providers {
				auth[p.Name] = p.Authorized
			}
			out["authorized"] = auth
			outputJSON(out)
			return nil
		}

		fmt.Println(ui.RenderStatus(view, ui.GetWidth()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
