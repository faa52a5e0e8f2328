package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/salaamdev/task-sync/internal/authflow"
	"github.com/salaamdev/task-sync/internal/config"
	"github.com/salaamdev/task-sync/internal/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth [google|microsoft]",
	Short: "Authorize a provider through the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		providerName := args[0]
		dir := config.StateDir()
		creds, err := config.LoadCredentials(dir)
		if err != nil {
			return err
		}
		pc, err := creds.ForProvider(providerName)
		if err != nil {
			return err
		}
		if pc.ClientID == "" {
			return fmt.Errorf("no client id for %s in %s; run the init command first", providerName, config.CredentialsFileName)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = authflow.Authorize(ctx, dir, providerName, authflow.Credentials{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
		}, func(url string) {
			fmt.Println("Open this URL in your browser to authorize:")
			fmt.Println("  " + ui.RenderAccent(url))
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.RenderPass("✓") + " " + providerName + " authorized")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which providers are authorized",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := config.StateDir()
		result := map[string]bool{}
		for _, name := range configuredProviders() {
			authorized, err := authflow.Authorized(dir, name)
			if err != nil {
				return err
			}
			result[name] = authorized
		}
		if jsonOutput {
			outputJSON(result)
			return nil
		}
		for _, name := range configuredProviders() {
			mark := ui.RenderFail("✗ not authorized")
			if result[name] {
				mark = ui.RenderPass("✓ authorized")
			}
			fmt.Printf("%-12s %s\n", name, mark)
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
