package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/salaamdev/task-sync/internal/config"
	"github.com/salaamdev/task-sync/internal/ui"
)

// initFormInput holds the raw values from the setup form.
type initFormInput struct {
	StateDir        string
	Mode            string
	GoogleClientID  string
	GoogleSecret    string
	MicrosoftID     string
	MicrosoftSecret string
	PollInterval    string
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup: state dir, mode, and OAuth credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := initFormInput{
			StateDir: config.GetString("state-dir"),
			Mode:     config.GetString("mode"),
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("State directory").
					Description("Where sync state, tokens, and logs live").
					Value(&raw.StateDir),

				huh.NewSelect[string]().
					Title("Sync mode").
					Description("How edits flow between providers").
					Options(
						huh.NewOption("Bidirectional (merge both ways)", "bidirectional"),
						huh.NewOption("One-way (first provider is the source)", "a-to-b-only"),
						huh.NewOption("Mirror (first provider is authoritative)", "mirror"),
					).
					Value(&raw.Mode),

				huh.NewInput().
					Title("Poll interval").
					Description("Leave empty for on-demand sync only (e.g. 5m)").
					Placeholder("5m").
					Value(&raw.PollInterval),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Google client ID").
					Description("From the Google Cloud console OAuth credentials").
					Value(&raw.GoogleClientID),

				huh.NewInput().
					Title("Google client secret").
					EchoMode(huh.EchoModePassword).
					Value(&raw.GoogleSecret),

				huh.NewInput().
					Title("Microsoft application (client) ID").
					Description("From the Azure portal app registration").
					Value(&raw.MicrosoftID),

				huh.NewInput().
					Title("Microsoft client secret").
					Description("Leave empty for public-client registrations").
					EchoMode(huh.EchoModePassword).
					Value(&raw.MicrosoftSecret),
			),
		)

		if err := form.Run(); err != nil {
			if err == huh.ErrUserAborted {
				fmt.Fprintln(os.Stderr, "Setup canceled.")
				return nil
			}
			return err
		}

		stateDir := raw.StateDir
		if stateDir == "" {
			stateDir = config.DefaultStateDir
		}
		if err := writeConfigFile(stateDir, raw); err != nil {
			return err
		}
		if err := config.SaveCredentials(stateDir, config.Credentials{
			Google:    config.ProviderCredentials{ClientID: raw.GoogleClientID, ClientSecret: raw.GoogleSecret},
			Microsoft: config.ProviderCredentials{ClientID: raw.MicrosoftID, ClientSecret: raw.MicrosoftSecret},
		}); err != nil {
			return err
		}

		fmt.Println(ui.RenderPass("✓") + " Wrote " + filepath.Join(stateDir, "config.yaml"))
		fmt.Println(ui.RenderPass("✓") + " Wrote " + filepath.Join(stateDir, config.CredentialsFileName))
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  • " + ui.RenderAccent("task-sync auth google"))
		fmt.Println("  • " + ui.RenderAccent("task-sync auth microsoft"))
		fmt.Println("  • " + ui.RenderAccent("task-sync sync --dry-run"))
		return nil
	},
}

// writeConfigFile renders config.yaml inside the state directory.
func writeConfigFile(stateDir string, raw initFormInput) error {
	if err := os.MkdirAll(stateDir, 0o750); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	settings := map[string]interface{}{
		"state-dir": stateDir,
		"mode":      raw.Mode,
		"providers": []string{"google", "microsoft"},
	}
	if raw.PollInterval != "" {
		settings["poll-interval"] = raw.PollInterval
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	path := filepath.Join(stateDir, "config.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
