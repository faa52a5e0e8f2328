package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/salaamdev/task-sync/internal/ui"
)

var (
	// Version is the current version (overridden by ldflags at build time).
	Version = "0.3.0"
	// Build can be set via ldflags at compile time.
	Build = "dev"
)

const releasesURL = "https://api.github.com/repos/salaamdev/task-sync/releases/latest"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")
		commit := resolveCommitHash()

		if jsonOutput {
			result := map[string]string{
				"version": Version,
				"build":   Build,
			}
			if commit != "" {
				result["commit"] = commit
			}
			if check {
				if latest, err := latestRelease(); err == nil {
					result["latest"] = latest
				}
			}
			outputJSON(result)
			return nil
		}

		if commit != "" {
			fmt.Printf("task-sync version %s (%s: %s)\n", Version, Build, shortCommit(commit))
		} else {
			fmt.Printf("task-sync version %s (%s)\n", Version, Build)
		}

		if check {
			latest, err := latestRelease()
			if err != nil {
				return fmt.Errorf("checking latest release: %w", err)
			}
			switch semver.Compare("v"+Version, latest) {
			case -1:
				fmt.Printf("%s %s is available (you have %s)\n", ui.RenderWarn("⬆"), latest, Version)
			default:
				fmt.Println(ui.RenderPass("✓") + " up to date")
			}
		}
		return nil
	},
}

// latestRelease asks GitHub for the newest release tag.
func latestRelease() (string, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(releasesURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	tag := release.TagName
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	if !semver.IsValid(tag) {
		return "", fmt.Errorf("release tag %q is not a semantic version", release.TagName)
	}
	return tag, nil
}

func resolveCommitHash() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}
	return ""
}

func shortCommit(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func init() {
	versionCmd.Flags().Bool("check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
