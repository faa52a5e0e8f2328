package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/salaamdev/task-sync/internal/engine"
)

// RenderSyncReport renders one cycle's outcome for the terminal.
func RenderSyncReport(report *engine.SyncReport, width int) string {
	var sections []string

	header := "✓ Sync complete"
	style := RenderPass
	if report.HasErrors() {
		header = "⚠ Sync completed with errors"
		style = RenderWarn
	}
	if report.DryRun {
		header += " (dry run)"
	}
	sections = append(sections, lipgloss.NewStyle().Bold(true).Render(style(header)), "")

	rows := [][]string{
		{"Mode", string(report.Mode)},
		{"Providers", strings.Join(report.Providers, ", ")},
		{"Created", fmt.Sprint(report.Counts.Created)},
		{"Updated", fmt.Sprint(report.Counts.Updated)},
		{"Deleted", fmt.Sprint(report.Counts.Deleted)},
		{"Recreated", fmt.Sprint(report.Counts.Recreated)},
		{"Unchanged", fmt.Sprint(report.Counts.Noops)},
		{"Conflicts", fmt.Sprint(len(report.Conflicts))},
		{"Duration", report.Duration.Round(time.Millisecond).String()},
	}
	if report.ColdStart {
		rows = append(rows, []string{"Cold start", "yes"})
	}

	summary := table.New().
		Headers("Metric", "Value").
		Rows(rows...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(TableBorderStyle).
		Width(min(width, 48)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			s := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 {
				s = s.Bold(true)
			}
			return s
		})
	sections = append(sections, summary.String())

	if len(report.Conflicts) > 0 {
		sections = append(sections, "", lipgloss.NewStyle().Bold(true).Render("Conflicts (last write won):"))
		for _, c := range report.Conflicts {
			sections = append(sections, fmt.Sprintf("  • %s: %s kept %s, overwrote %s",
				c.CanonicalID, string(c.Field), RenderAccent(c.Winner), strings.Join(c.Overwritten, ", ")))
		}
	}

	if len(report.Errors) > 0 {
		sections = append(sections, "", lipgloss.NewStyle().Bold(true).Render(RenderWarn("Provider errors:")))
		for _, e := range report.Errors {
			sections = append(sections, fmt.Sprintf("  • %s [%s]: %s", e.Provider, e.Stage, e.Message))
		}
		sections = append(sections, RenderMuted("  Affected providers were skipped; the next cycle retries."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// StatusView is the data behind the status command's rendering.
type StatusView struct {
	StateDir   string
	Mode       string
	LastSyncAt *time.Time
	Mappings   int
	Tombstones int
	Providers  []ProviderStatus
}

// ProviderStatus is one provider's auth state.
type ProviderStatus struct {
	Name       string
	Authorized bool
}

// RenderStatus renders the state summary for the terminal.
func RenderStatus(view StatusView, width int) string {
	lastSync := "never"
	if view.LastSyncAt != nil {
		lastSync = view.LastSyncAt.UTC().Format(time.RFC3339)
	}

	rows := [][]string{
		{"State dir", view.StateDir},
		{"Mode", view.Mode},
		{"Last sync", lastSync},
		{"Mappings", fmt.Sprint(view.Mappings)},
		{"Tombstones", fmt.Sprint(view.Tombstones)},
	}
	for _, p := range view.Providers {
		auth := RenderFail("not authorized")
		if p.Authorized {
			auth = RenderPass("authorized")
		}
		rows = append(rows, []string{p.Name, auth})
	}

	summary := table.New().
		Headers("Item", "Value").
		Rows(rows...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(TableBorderStyle).
		Width(min(width, 64)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			s := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 {
				s = s.Bold(true)
			}
			return s
		})

	return summary.String()
}
