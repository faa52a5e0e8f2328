package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color palette, adaptive across light and dark terminals.
var (
	ColorPass   = lipgloss.AdaptiveColor{Light: "28", Dark: "42"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "26", Dark: "39"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "243", Dark: "241"}
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	failStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	accentStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	// TableHeaderStyle styles column headers in report tables.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorAccent).
				Align(lipgloss.Center)

	// TableBorderStyle styles table borders.
	TableBorderStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)
)

// init caps the color profile when color should not be used, so styled
// output degrades to plain text in pipes and CI.
func init() {
	if !ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// RenderPass styles s as success.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn styles s as a warning.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail styles s as a failure.
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderMuted styles s as secondary detail.
func RenderMuted(s string) string { return mutedStyle.Render(s) }

// RenderAccent styles s as highlighted.
func RenderAccent(s string) string { return accentStyle.Render(s) }
