package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/pvecheck/internal/format"
)

// renderHeader renders the top header bar.
//
// Layout:
//
//	left:   "pvecheck  N profiles"
//	center: colored "● SEVERITY" of the merged result (spinner while polling)
//	right:  "Last: HH:MM:SS (took Ns)  Poll: Ns"
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	left := fmt.Sprintf("pvecheck  %d profiles", len(app.profiles))

	var center, right string
	if app.report == nil {
		center = app.spinner.View() + " Running checks..."
		right = StyleDim.Render("Poll: " + format.FormatDuration(app.pollInterval))
	} else {
		final := app.report.Final.Severity
		center = SeverityStyle(final).Render("● " + final.String())
		if app.fetching {
			center += " " + app.spinner.View()
		}
		right = StyleDim.Render(fmt.Sprintf("Last: %s (took %s)  Poll: %s",
			app.lastUpdated.Format("15:04:05"),
			format.FormatDuration(app.lastElapsed),
			format.FormatDuration(app.pollInterval)))
	}

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	spacing := innerWidth - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).Render(row)
}

// renderHistory renders the sparkline of merged severities, newest right.
func renderHistory(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	label := "History "
	summary := ""
	if last, ok := app.history.Last(); ok {
		summary = fmt.Sprintf(" %d problems", last.Problems)
	}
	sparkWidth := width - lipgloss.Width(label) - lipgloss.Width(summary)
	if sparkWidth < 1 {
		sparkWidth = 1
	}
	return StyleDim.Render(label) + RenderSeveritySparkline(app.history, sparkWidth) + StyleDim.Render(summary)
}
