package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/dm/pvecheck/internal/format"
	"github.com/dm/pvecheck/internal/model"
)

const (
	colProfile = iota
	colStatus
	colFindings
	colProblems
	colTook
	colSummary
)

var profileColumns = []string{"Profile", "Status", "Findings", "Problems", "Took", "Summary"}

// maxSummaryWidth caps the summary column so rows never wrap.
const maxSummaryWidth = 60

// renderProfileTable renders one row per evaluated profile with the
// selected row highlighted.
func renderProfileTable(app *App) string {
	title := StyleSection.Render("Profiles")
	if app.report == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, StyleDim.Render("  (waiting for first result)"))
	}
	if len(app.report.Profiles) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, StyleDim.Render("  (no profiles)"))
	}

	rows := app.report.Profiles
	selected := app.selected
	t := ltable.New().
		Headers(profileColumns...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray).Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == selected {
				base = base.Background(colorSelectedBg)
			} else if row%2 == 0 {
				base = base.Background(colorAlt)
			}
			if col == colStatus && row >= 0 && row < len(rows) {
				return base.Inherit(SeverityStyle(rows[row].Outcome.Severity))
			}
			return base.Foreground(colorWhite)
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)

	if app.width > 0 {
		t = t.Width(app.width)
	}

	for _, po := range rows {
		t = t.Row(profileCells(po)...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, t.String())
}

func profileCells(po model.ProfileOutcome) []string {
	cells := make([]string, len(profileColumns))
	cells[colProfile] = po.Profile
	cells[colStatus] = po.Outcome.Severity.String()
	cells[colFindings] = fmt.Sprintf("%d", len(po.Findings))
	cells[colProblems] = fmt.Sprintf("%d", countProblems(po.Findings))
	cells[colTook] = format.FormatDuration(po.Duration)
	cells[colSummary] = truncate(firstLine(po.Outcome.Summary), maxSummaryWidth)
	return cells
}

// renderDetail lists the findings of the selected profile.
func renderDetail(app *App) string {
	po, ok := app.selectedProfile()
	if !ok {
		return ""
	}

	lines := []string{StyleSection.Render("Findings of " + po.Profile)}
	if len(po.Findings) == 0 {
		lines = append(lines, StyleDim.Render("  (none)"))
	}
	for _, f := range po.Findings {
		label := SeverityStyle(f.Severity).Render(fmt.Sprintf("%-8s", f.Severity))
		lines = append(lines, "  "+label+" "+findingText(f))
	}
	return strings.Join(lines, "\n")
}

// findingText is the one-line description of f. Multi-line details, such as
// stack traces, are cut to their first line.
func findingText(f model.Finding) string {
	summary := firstLine(f.Summary)
	details := firstLine(f.Details)
	switch {
	case summary == "":
		return details
	case details == "" || details == summary:
		return summary
	default:
		return summary + ": " + details
	}
}

func countProblems(findings []model.Finding) int {
	n := 0
	for _, f := range findings {
		if f.Severity != model.SeverityOK {
			n++
		}
	}
	return n
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n <= 3 {
		return s
	}
	return string(r[:n-3]) + "..."
}
