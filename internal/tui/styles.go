package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/pvecheck/internal/model"
)

// Color constants.
var (
	colorGreen      = lipgloss.Color("#10b981")
	colorYellow     = lipgloss.Color("#f59e0b")
	colorRed        = lipgloss.Color("#ef4444")
	colorGray       = lipgloss.Color("#6b7280")
	colorPurple     = lipgloss.Color("#8b5cf6")
	colorWhite      = lipgloss.Color("#f8fafc")
	colorDark       = lipgloss.Color("#1e293b")
	colorAlt        = lipgloss.Color("#0f172a")
	colorSelectedBg = lipgloss.Color("#334155")
)

// Severity styles, bold foreground.
var (
	StyleSeverityOK       = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleSeverityWarning  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	StyleSeverityCritical = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	StyleSeverityUnknown  = lipgloss.NewStyle().Bold(true).Foreground(colorPurple)
)

// StyleHeader is the full-width dark header bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// StyleSection titles the table and detail pane.
var StyleSection = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)

// StyleDim is used for secondary text.
var StyleDim = lipgloss.NewStyle().Foreground(colorGray)

// SeverityStyle returns the style used to display s.
func SeverityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityOK:
		return StyleSeverityOK
	case model.SeverityWarning:
		return StyleSeverityWarning
	case model.SeverityCritical:
		return StyleSeverityCritical
	default:
		return StyleSeverityUnknown
	}
}

// severityColor is the foreground color of SeverityStyle(s).
func severityColor(s model.Severity) lipgloss.Color {
	switch s {
	case model.SeverityOK:
		return colorGreen
	case model.SeverityWarning:
		return colorYellow
	case model.SeverityCritical:
		return colorRed
	default:
		return colorPurple
	}
}
