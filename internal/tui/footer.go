package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// renderFooter shows the cursor position among the profiles followed by the
// key bindings, in short form unless help is toggled on.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	var position string
	if app.report != nil && len(app.report.Profiles) > 0 {
		position = StyleDim.Render(fmt.Sprintf("profile %d/%d", app.selected+1, len(app.report.Profiles))) + "  "
	}

	app.help.ShowAll = app.showHelp
	app.help.Width = max(width-lipgloss.Width(position), 0)
	return lipgloss.JoinHorizontal(lipgloss.Top, position, app.help.View(keys))
}
