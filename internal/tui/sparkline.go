package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/pvecheck/internal/model"
)

// sparkBlocks is the 8-level block character set for sparklines.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSeveritySparkline renders a severity history on a fixed OK..UNKNOWN
// scale, colored by the most recent severity.
func RenderSeveritySparkline(h *model.SeverityHistory, width int) string {
	color := colorGray
	if last, ok := h.Last(); ok {
		color = severityColor(last.Severity)
	}
	return renderScaledSparkline(h.Severities(), float64(model.SeverityUnknown), width, color)
}

// renderScaledSparkline draws the last width values as block characters
// scaled against maxVal, left-padded with spaces.
func renderScaledSparkline(values []float64, maxVal float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	// Take last `width` values if the slice is longer.
	if len(values) > width {
		values = values[len(values)-width:]
	}

	style := lipgloss.NewStyle().Foreground(color)

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(values)))

	for _, v := range values {
		var idx int
		if maxVal > 0 {
			idx = int(v / maxVal * 7)
		}
		idx = max(0, min(idx, 7))
		sb.WriteRune(sparkBlocks[idx])
	}

	return style.Render(sb.String())
}
