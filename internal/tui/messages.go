package tui

import (
	"time"

	"github.com/dm/pvecheck/internal/model"
)

// ReportMsg delivers the result of one evaluation round to the TUI.
type ReportMsg struct {
	Report  model.Report
	Elapsed time.Duration
}

// TickMsg triggers the next scheduled poll. Ticks left over from an earlier
// schedule carry a stale generation and are dropped.
type TickMsg struct {
	At  time.Time
	gen int
}
