package model

import "time"

const defaultHistoryCap = 60

// HistoryPoint is a single poll result stored in the ring buffer.
type HistoryPoint struct {
	Timestamp time.Time
	Severity  Severity
	Problems  int
}

// SeverityHistory is a fixed-size ring buffer of HistoryPoints.
// When the buffer is full, new pushes overwrite the oldest entry.
type SeverityHistory struct {
	buf  []HistoryPoint
	head int // index of the next write position
	size int // number of valid entries
}

// NewSeverityHistory creates a SeverityHistory with the given capacity.
// If capacity <= 0, defaultHistoryCap (60) is used.
func NewSeverityHistory(capacity int) *SeverityHistory {
	if capacity <= 0 {
		capacity = defaultHistoryCap
	}
	return &SeverityHistory{
		buf: make([]HistoryPoint, capacity),
	}
}

// Push appends a new point to the history, overwriting the oldest if full.
func (h *SeverityHistory) Push(p HistoryPoint) {
	h.buf[h.head] = p
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of valid entries in the history.
func (h *SeverityHistory) Len() int {
	return h.size
}

// Points returns the stored points in chronological order (oldest first).
func (h *SeverityHistory) Points() []HistoryPoint {
	out := make([]HistoryPoint, h.size)
	// oldest entry sits at (head - size + cap) % cap
	start := (h.head - h.size + len(h.buf)) % len(h.buf)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}

// Severities returns the severity ordinals in chronological order, suitable
// for sparkline rendering.
func (h *SeverityHistory) Severities() []float64 {
	points := h.Points()
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = float64(p.Severity)
	}
	return out
}

// Last returns the most recent point, or false when the history is empty.
func (h *SeverityHistory) Last() (HistoryPoint, bool) {
	if h.size == 0 {
		return HistoryPoint{}, false
	}
	return h.buf[(h.head-1+len(h.buf))%len(h.buf)], true
}
