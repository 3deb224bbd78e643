package model

import "fmt"

// Severity is a monitoring-plugin outcome level. The numeric values are the
// plugin exit codes and merging relies on their order.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
	SeverityUnknown
)

var severityNames = [...]string{"OK", "WARNING", "CRITICAL", "UNKNOWN"}

// String returns the upper-case plugin name of s, e.g. "CRITICAL".
func (s Severity) String() string {
	if s < SeverityOK || int(s) >= len(severityNames) {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// WorstOf returns the numerically larger of a and b.
func WorstOf(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}
