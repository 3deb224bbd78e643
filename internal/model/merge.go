package model

import (
	"fmt"
	"strings"
)

// Merge combines findings into a single Outcome.
//
// A single finding is returned unchanged, summary included. Otherwise the
// severity is the worst of all findings (fallback when there are none), the
// details are joined with newlines in input order and the summary is either
// the given one or a count of the non-OK findings.
func Merge(findings []Finding, summary string, fallback Severity) Outcome {
	if len(findings) == 1 {
		return findings[0]
	}

	sev := fallback
	problems := 0
	details := make([]string, len(findings))
	for i, f := range findings {
		if i == 0 {
			sev = f.Severity
		} else {
			sev = WorstOf(sev, f.Severity)
		}
		if f.Severity != SeverityOK {
			problems++
		}
		details[i] = f.Details
	}

	if summary == "" {
		summary = fmt.Sprintf("There are %d problems", problems)
	}

	return Outcome{
		Severity: sev,
		Summary:  summary,
		Details:  strings.Join(details, "\n"),
	}
}
