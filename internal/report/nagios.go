// Package report turns evaluation outcomes into monitoring-plugin output.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/dm/pvecheck/internal/model"
)

// Render writes o in plugin format: "<SEVERITY>: <summary>", followed by a
// newline and the details when there are any.
func Render(w io.Writer, o model.Outcome) error {
	if _, err := fmt.Fprintf(w, "%s: %s\n", o.Severity, o.Summary); err != nil {
		return err
	}
	if o.Details == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, o.Details)
	return err
}

// ExitCode is the process exit status for o.
func ExitCode(o model.Outcome) int {
	switch o.Severity {
	case model.SeverityOK, model.SeverityWarning, model.SeverityCritical, model.SeverityUnknown:
		return int(o.Severity)
	}
	return int(model.SeverityUnknown)
}

// Exit renders o to stdout and terminates the process with its exit code.
// Only main may call it.
func Exit(o model.Outcome) {
	_ = Render(os.Stdout, o)
	os.Exit(ExitCode(o))
}
