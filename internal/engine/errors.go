package engine

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"

	"github.com/dm/pvecheck/internal/client"
	"github.com/dm/pvecheck/internal/model"
)

// PanicError carries the value recovered from a panicking check.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// FailureKind names the class of err for the UNKNOWN summary line.
func FailureKind(err error) string {
	var (
		panicErr *PanicError
		apiErr   *client.APIError
		decErr   *client.DecodeError
		netErr   net.Error
	)
	switch {
	case errors.As(err, &panicErr):
		return "Panic"
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.As(err, &apiErr):
		return "APIError"
	case errors.As(err, &decErr):
		return "DecodeError"
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return "Timeout"
		}
		return "ConnectionError"
	default:
		return "Error"
	}
}

// UnknownFinding converts an evaluation failure into an UNKNOWN finding.
// The details hold the full cause chain and, for errors created with
// github.com/pkg/errors, the stack trace.
func UnknownFinding(err error) model.Finding {
	return model.Finding{
		Severity: model.SeverityUnknown,
		Summary:  fmt.Sprintf("%s: %v", FailureKind(err), err),
		Details:  fmt.Sprintf("%+v", err),
	}
}
