// Package errs defines the error taxonomy shared by the pipeline components
// and maps failures to distinct process exit codes so a scheduler can react
// to each category differently.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks missing or invalid configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingTarget marks an absent target image directory.
	ErrMissingTarget = errors.New("target directory missing")
	// ErrIO marks filesystem or transport failures the run cannot proceed past.
	ErrIO = errors.New("i/o error")
	// ErrExternalTool marks a missing or failed external encoder.
	ErrExternalTool = errors.New("external tool error")
	// ErrConcurrentRun marks evidence of another run holding the same state
	// (run lock contention or a leftover scratch workspace).
	ErrConcurrentRun = errors.New("concurrent run detected")
)

// Exit codes follow the sysexits convention so operators can distinguish
// failure categories from a cron or systemd unit.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitNoInput       = 66 // EX_NOINPUT: target directory missing
	ExitUnavailable   = 69 // EX_UNAVAILABLE: external tool missing or failed
	ExitIOErr         = 74 // EX_IOERR: filesystem or transport failure
	ExitTempFail      = 75 // EX_TEMPFAIL: concurrent run, retry later
	ExitConfiguration = 78 // EX_CONFIG: configuration missing or invalid
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later exit-code classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error to the process exit status documented above.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	case errors.Is(err, ErrMissingTarget):
		return ExitNoInput
	case errors.Is(err, ErrConcurrentRun):
		return ExitTempFail
	case errors.Is(err, ErrExternalTool):
		return ExitUnavailable
	case errors.Is(err, ErrIO):
		return ExitIOErr
	default:
		return ExitFailure
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
