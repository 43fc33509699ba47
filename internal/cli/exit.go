package cli

import (
	"errors"
	"fmt"

	"openF1Poll/internal/modules/telemetry/application/port"
)

// ExitError carries the process exit code for a failed invocation.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitWith classifies err. Operator mistakes that only need a hint (an unknown target, a
// live-only target without an interval) exit 0; everything else exits 1.
func exitWith(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	switch {
	case errors.Is(err, port.ErrUnknownTarget), errors.Is(err, port.ErrIntervalRequired):
		return &ExitError{Code: 0, Err: err}
	default:
		return &ExitError{Code: 1, Err: err}
	}
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
