package wslgo

import (
	"errors"
	"fmt"

	"github.com/tmc/wslgo/internal/wslapi"
)

// Error represents a wslgo error with additional context and actionable guidance.
type Error struct {
	Op   string // Operation that failed (e.g., "create pipe", "configure")
	Err  error  // Underlying error
	Help string // Actionable guidance for the user
}

func (e *Error) Error() string {
	if e.Help != "" {
		return fmt.Sprintf("wslgo: %s: %v\n  hint: %s", e.Op, e.Err, e.Help)
	}
	return fmt.Sprintf("wslgo: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrUnsupported is returned by New on platforms without WSL.
var ErrUnsupported = errors.ErrUnsupported

// hresultError wraps a failed HRESULT with a hint for the common codes.
func hresultError(op, distribution string, hr wslapi.HResult) error {
	e := &Error{Op: op, Err: hr}
	switch hr {
	case wslapi.ENotFound:
		e.Help = fmt.Sprintf("distribution %q is not registered; list installed ones with 'wsl --list'", distribution)
	case wslapi.EAccessDenied:
		e.Help = "the WSL service denied access; run as the user that owns the distribution"
	case wslapi.EInvalidArg:
		e.Help = "the distribution name or flags were rejected"
	}
	return e
}
