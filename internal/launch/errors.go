package launch

import "fmt"

// AllocationError reports that a pipe for one output stream could not be
// created. Err carries the platform error.
type AllocationError struct {
	Stream string
	Err    error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("create %s pipe: %v", e.Stream, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// CleanupError reports handles that failed to close after a launch. It is
// logged and never replaces the launch result.
type CleanupError struct {
	Err error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("release launch handles: %v", e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}
