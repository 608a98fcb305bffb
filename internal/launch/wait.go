package launch

import (
	"time"

	"github.com/tmc/wslgo/internal/kernel"
)

// waitOutcome is what waitProcess observed.
type waitOutcome struct {
	code         int
	result       kernel.WaitResult
	waitErr      error
	terminateErr error
}

// waitProcess waits up to timeout for the process behind h. A child still
// running at the deadline is terminated with exit code 1 and reported as
// ExitTimeout whether or not termination succeeded.
func waitProcess(k kernel.Kernel, h kernel.Handle, timeout time.Duration) waitOutcome {
	res, err := k.WaitForSingleObject(h, millis(timeout))
	out := waitOutcome{result: res, waitErr: err}
	switch {
	case err == nil && res == kernel.WaitObject0:
		code, err := k.GetExitCodeProcess(h)
		if err != nil {
			out.code, out.waitErr = ExitWaitFailed, err
			return out
		}
		out.code = int(code)
	case err == nil && res == kernel.WaitTimeout:
		out.code = ExitTimeout
		out.terminateErr = k.TerminateProcess(h, 1)
	default:
		out.code = ExitWaitFailed
	}
	return out
}

// millis converts d to a wait bound, clamped below INFINITE.
func millis(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	ms := d.Milliseconds()
	if ms >= kernel.Infinite {
		return kernel.Infinite - 1
	}
	return uint32(ms)
}
