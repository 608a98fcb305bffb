package launch

import (
	"context"
	"time"

	"github.com/tmc/wslgo/internal/kernel"
	"github.com/tmc/wslgo/internal/wslapi"
)

// CaptureLauncher runs a command with its stdout and stderr redirected into
// anonymous pipes and returns what it wrote.
type CaptureLauncher struct {
	k      kernel.Kernel
	api    wslapi.API
	logger *Logger
}

// NewCaptureLauncher returns a launcher over the given primitives.
func NewCaptureLauncher(k kernel.Kernel, api wslapi.API, logger *Logger) *CaptureLauncher {
	if logger == nil {
		logger = NewLogger()
	}
	return &CaptureLauncher{k: k, api: api, logger: logger}
}

// Launch runs cfg.Command and captures both output streams.
//
// A launch the WSL service rejects is not an error: the Result carries the
// HResult and ExitCode 1. Only a failure to allocate pipes, or a context
// already done, is returned as an error. Every handle acquired here is
// closed exactly once before Launch returns, on every path.
//
// The timeout bounds the wait, not the drain. If the command passed its
// output handles to a process that outlives it, Launch returns only once
// that process closes them too.
func (c *CaptureLauncher) Launch(ctx context.Context, cfg *Config) (res *Result, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := c.logger

	scope := kernel.NewScope(c.k)
	scope.OnCloseError(func(ce *kernel.CloseError) {
		log.Debug("handle close failed", "handle", uintptr(ce.Handle), "error", ce.Err)
	})
	defer func() {
		if cerr := scope.Close(); cerr != nil {
			log.Warn("cleanup failed", "error", &CleanupError{Err: cerr})
		}
	}()

	stdout, err := newPipe(c.k, scope, "stdout")
	if err != nil {
		return nil, err
	}
	stderr, err := newPipe(c.k, scope, "stderr")
	if err != nil {
		return nil, err
	}
	log.Debug("pipes created",
		"stdout", uintptr(stdout.read.Handle()),
		"stderr", uintptr(stderr.read.Handle()))

	h, hr := c.api.Launch(cfg.Distribution, cfg.Command, cfg.UseCwd,
		0, stdout.write.Handle(), stderr.write.Handle())
	proc := scope.Own(h)
	if !hr.OK() {
		log.Debug("launch rejected", "distribution", cfg.Distribution, "hresult", hr)
		return &Result{HResult: hr, ExitCode: ExitLaunchFailed}, nil
	}
	log.Debug("launched", "distribution", cfg.Distribution, "command", cfg.Command, "process", uintptr(h))

	// The child holds its own copies; ours must go or the drains never
	// see end of stream.
	for _, p := range []*pipe{stdout, stderr} {
		if err := p.write.Close(); err != nil {
			log.Warn("closing parent write end failed", "error", err)
		}
	}

	outEcho := newEcho(cfg.Stdout, "stdout")
	errEcho := newEcho(cfg.Stderr, "stderr")
	outCh := startDrain(c.k, stdout.read.Handle(), outEcho.sink())
	errCh := startDrain(c.k, stderr.read.Handle(), errEcho.sink())

	timeout := c.waitBound(ctx, cfg)
	w := waitProcess(c.k, proc.Handle(), timeout)
	switch {
	case w.code == ExitTimeout && w.terminateErr != nil:
		log.Warn("process timed out and could not be terminated", "timeout", timeout, "error", w.terminateErr)
	case w.code == ExitTimeout:
		log.Debug("process timed out and was terminated", "timeout", timeout)
	case w.code == ExitWaitFailed:
		log.Debug("wait failed", "result", w.result, "error", w.waitErr)
	default:
		log.Debug("process exited", "code", w.code)
	}

	res = &Result{
		HResult:      hr,
		ExitCode:     w.code,
		TerminateErr: w.terminateErr,
	}
	res.Stdout = <-outCh
	res.Stderr = <-errCh

	for _, e := range []*echo{outEcho, errEcho} {
		if err := e.finish(); err != nil {
			log.Warn("echoing output failed", "error", err)
		}
	}
	log.Debug("output captured", "stdout_bytes", len(res.Stdout), "stderr_bytes", len(res.Stderr))
	return res, nil
}

// waitBound is the configured timeout, shortened to the context deadline
// when that comes first.
func (c *CaptureLauncher) waitBound(ctx context.Context, cfg *Config) time.Duration {
	timeout := cfg.timeout()
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = max(until, 0)
		}
	}
	return timeout
}
