package launch

import (
	"context"

	"github.com/tmc/wslgo/internal/wslapi"
)

// InteractiveLauncher runs a command attached to the caller's console.
// Nothing is captured and no timeout applies.
type InteractiveLauncher struct {
	api    wslapi.API
	logger *Logger
}

// NewInteractiveLauncher returns an interactive launcher over api.
func NewInteractiveLauncher(api wslapi.API, logger *Logger) *InteractiveLauncher {
	if logger == nil {
		logger = NewLogger()
	}
	return &InteractiveLauncher{api: api, logger: logger}
}

// Launch runs cfg.Command and blocks until it exits.
func (l *InteractiveLauncher) Launch(ctx context.Context, cfg *Config) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Debug("launching interactively", "distribution", cfg.Distribution, "command", cfg.Command)
	code, hr := l.api.LaunchInteractive(cfg.Distribution, cfg.Command, cfg.UseCwd)
	if !hr.OK() {
		l.logger.Debug("interactive launch rejected", "hresult", hr)
		return &Result{HResult: hr, ExitCode: ExitLaunchFailed}, nil
	}
	l.logger.Debug("interactive process exited", "code", code)
	return &Result{HResult: hr, ExitCode: int(code)}, nil
}
