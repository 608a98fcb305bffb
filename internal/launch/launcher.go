// Package launch runs commands inside a WSL distribution and captures what
// they write.
//
// The capture strategy creates one anonymous pipe per output stream, hands
// the write ends to WslLaunch, drains both read ends concurrently with
// overlapped reads and bounds the wait for the child with forced
// termination. The interactive strategy hands the console to the child
// instead.
package launch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tmc/wslgo/internal/kernel"
	"github.com/tmc/wslgo/internal/system"
	"github.com/tmc/wslgo/internal/wslapi"
)

// Strategy represents different ways to launch a command.
type Strategy int

const (
	// StrategyCapture collects stdout and stderr through pipes.
	StrategyCapture Strategy = iota
	// StrategyInteractive attaches the child to the caller's console.
	StrategyInteractive
)

// DefaultTimeout bounds the wait for a captured child when Config.Timeout
// is zero.
const DefaultTimeout = 30 * time.Second

// Exit codes reported in Result.ExitCode when the child's own status is
// unavailable.
const (
	ExitLaunchFailed = 1
	ExitTimeout      = -1
	ExitWaitFailed   = -2
)

// Config contains the launch-specific configuration extracted from the
// public Config. This avoids importing the main package and keeps the launch
// package focused.
type Config struct {
	// Distribution is the registered distribution name.
	Distribution string
	// Command is passed verbatim to the distribution's default shell.
	Command string
	// UseCwd starts the child in the caller's working directory.
	UseCwd bool
	// Timeout bounds the wait for the child. Zero means DefaultTimeout.
	Timeout time.Duration
	// Interactive selects StrategyInteractive.
	Interactive bool
	// Stdout and Stderr, when set, receive captured output as it arrives.
	Stdout io.Writer
	Stderr io.Writer
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Result is the outcome of one launch.
type Result struct {
	// HResult is the launch primitive's status. When it is not S_OK the
	// child never ran, ExitCode is ExitLaunchFailed and both streams are
	// empty.
	HResult wslapi.HResult
	Stdout  []byte
	Stderr  []byte
	// ExitCode is the child's exit status, ExitTimeout or ExitWaitFailed.
	ExitCode int
	// TerminateErr is set when the child timed out and could not be
	// terminated.
	TerminateErr error
}

// Launcher defines the interface for launching commands.
type Launcher interface {
	Launch(ctx context.Context, cfg *Config) (*Result, error)
}

// Manager coordinates different launch strategies.
type Manager struct {
	captureLauncher     Launcher
	interactiveLauncher Launcher
	logger              *Logger
}

// New creates a launch manager over the given primitives.
func New(k kernel.Kernel, api wslapi.API, logger *Logger) *Manager {
	if logger == nil {
		logger = NewLogger()
	}
	return &Manager{
		captureLauncher:     NewCaptureLauncher(k, api, logger),
		interactiveLauncher: NewInteractiveLauncher(api, logger),
		logger:              logger,
	}
}

// NewWithLaunchers creates a new launch manager with custom launchers.
func NewWithLaunchers(capture, interactive Launcher) *Manager {
	return &Manager{
		captureLauncher:     capture,
		interactiveLauncher: interactive,
		logger:              DiscardLogger(),
	}
}

// Launch determines the appropriate strategy and launches the command.
func (m *Manager) Launch(ctx context.Context, cfg *Config) (*Result, error) {
	strategy := m.determineStrategy(cfg)
	m.logger.Debug("selected launch strategy", "strategy", strategy, "distribution", cfg.Distribution)

	switch strategy {
	case StrategyCapture:
		return m.captureLauncher.Launch(ctx, cfg)
	case StrategyInteractive:
		return m.interactiveLauncher.Launch(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown launch strategy: %v", strategy)
	}
}

// determineStrategy selects the appropriate launch strategy based on configuration.
func (m *Manager) determineStrategy(cfg *Config) Strategy {
	if cfg.Interactive {
		return StrategyInteractive
	}
	if system.IsInteractiveRequested() {
		m.logger.Debug("interactive mode requested via environment")
		return StrategyInteractive
	}
	return StrategyCapture
}

// String returns a string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyCapture:
		return "capture"
	case StrategyInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}
