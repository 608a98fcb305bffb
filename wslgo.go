package wslgo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/tmc/wslgo/internal/kernel"
	"github.com/tmc/wslgo/internal/launch"
	"github.com/tmc/wslgo/internal/system"
	"github.com/tmc/wslgo/internal/wslapi"
)

// Result is the raw outcome of one launch.
type Result = launch.Result

// HResult is the status code returned by the WSL API.
type HResult = wslapi.HResult

// HResult values wslgo distinguishes.
const (
	SOK           = wslapi.SOK
	EFail         = wslapi.EFail
	EAccessDenied = wslapi.EAccessDenied
	EInvalidArg   = wslapi.EInvalidArg
	ENotFound     = wslapi.ENotFound
)

// Exit codes reported when the command's own status is unavailable.
const (
	ExitLaunchFailed = launch.ExitLaunchFailed
	ExitTimeout      = launch.ExitTimeout
	ExitWaitFailed   = launch.ExitWaitFailed
)

// DistributionFlags is the set of per-distribution behaviour flags.
type DistributionFlags = wslapi.DistributionFlags

// Distribution flags.
const (
	FlagNone                = wslapi.FlagNone
	FlagEnableInterop       = wslapi.FlagEnableInterop
	FlagAppendNTPath        = wslapi.FlagAppendNTPath
	FlagEnableDriveMounting = wslapi.FlagEnableDriveMounting
	FlagWSL2                = wslapi.FlagWSL2
	FlagsConfigurable       = wslapi.FlagsConfigurable
)

// Configuration is a distribution's registered configuration.
type Configuration = wslapi.Configuration

// Output is a Result with both streams decoded as UTF-8.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	HResult  HResult
}

// Success reports whether the command launched and exited with status 0.
func (o Output) Success() bool {
	return o.HResult.OK() && o.ExitCode == 0
}

// Option configures a Distribution.
type Option func(*Distribution)

// WithConfig replaces the configuration. The name passed to New, when not
// empty, still wins over cfg.Distribution.
func WithConfig(cfg *Config) Option {
	return func(d *Distribution) {
		if cfg != nil {
			d.cfg = *cfg
		}
	}
}

// WithTimeout sets the wait bound for captured commands.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Distribution) {
		d.cfg.Timeout = timeout
	}
}

// WithLogger routes wslgo's logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(d *Distribution) {
		d.logger = launch.WrapLogger(l)
	}
}

// Distribution launches commands in one registered WSL distribution.
// It is safe for concurrent use.
type Distribution struct {
	name    string
	cfg     Config
	api     wslapi.API
	logger  *launch.Logger
	manager *launch.Manager
}

// New returns a Distribution backed by the system's WSL installation.
// An empty name selects the configured distribution, "Ubuntu" by default.
func New(name string, opts ...Option) (*Distribution, error) {
	k, err := kernel.System()
	if err != nil {
		return nil, &Error{Op: "bind kernel32", Err: err, Help: "wslgo runs only on Windows"}
	}
	api, err := wslapi.System()
	if err != nil {
		return nil, &Error{Op: "bind wslapi", Err: err, Help: "install the Windows Subsystem for Linux with 'wsl --install'"}
	}
	return NewWithBackend(name, k, api, opts...), nil
}

// NewWithBackend is New with explicit kernel and WSL API bindings.
func NewWithBackend(name string, k kernel.Kernel, api wslapi.API, opts ...Option) *Distribution {
	d := &Distribution{cfg: *DefaultConfig(), api: api}
	for _, opt := range opts {
		opt(d)
	}
	d.name = name
	if d.name == "" {
		d.name = d.cfg.Distribution
	}
	if d.name == "" {
		d.name = DefaultDistribution
	}
	d.cfg.Distribution = d.name
	if d.logger == nil {
		d.logger = launch.NewLoggerWithDebug(d.cfg.Debug)
	}
	d.manager = launch.New(k, api, d.logger)
	for _, key := range system.AllEnvVars() {
		if v, ok := os.LookupEnv(key); ok {
			d.logger.Debug("environment override", "key", key, "value", v)
		}
	}
	return d
}

// Name returns the distribution name.
func (d *Distribution) Name() string {
	return d.name
}

// Config returns a copy of the distribution's launch configuration.
func (d *Distribution) Config() Config {
	return d.cfg
}

func (d *Distribution) launchConfig(command string, interactive bool) *launch.Config {
	return &launch.Config{
		Distribution: d.name,
		Command:      command,
		UseCwd:       d.cfg.UseCurrentWorkingDirectory,
		Timeout:      d.cfg.Timeout,
		Interactive:  interactive || d.cfg.Interactive,
		Stdout:       d.cfg.Stdout,
		Stderr:       d.cfg.Stderr,
	}
}

// Launch runs command in the distribution's default shell and returns its
// raw output and exit code.
//
// A launch the WSL service rejects is reported through Result.HResult with
// ExitCode 1, not as an error. A command still running after the configured
// timeout, or the context deadline if sooner, is terminated and reported
// with ExitTimeout. The context is consulted only before launching.
func (d *Distribution) Launch(ctx context.Context, command string) (*Result, error) {
	res, err := d.manager.Launch(ctx, d.launchConfig(command, false))
	if err != nil {
		return nil, d.wrapLaunchError(err)
	}
	return res, nil
}

// LaunchInteractive runs command attached to the caller's console and
// blocks until it exits. An empty command starts the default shell.
func (d *Distribution) LaunchInteractive(ctx context.Context, command string) (*Result, error) {
	res, err := d.manager.Launch(ctx, d.launchConfig(command, true))
	if err != nil {
		return nil, d.wrapLaunchError(err)
	}
	return res, nil
}

func (d *Distribution) wrapLaunchError(err error) error {
	var ae *launch.AllocationError
	if errors.As(err, &ae) {
		return &Error{Op: "create pipe", Err: err, Help: "the process may be out of handles"}
	}
	return err
}

// Run is Launch with both streams decoded as UTF-8; invalid sequences
// become U+FFFD. With CaptureOutput disabled both streams are empty.
func (d *Distribution) Run(ctx context.Context, command string) (Output, error) {
	res, err := d.Launch(ctx, command)
	if err != nil {
		return Output{}, err
	}
	out := Output{ExitCode: res.ExitCode, HResult: res.HResult}
	if d.cfg.CaptureOutput {
		out.Stdout = decode(res.Stdout)
		out.Stderr = decode(res.Stderr)
	}
	return out, nil
}

func decode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	s, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// IsRegistered reports whether the distribution is registered with WSL.
func (d *Distribution) IsRegistered() bool {
	return d.api.IsDistributionRegistered(d.name)
}

// Configuration returns the distribution's registered configuration.
func (d *Distribution) Configuration() (*Configuration, error) {
	cfg, hr := d.api.GetDistributionConfiguration(d.name)
	if !hr.OK() {
		return nil, hresultError("get configuration", d.name, hr)
	}
	return &cfg, nil
}

// Configure sets the default user and behaviour flags. Flags outside
// FlagsConfigurable, such as FlagWSL2, are read-only and ignored.
func (d *Distribution) Configure(defaultUID uint32, flags DistributionFlags) error {
	flags &= FlagsConfigurable
	d.logger.Debug("configuring distribution", "distribution", d.name, "uid", defaultUID, "flags", flags)
	if hr := d.api.ConfigureDistribution(d.name, defaultUID, flags); !hr.OK() {
		return hresultError("configure", d.name, hr)
	}
	return nil
}

// SetDefaultUID changes the default user and keeps the current flags.
func (d *Distribution) SetDefaultUID(uid uint32) error {
	cfg, err := d.Configuration()
	if err != nil {
		return err
	}
	return d.Configure(uid, cfg.Flags)
}

// SetFlag turns one or more configurable flags on or off and leaves the
// others and the default user unchanged.
func (d *Distribution) SetFlag(flag DistributionFlags, enable bool) error {
	if ro := flag.Without(FlagsConfigurable); ro != 0 {
		return &Error{
			Op:   "set flag",
			Err:  fmt.Errorf("%v cannot be changed", ro),
			Help: "convert between WSL versions with 'wsl --set-version'",
		}
	}
	cfg, err := d.Configuration()
	if err != nil {
		return err
	}
	return d.Configure(cfg.DefaultUID, cfg.Flags.Set(flag, enable))
}
