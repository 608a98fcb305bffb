package kerneltest

import (
	"sync"
	"time"

	"github.com/tmc/wslgo/internal/kernel"
	"github.com/tmc/wslgo/internal/wslapi"
)

// Program scripts what a launched command does.
type Program struct {
	Stdout []byte
	Stderr []byte

	// Chunk is the write granularity. Streams are written alternately one
	// chunk at a time. Zero writes each stream in one call, stdout first.
	Chunk int

	// Delay is how long the command runs after writing its output.
	Delay time.Duration

	ExitCode uint32

	// Hang keeps the command alive until it is terminated.
	Hang bool
}

// Launch records a call to WSL.Launch or WSL.LaunchInteractive.
type Launch struct {
	Distribution string
	Command      string
	UseCwd       bool
	Interactive  bool
	Stdin        kernel.Handle
	Stdout       kernel.Handle
	Stderr       kernel.Handle
	Process      kernel.Handle
}

// DefaultConfiguration is what NewWSL registers for each distribution.
var DefaultConfiguration = wslapi.Configuration{
	Version:    2,
	DefaultUID: 1000,
	Flags: wslapi.FlagEnableInterop | wslapi.FlagAppendNTPath |
		wslapi.FlagEnableDriveMounting | wslapi.FlagWSL2,
	Environment: map[string]string{
		"HOSTTYPE": "x86_64",
		"LANG":     "en_US.UTF-8",
		"PATH":     "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
		"TERM":     "xterm-256color",
	},
}

// WSL is a fake wslapi.API whose processes live in a fake Kernel.
type WSL struct {
	k *Kernel

	// LaunchHResult, when it is a failure code, makes every launch fail.
	LaunchHResult wslapi.HResult

	mu            sync.Mutex
	programs      map[string]Program
	distributions map[string]*wslapi.Configuration
	launches      []Launch
}

var _ wslapi.API = (*WSL)(nil)

// NewWSL returns a fake API backed by k with the given distributions
// registered.
func NewWSL(k *Kernel, distributions ...string) *WSL {
	w := &WSL{
		k:             k,
		programs:      make(map[string]Program),
		distributions: make(map[string]*wslapi.Configuration),
	}
	for _, d := range distributions {
		cfg := DefaultConfiguration
		cfg.Environment = make(map[string]string, len(DefaultConfiguration.Environment))
		for key, v := range DefaultConfiguration.Environment {
			cfg.Environment[key] = v
		}
		w.distributions[d] = &cfg
	}
	return w
}

// Handle scripts the behaviour of command.
func (w *WSL) Handle(command string, p Program) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.programs[command] = p
}

// Launches returns every recorded launch.
func (w *WSL) Launches() []Launch {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Launch(nil), w.launches...)
}

func (w *WSL) lookup(distribution, command string) (Program, wslapi.HResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.LaunchHResult.OK() {
		return Program{}, w.LaunchHResult
	}
	if _, ok := w.distributions[distribution]; !ok {
		return Program{}, wslapi.ENotFound
	}
	return w.programs[command], wslapi.SOK
}

func (w *WSL) record(l Launch) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.launches = append(w.launches, l)
}

func (w *WSL) Launch(distribution, command string, useCwd bool, stdin, stdout, stderr kernel.Handle) (kernel.Handle, wslapi.HResult) {
	l := Launch{
		Distribution: distribution,
		Command:      command,
		UseCwd:       useCwd,
		Stdin:        stdin,
		Stdout:       stdout,
		Stderr:       stderr,
	}
	prog, hr := w.lookup(distribution, command)
	if !hr.OK() {
		w.record(l)
		return 0, hr
	}
	h, proc, err := w.k.spawn(stdout, stderr)
	if err != nil {
		w.record(l)
		return 0, wslapi.EInvalidArg
	}
	l.Process = h
	w.record(l)

	go run(proc, prog)
	return h, wslapi.SOK
}

func run(proc *process, prog Program) {
	stdout, stderr := prog.Stdout, prog.Stderr
	chunk := prog.Chunk
	if chunk <= 0 {
		chunk = max(len(stdout), len(stderr), 1)
	}
	for len(stdout) > 0 || len(stderr) > 0 {
		n := min(chunk, len(stdout))
		if err := proc.write(proc.stdout, stdout[:n]); err != nil {
			break
		}
		stdout = stdout[n:]

		n = min(chunk, len(stderr))
		if err := proc.write(proc.stderr, stderr[:n]); err != nil {
			break
		}
		stderr = stderr[n:]
	}

	if prog.Hang {
		<-proc.killedCh
		return
	}
	timer := time.NewTimer(prog.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		proc.exit(prog.ExitCode)
	case <-proc.killedCh:
	}
}

func (w *WSL) LaunchInteractive(distribution, command string, useCwd bool) (uint32, wslapi.HResult) {
	w.record(Launch{Distribution: distribution, Command: command, UseCwd: useCwd, Interactive: true})
	prog, hr := w.lookup(distribution, command)
	if !hr.OK() {
		return 0, hr
	}
	time.Sleep(prog.Delay)
	return prog.ExitCode, wslapi.SOK
}

func (w *WSL) IsDistributionRegistered(distribution string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.distributions[distribution]
	return ok
}

func (w *WSL) ConfigureDistribution(distribution string, defaultUID uint32, flags wslapi.DistributionFlags) wslapi.HResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	cfg, ok := w.distributions[distribution]
	if !ok {
		return wslapi.ENotFound
	}
	if flags.Without(wslapi.FlagsConfigurable) != 0 {
		return wslapi.EInvalidArg
	}
	cfg.DefaultUID = defaultUID
	cfg.Flags = flags | cfg.Flags&wslapi.FlagWSL2
	return wslapi.SOK
}

func (w *WSL) GetDistributionConfiguration(distribution string) (wslapi.Configuration, wslapi.HResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cfg, ok := w.distributions[distribution]
	if !ok {
		return wslapi.Configuration{}, wslapi.ENotFound
	}
	out := *cfg
	out.Environment = wslapi.ParseEnvironment(wslapi.FormatEnvironment(cfg.Environment))
	return out, wslapi.SOK
}
