package launch

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/wslgo/internal/kernel/kerneltest"
	"github.com/tmc/wslgo/internal/wslapi"
)

func TestStrategy_String(t *testing.T) {
	tests := []struct {
		strategy Strategy
		want     string
	}{
		{StrategyCapture, "capture"},
		{StrategyInteractive, "interactive"},
		{Strategy(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.strategy.String(); got != tt.want {
				t.Errorf("Strategy.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManager_determineStrategy(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		env    string
		want   Strategy
	}{
		{
			name:   "default is capture",
			config: &Config{},
			want:   StrategyCapture,
		},
		{
			name:   "interactive via config",
			config: &Config{Interactive: true},
			want:   StrategyInteractive,
		},
		{
			name:   "interactive via environment",
			config: &Config{},
			env:    "1",
			want:   StrategyInteractive,
		},
		{
			name:   "environment disabled",
			config: &Config{},
			env:    "0",
			want:   StrategyCapture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WSLGO_INTERACTIVE", tt.env)
			manager := NewWithLaunchers(&MockLauncher{}, &MockLauncher{})
			if got := manager.determineStrategy(tt.config); got != tt.want {
				t.Errorf("determineStrategy() = %v, want %v", got, tt.want)
			}
		})
	}
}

// MockLauncher implements the Launcher interface for testing.
type MockLauncher struct {
	LaunchFunc func(ctx context.Context, cfg *Config) (*Result, error)
	CallCount  int
	LastConfig *Config
}

func (m *MockLauncher) Launch(ctx context.Context, cfg *Config) (*Result, error) {
	m.CallCount++
	m.LastConfig = cfg
	if m.LaunchFunc != nil {
		return m.LaunchFunc(ctx, cfg)
	}
	return &Result{}, nil
}

func TestManager_Launch(t *testing.T) {
	tests := []struct {
		name            string
		cfg             *Config
		wantCapture     int
		wantInteractive int
	}{
		{
			name:        "capture",
			cfg:         &Config{Distribution: "Ubuntu", Command: "ls"},
			wantCapture: 1,
		},
		{
			name:            "interactive",
			cfg:             &Config{Distribution: "Ubuntu", Interactive: true},
			wantInteractive: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WSLGO_INTERACTIVE", "")
			capture := &MockLauncher{}
			interactive := &MockLauncher{}
			manager := NewWithLaunchers(capture, interactive)

			if _, err := manager.Launch(context.Background(), tt.cfg); err != nil {
				t.Errorf("Manager.Launch() returned error: %v", err)
			}
			if capture.CallCount != tt.wantCapture {
				t.Errorf("capture launcher called %d times, want %d", capture.CallCount, tt.wantCapture)
			}
			if interactive.CallCount != tt.wantInteractive {
				t.Errorf("interactive launcher called %d times, want %d", interactive.CallCount, tt.wantInteractive)
			}
			if capture.CallCount == 1 && capture.LastConfig != tt.cfg {
				t.Error("capture launcher received wrong config")
			}
		})
	}
}

func TestManager_Launch_PropagatesError(t *testing.T) {
	errBoom := errors.New("boom")
	capture := &MockLauncher{LaunchFunc: func(context.Context, *Config) (*Result, error) {
		return nil, errBoom
	}}
	manager := NewWithLaunchers(capture, &MockLauncher{})

	if _, err := manager.Launch(context.Background(), &Config{}); !errors.Is(err, errBoom) {
		t.Errorf("Manager.Launch() error = %v, want %v", err, errBoom)
	}
}

func TestNew(t *testing.T) {
	k := kerneltest.New()
	manager := New(k, kerneltest.NewWSL(k), DiscardLogger())
	if manager == nil {
		t.Fatal("New() returned nil")
	}
	if _, ok := manager.captureLauncher.(*CaptureLauncher); !ok {
		t.Errorf("capture launcher is %T, want *CaptureLauncher", manager.captureLauncher)
	}
	if _, ok := manager.interactiveLauncher.(*InteractiveLauncher); !ok {
		t.Errorf("interactive launcher is %T, want *InteractiveLauncher", manager.interactiveLauncher)
	}
}

func TestNewLaunchers_DefaultLogger(t *testing.T) {
	k := kerneltest.New()
	w := kerneltest.NewWSL(k)
	if l := NewCaptureLauncher(k, w, nil); l.logger == nil {
		t.Error("NewCaptureLauncher(nil logger).logger = nil")
	}
	if l := NewInteractiveLauncher(w, nil); l.logger == nil {
		t.Error("NewInteractiveLauncher(nil logger).logger = nil")
	}
}

func TestNewWithLaunchers(t *testing.T) {
	capture := &MockLauncher{}
	interactive := &MockLauncher{}

	manager := NewWithLaunchers(capture, interactive)
	if manager.captureLauncher != capture {
		t.Error("capture launcher not set correctly")
	}
	if manager.interactiveLauncher != interactive {
		t.Error("interactive launcher not set correctly")
	}
}

func TestInteractiveLauncher_Launch(t *testing.T) {
	tests := []struct {
		name         string
		distribution string
		hr           wslapi.HResult
		prog         kerneltest.Program
		wantHR       wslapi.HResult
		wantCode     int
	}{
		{
			name:         "exit status returned",
			distribution: "Ubuntu",
			prog:         kerneltest.Program{ExitCode: 7},
			wantHR:       wslapi.SOK,
			wantCode:     7,
		},
		{
			name:         "unknown distribution",
			distribution: "Arch",
			wantHR:       wslapi.ENotFound,
			wantCode:     ExitLaunchFailed,
		},
		{
			name:         "service failure",
			distribution: "Ubuntu",
			hr:           wslapi.EFail,
			wantHR:       wslapi.EFail,
			wantCode:     ExitLaunchFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := kerneltest.New()
			w := kerneltest.NewWSL(k, "Ubuntu")
			w.LaunchHResult = tt.hr
			w.Handle("bash", tt.prog)
			l := NewInteractiveLauncher(w, DiscardLogger())

			res, err := l.Launch(context.Background(), &Config{Distribution: tt.distribution, Command: "bash"})
			if err != nil {
				t.Fatalf("Launch() error = %v", err)
			}
			if res.HResult != tt.wantHR {
				t.Errorf("HResult = %v, want %v", res.HResult, tt.wantHR)
			}
			if res.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.wantCode)
			}
			if res.Stdout != nil || res.Stderr != nil {
				t.Error("interactive launch captured output")
			}
			if n := len(k.Allocated()); n != 0 {
				t.Errorf("allocated %d handles, want 0", n)
			}
			launches := w.Launches()
			if len(launches) != 1 || !launches[0].Interactive {
				t.Errorf("Launches() = %+v, want one interactive launch", launches)
			}
		})
	}
}

func TestInteractiveLauncher_CancelledContext(t *testing.T) {
	k := kerneltest.New()
	w := kerneltest.NewWSL(k, "Ubuntu")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInteractiveLauncher(w, DiscardLogger()).Launch(ctx, &Config{Distribution: "Ubuntu"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Launch() error = %v, want context.Canceled", err)
	}
	if n := len(w.Launches()); n != 0 {
		t.Errorf("Launches() = %d, want 0", n)
	}
}
