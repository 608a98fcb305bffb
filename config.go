package wslgo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tmc/wslgo/internal/launch"
	"github.com/tmc/wslgo/internal/system"
)

// Defaults applied by DefaultConfig and to zero fields at launch time.
const (
	DefaultDistribution = "Ubuntu"
	DefaultTimeout      = launch.DefaultTimeout
)

// Config controls how commands are launched in a distribution.
type Config struct {
	// Distribution is the registered distribution name.
	// Default: "Ubuntu"
	Distribution string

	// Timeout bounds the wait for a captured command. A command still
	// running at the deadline is terminated and reported with ExitTimeout.
	// Default: 30s
	Timeout time.Duration

	// UseCurrentWorkingDirectory starts commands in the caller's working
	// directory instead of the distribution user's home.
	UseCurrentWorkingDirectory bool

	// CaptureOutput controls whether Run returns the command's output.
	CaptureOutput bool

	// Interactive attaches commands to the caller's console. Nothing is
	// captured and Timeout does not apply.
	Interactive bool

	// Debug enables debug logging.
	Debug bool

	// Stdout and Stderr, when set, receive captured output as it arrives.
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() *Config {
	return &Config{
		Distribution:               DefaultDistribution,
		Timeout:                    DefaultTimeout,
		UseCurrentWorkingDirectory: true,
		CaptureOutput:              true,
	}
}

// FromEnv loads configuration from environment variables.
// Supported variables: WSLGO_DISTRIBUTION, WSLGO_TIMEOUT, WSLGO_NO_CWD,
// WSLGO_INTERACTIVE, WSLGO_DEBUG. Unset variables leave fields unchanged.
func (c *Config) FromEnv() *Config {
	if c == nil {
		c = DefaultConfig()
	}

	c.Distribution = system.GetString(system.EnvDistribution, c.Distribution)
	c.Timeout = system.GetDuration(system.EnvTimeout, c.Timeout)

	if system.GetBool(system.EnvNoCwd) {
		c.UseCurrentWorkingDirectory = false
	}
	if system.IsInteractiveRequested() {
		c.Interactive = true
	}
	if system.IsDebugEnabled() {
		c.Debug = true
	}
	return c
}

// fileConfig is the YAML form of Config. Pointer fields distinguish an
// absent key from a false or empty one.
type fileConfig struct {
	Distribution               *string `yaml:"distribution"`
	Timeout                    *string `yaml:"timeout"`
	UseCurrentWorkingDirectory *bool   `yaml:"use_current_working_directory"`
	CaptureOutput              *bool   `yaml:"capture_output"`
	Interactive                *bool   `yaml:"interactive"`
	Debug                      *bool   `yaml:"debug"`
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
//
//	distribution: Debian
//	timeout: 45s        # or milliseconds: 45000
//	use_current_working_directory: false
//	capture_output: true
//	interactive: false
//	debug: true
//
// Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Op: "load config", Err: err}
	}
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, &Error{Op: "load config", Err: fmt.Errorf("%s: %w", path, err)}
	}
	return cfg, nil
}

func parseConfig(data []byte) (*Config, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := DefaultConfig()
	if fc.Distribution != nil {
		if *fc.Distribution == "" {
			return nil, errors.New("distribution must not be empty")
		}
		cfg.Distribution = *fc.Distribution
	}
	if fc.Timeout != nil {
		d, err := system.ParseDuration(*fc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if fc.UseCurrentWorkingDirectory != nil {
		cfg.UseCurrentWorkingDirectory = *fc.UseCurrentWorkingDirectory
	}
	if fc.CaptureOutput != nil {
		cfg.CaptureOutput = *fc.CaptureOutput
	}
	if fc.Interactive != nil {
		cfg.Interactive = *fc.Interactive
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	return cfg, nil
}
