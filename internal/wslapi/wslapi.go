// Package wslapi binds the Windows Subsystem for Linux API (wslapi.dll).
//
// The entry points are resolved once per process, on first use, into a
// package-level binding table; every caller shares it. The API interface
// lets the launch engine and its tests swap the binding for a fake.
package wslapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tmc/wslgo/internal/kernel"
)

// ErrUnsupported is returned by System on platforms without wslapi.dll.
var ErrUnsupported = fmt.Errorf("wslapi: wslapi.dll is only available on windows: %w", errors.ErrUnsupported)

// Configuration is the result of WslGetDistributionConfiguration.
type Configuration struct {
	Version     uint32
	DefaultUID  uint32
	Flags       DistributionFlags
	Environment map[string]string
}

// API is the subset of wslapi.dll used by wslgo.
type API interface {
	// Launch starts command inside distribution with the given standard
	// handles. The caller owns any non-zero process handle returned, even
	// alongside a failure HResult.
	Launch(distribution, command string, useCurrentWorkingDirectory bool, stdin, stdout, stderr kernel.Handle) (kernel.Handle, HResult)

	// LaunchInteractive runs command attached to the caller's console and
	// blocks until it exits.
	LaunchInteractive(distribution, command string, useCurrentWorkingDirectory bool) (uint32, HResult)

	IsDistributionRegistered(distribution string) bool
	ConfigureDistribution(distribution string, defaultUID uint32, flags DistributionFlags) HResult
	GetDistributionConfiguration(distribution string) (Configuration, HResult)
}

// ParseEnvironment turns KEY=VALUE strings into a map. Entries without '='
// are dropped; a repeated key keeps its last value.
func ParseEnvironment(vars []string) map[string]string {
	if len(vars) == 0 {
		return nil
	}
	env := make(map[string]string, len(vars))
	for _, v := range vars {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// FormatEnvironment is the inverse of ParseEnvironment, sorted by key.
func FormatEnvironment(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
