// Package system provides environment helpers shared by the wslgo packages.
package system

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable constants for wslgo
const (
	// Core configuration
	EnvDistribution = "WSLGO_DISTRIBUTION"
	EnvTimeout      = "WSLGO_TIMEOUT"
	EnvNoCwd        = "WSLGO_NO_CWD"
	EnvInteractive  = "WSLGO_INTERACTIVE"
	EnvDebug        = "WSLGO_DEBUG"

	// Logging
	EnvLogDest  = "WSLGO_LOG_DEST"
	EnvLogJSON  = "WSLGO_LOG_JSON"
	EnvLogTime  = "WSLGO_LOG_TIME"
	EnvLogLevel = "WSLGO_LOG_LEVEL"

	// Live output echo
	EnvIOWrap   = "WSLGO_IO_WRAP"
	EnvIOColor  = "WSLGO_IO_COLOR"
	EnvIOPrefix = "WSLGO_IO_PREFIX"
	EnvIOIndent = "WSLGO_IO_INDENT"
)

// GetBool returns the boolean value of an environment variable.
// Returns true if the variable is set to "1", "true", "yes", or "on" (case-insensitive).
// Returns false otherwise.
func GetBool(key string) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

// GetString returns the string value of an environment variable.
// Returns the defaultValue if the variable is not set or empty.
func GetString(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDuration returns the duration value of an environment variable, parsed
// with ParseDuration. Returns the defaultValue if the variable is not set,
// empty, or invalid.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// ParseDuration accepts a Go duration ("45s", "1m30s") or a bare number of
// milliseconds ("45000"). Negative values are rejected.
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	var d time.Duration
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		if ms > math.MaxInt64/int64(time.Millisecond) {
			return 0, fmt.Errorf("invalid duration %q: too large", value)
		}
		d = time.Duration(ms) * time.Millisecond
	} else if d, err = time.ParseDuration(value); err != nil {
		return 0, fmt.Errorf("invalid duration %q: want a Go duration or milliseconds", value)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", value)
	}
	return d, nil
}

// IsDebugEnabled checks if debug mode is enabled via environment variable.
func IsDebugEnabled() bool {
	return GetBool(EnvDebug)
}

// IsInteractiveRequested checks if interactive launches are forced.
func IsInteractiveRequested() bool {
	return GetBool(EnvInteractive)
}

// AllEnvVars returns a list of all known wslgo environment variables.
func AllEnvVars() []string {
	return []string{
		EnvDistribution,
		EnvTimeout,
		EnvNoCwd,
		EnvInteractive,
		EnvDebug,
		EnvLogDest,
		EnvLogJSON,
		EnvLogTime,
		EnvLogLevel,
		EnvIOWrap,
		EnvIOColor,
		EnvIOPrefix,
		EnvIOIndent,
	}
}
