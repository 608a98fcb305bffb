package system

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestGetBool(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  bool
	}{
		{"true value 1", "1", true, true},
		{"true value true", "true", true, true},
		{"true value yes", "yes", true, true},
		{"true value on", "on", true, true},
		{"true value uppercase", "TRUE", true, true},
		{"true value padded", "  1 ", true, true},
		{"false value 0", "0", true, false},
		{"false value false", "false", true, false},
		{"false value empty", "", true, false},
		{"false value random", "random", true, false},
		{"unset variable", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const key = "WSLGO_TEST_BOOL"
			if tt.set {
				t.Setenv(key, tt.value)
			} else {
				t.Setenv(key, "")
				os.Unsetenv(key)
			}
			if got := GetBool(key); got != tt.want {
				t.Errorf("GetBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		want         string
	}{
		{"existing value", "Debian", "Ubuntu", "Debian"},
		{"empty value returns default", "", "Ubuntu", "Ubuntu"},
		{"whitespace value", "  Alpine  ", "Ubuntu", "Alpine"},
		{"blank value returns default", "   ", "Ubuntu", "Ubuntu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDistribution, tt.value)
			if got := GetString(EnvDistribution, tt.defaultValue); got != tt.want {
				t.Errorf("GetString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuration(t *testing.T) {
	def := 30 * time.Second
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty returns default", "", def},
		{"bare milliseconds", "45000", 45 * time.Second},
		{"zero milliseconds", "0", 0},
		{"go duration", "1m30s", 90 * time.Second},
		{"sub-second duration", "250ms", 250 * time.Millisecond},
		{"negative milliseconds", "-5", def},
		{"negative duration", "-1s", def},
		{"garbage", "soon", def},
		{"overflowing milliseconds", "9300000000000000", def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvTimeout, tt.value)
			if got := GetDuration(EnvTimeout, def); got != tt.want {
				t.Errorf("GetDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestIsDebugEnabled(t *testing.T) {
	t.Setenv(EnvDebug, "1")
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false, want true")
	}
	t.Setenv(EnvDebug, "0")
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() = true, want false")
	}
}

func TestIsInteractiveRequested(t *testing.T) {
	t.Setenv(EnvInteractive, "yes")
	if !IsInteractiveRequested() {
		t.Error("IsInteractiveRequested() = false, want true")
	}
	t.Setenv(EnvInteractive, "")
	if IsInteractiveRequested() {
		t.Error("IsInteractiveRequested() = true, want false")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{"30000", 30 * time.Second, false},
		{" 2s ", 2 * time.Second, false},
		{"1h", time.Hour, false},
		{"-1", 0, true},
		{"-2s", 0, true},
		{"9223372036854", 9223372036854 * time.Millisecond, false},
		{"9300000000000000", 0, true},
		{"99999999999999999999", 0, true},
		{"", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseDuration(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestAllEnvVars(t *testing.T) {
	seen := make(map[string]bool)
	for _, key := range AllEnvVars() {
		if !strings.HasPrefix(key, "WSLGO_") {
			t.Errorf("AllEnvVars() contains %q, want WSLGO_ prefix", key)
		}
		if seen[key] {
			t.Errorf("AllEnvVars() lists %q twice", key)
		}
		seen[key] = true
	}
	for _, key := range []string{EnvDistribution, EnvTimeout, EnvDebug, EnvIOWrap} {
		if !seen[key] {
			t.Errorf("AllEnvVars() missing %s", key)
		}
	}
}
