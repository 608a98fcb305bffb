package wslgo

import (
	"errors"
	"strings"
	"testing"
)

func TestError(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without help",
			err:  &Error{Op: "configure", Err: base},
			want: "wslgo: configure: boom",
		},
		{
			name: "with help",
			err:  &Error{Op: "configure", Err: base, Help: "try again"},
			want: "wslgo: configure: boom\n  hint: try again",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, base) {
				t.Error("errors.Is() = false, want the wrapped error")
			}
		})
	}
}

func TestHResultError(t *testing.T) {
	tests := []struct {
		hr       HResult
		wantHelp string
	}{
		{ENotFound, `"Arch" is not registered`},
		{EAccessDenied, "denied access"},
		{EInvalidArg, "rejected"},
		{EFail, ""},
	}
	for _, tt := range tests {
		t.Run(tt.hr.String(), func(t *testing.T) {
			err := hresultError("configure", "Arch", tt.hr)
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("hresultError() = %T, want *Error", err)
			}
			if !errors.Is(err, tt.hr) {
				t.Errorf("errors.Is(%v) = false", tt.hr)
			}
			if tt.wantHelp == "" {
				if e.Help != "" {
					t.Errorf("Help = %q, want none", e.Help)
				}
				return
			}
			if !strings.Contains(e.Help, tt.wantHelp) {
				t.Errorf("Help = %q, want it to contain %q", e.Help, tt.wantHelp)
			}
		})
	}
}
