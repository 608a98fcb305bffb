package launch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tmc/wslgo/internal/system"
)

// Logger wraps slog.Logger with wslgo-specific configuration
type Logger struct {
	*slog.Logger
}

// NewLogger creates a configured logger based on environment variables
func NewLogger() *Logger {
	return NewLoggerWithDebug(system.IsDebugEnabled())
}

// NewLoggerWithDebug is NewLogger with debug records forced on when debug
// is true.
func NewLoggerWithDebug(debug bool) *Logger {
	var writers []io.Writer

	// Can be "stderr", "file:<path>", or "both:<path>"
	logDest := os.Getenv(system.EnvLogDest)

	switch {
	case strings.HasPrefix(logDest, "file:"):
		logPath := strings.TrimPrefix(logDest, "file:")
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			writers = append(writers, f)
		} else {
			fmt.Fprintf(os.Stderr, "wslgo: failed to open log file %s: %v\n", logPath, err)
			writers = append(writers, os.Stderr)
		}
	case strings.HasPrefix(logDest, "both:"):
		logPath := strings.TrimPrefix(logDest, "both:")
		writers = append(writers, os.Stderr)
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			writers = append(writers, f)
		} else {
			fmt.Fprintf(os.Stderr, "wslgo: failed to open log file %s: %v\n", logPath, err)
		}
	default:
		writers = append(writers, os.Stderr)
	}

	var output io.Writer
	if len(writers) == 1 {
		output = writers[0]
	} else {
		output = io.MultiWriter(writers...)
	}
	return newLogger(output, debug)
}

func newLogger(output io.Writer, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if system.GetBool(system.EnvLogJSON) {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		showTime := system.GetBool(system.EnvLogTime)
		showLevel := system.GetBool(system.EnvLogLevel)
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && !showTime {
					return slog.Attr{}
				}
				if a.Key == slog.LevelKey && !showLevel {
					return slog.Attr{}
				}
				return a
			},
		})
	}

	return &Logger{
		Logger: slog.New(handler).With("component", "wslgo"),
	}
}

// WrapLogger adapts a caller-supplied slog.Logger. A nil logger discards
// everything.
func WrapLogger(l *slog.Logger) *Logger {
	if l == nil {
		return DiscardLogger()
	}
	return &Logger{Logger: l}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Debug logs at debug level with "wslgo:" prefix
func (l *Logger) Debug(msg string, args ...any) {
	l.Logger.Debug("wslgo: "+msg, args...)
}

// Info logs at info level with "wslgo:" prefix
func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info("wslgo: "+msg, args...)
}

// Error logs at error level with "wslgo:" prefix
func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error("wslgo: "+msg, args...)
}

// Warn logs at warn level with "wslgo:" prefix
func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn("wslgo: "+msg, args...)
}
