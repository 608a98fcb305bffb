package launch

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/tmc/wslgo/internal/system"
)

// IOWrapper decorates echoed child output with a per-stream prefix,
// indentation and optional color.
type IOWrapper struct {
	dest     io.Writer
	prefix   string
	indent   string
	colorize bool
	stream   string // "stdout" or "stderr"
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// NewIOWrapper wraps dest when WSLGO_IO_WRAP is enabled and returns dest
// unchanged otherwise.
func NewIOWrapper(dest io.Writer, stream string) io.Writer {
	if !system.GetBool(system.EnvIOWrap) {
		return dest
	}

	wrapper := &IOWrapper{
		dest:     dest,
		stream:   stream,
		colorize: system.GetBool(system.EnvIOColor) || (os.Getenv("TERM") != "" && os.Getenv("TERM") != "dumb"),
	}

	prefix := os.Getenv(system.EnvIOPrefix)
	if prefix == "" {
		switch stream {
		case "stdout":
			prefix = "[out] "
		case "stderr":
			prefix = "[err] "
		}
	}
	wrapper.prefix = prefix
	wrapper.indent = os.Getenv(system.EnvIOIndent)
	if wrapper.indent == "" {
		wrapper.indent = "  "
	}

	return wrapper
}

// Write implements io.Writer, adding prefix and styling to each line
func (w *IOWrapper) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(p))
	scanner.Buffer(make([]byte, 0, 4096), len(p)+1)
	var output bytes.Buffer

	for scanner.Scan() {
		line := scanner.Text()

		if w.colorize {
			var color string
			switch w.stream {
			case "stdout":
				color = colorDim + colorGreen
			case "stderr":
				color = colorDim + colorYellow
			default:
				color = colorGray
			}
			output.WriteString(color)
		}

		output.WriteString(w.indent)
		output.WriteString(w.prefix)
		output.WriteString(line)

		if w.colorize {
			output.WriteString(colorReset)
		}

		output.WriteString("\n")
	}

	// A write without a trailing newline stays unterminated.
	out := output.Bytes()
	if p[len(p)-1] != '\n' && len(out) > 0 {
		out = out[:len(out)-1]
	}
	_, err := w.dest.Write(out)
	return len(p), err
}

// LineWriter wraps a writer to buffer and process complete lines
type LineWriter struct {
	w      io.Writer
	buffer bytes.Buffer
}

// NewLineWriter creates a writer that processes complete lines
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// Write buffers data and writes complete lines
func (lw *LineWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.buffer.Write(p)

	for {
		line, err := lw.buffer.ReadString('\n')
		if err != nil {
			// put the partial line back
			if len(line) > 0 {
				lw.buffer = bytes.Buffer{}
				lw.buffer.WriteString(line)
			}
			break
		}

		if _, err := lw.w.Write([]byte(line)); err != nil {
			return n, err
		}
	}

	return n, nil
}

// Flush writes any remaining buffered data
func (lw *LineWriter) Flush() error {
	if lw.buffer.Len() > 0 {
		remaining := lw.buffer.String()
		if !strings.HasSuffix(remaining, "\n") {
			remaining += "\n"
		}
		_, err := lw.w.Write([]byte(remaining))
		lw.buffer.Reset()
		return err
	}
	return nil
}

// echo forwards drained chunks to a caller writer. After the first write
// error it stops forwarding and remembers the error.
type echo struct {
	w   io.Writer
	lw  *LineWriter
	err error
}

func newEcho(dest io.Writer, stream string) *echo {
	if dest == nil {
		return nil
	}
	w := NewIOWrapper(dest, stream)
	e := &echo{w: w}
	if _, wrapped := w.(*IOWrapper); wrapped {
		e.lw = NewLineWriter(w)
		e.w = e.lw
	}
	return e
}

// sink returns e as an io.Writer, or nil when there is nothing to echo to.
func (e *echo) sink() io.Writer {
	if e == nil {
		return nil
	}
	return e
}

func (e *echo) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	if _, err := e.w.Write(p); err != nil {
		e.err = err
	}
	return len(p), nil
}

// finish flushes any partial line and reports the first write error.
func (e *echo) finish() error {
	if e == nil {
		return nil
	}
	if e.lw != nil && e.err == nil {
		e.err = e.lw.Flush()
	}
	return e.err
}
