package launch

import (
	"errors"
	"io"

	"github.com/tmc/wslgo/internal/kernel"
)

// readChunk is the size of each overlapped read.
const readChunk = 4096

// drain reads h until the writer side is gone and returns everything read.
// Each chunk is also written to sink when sink is non-nil.
//
// drain does not return until every write end of the pipe is closed, so a
// child that hands its stdout to a long-lived grandchild keeps it blocked.
func drain(k kernel.Kernel, h kernel.Handle, sink io.Writer) []byte {
	var out []byte
	buf := make([]byte, readChunk)
	for {
		var ov kernel.Overlapped
		if err := k.ReadFile(h, buf, &ov); err != nil && !errors.Is(err, kernel.ErrIOPending) {
			return out
		}
		n, err := k.GetOverlappedResult(h, &ov, true)
		if err != nil || n == 0 {
			return out
		}
		out = append(out, buf[:n]...)
		if sink != nil {
			_, _ = sink.Write(buf[:n])
		}
	}
}

// startDrain runs drain on its own goroutine. The channel yields the
// drained bytes exactly once.
func startDrain(k kernel.Kernel, h kernel.Handle, sink io.Writer) <-chan []byte {
	ch := make(chan []byte, 1)
	go func() {
		ch <- drain(k, h, sink)
	}()
	return ch
}
