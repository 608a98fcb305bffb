// Package kerneltest provides in-memory fakes of the kernel32 and wslapi
// primitives with handle accounting, so the launch engine can be tested
// without Windows.
package kerneltest

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tmc/wslgo/internal/kernel"
)

// DefaultPipeCapacity mirrors the default anonymous pipe buffer size.
const DefaultPipeCapacity = 4096

// stillActive is STILL_ACTIVE, returned by GetExitCodeProcess while running.
const stillActive = 259

type handleKind int

const (
	kindPipeRead handleKind = iota
	kindPipeWrite
	kindProcess
)

type entry struct {
	kind   handleKind
	pipe   *pipe
	proc   *process
	closes int
}

// Kernel is a fake kernel.Kernel. Pipes are bounded in-memory buffers;
// processes are goroutines started by WSL.Launch.
//
// Every handle it hands out is tracked; Open and DoubleClosed report leaks
// and repeated closes.
type Kernel struct {
	// PipeCapacity bounds each pipe's buffer. Zero means DefaultPipeCapacity.
	PipeCapacity int

	// ImmediateReads makes ReadFile complete synchronously instead of
	// returning ERROR_IO_PENDING.
	ImmediateReads bool

	// FailCreatePipe makes the Nth CreatePipe call (1-based) fail.
	FailCreatePipe int

	// FailClose makes CloseHandle fail, after recording the close.
	FailClose func(h kernel.Handle) error

	// FailTerminate makes TerminateProcess fail without killing.
	FailTerminate error

	// WaitOverride replaces WaitForSingleObject's outcome when set.
	WaitOverride func(h kernel.Handle) (kernel.WaitResult, error)

	mu         sync.Mutex
	next       kernel.Handle
	handles    map[kernel.Handle]*entry
	pipeCalls  int
	calls      map[string]int
	terminated []Termination
}

// Termination records a TerminateProcess call.
type Termination struct {
	Handle kernel.Handle
	At     time.Time
	Err    error
}

var _ kernel.Kernel = (*Kernel)(nil)

// New returns an empty fake kernel.
func New() *Kernel {
	return &Kernel{
		next:    0x100,
		handles: make(map[kernel.Handle]*entry),
		calls:   make(map[string]int),
	}
}

func (k *Kernel) count(op string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.calls[op]++
}

// Calls returns how many times the named primitive ("ReadFile",
// "WaitForSingleObject", ...) was invoked.
func (k *Kernel) Calls(op string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.calls[op]
}

func (k *Kernel) alloc(e *entry) kernel.Handle {
	k.next += 4
	h := k.next
	k.handles[h] = e
	return h
}

func (k *Kernel) lookup(h kernel.Handle) (*entry, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.handles[h]
	if !ok || e.closes > 0 {
		return nil, kernel.ErrInvalidHandle
	}
	return e, nil
}

func (k *Kernel) CreatePipe() (kernel.Handle, kernel.Handle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.calls["CreatePipe"]++
	k.pipeCalls++
	if k.FailCreatePipe == k.pipeCalls {
		return 0, 0, fmt.Errorf("CreatePipe: %w", errTooManyHandles)
	}
	capacity := k.PipeCapacity
	if capacity <= 0 {
		capacity = DefaultPipeCapacity
	}
	p := newPipe(capacity)
	r := k.alloc(&entry{kind: kindPipeRead, pipe: p})
	w := k.alloc(&entry{kind: kindPipeWrite, pipe: p})
	return r, w, nil
}

func (k *Kernel) ReadFile(h kernel.Handle, buf []byte, ov *kernel.Overlapped) error {
	k.count("ReadFile")
	e, err := k.lookup(h)
	if err != nil {
		return err
	}
	if e.kind != kindPipeRead {
		return kernel.ErrInvalidHandle
	}
	if !k.ImmediateReads {
		e.pipe.startRead(ov, buf)
		return kernel.ErrIOPending
	}
	n := e.pipe.read(buf)
	if n == 0 {
		return kernel.ErrBrokenPipe
	}
	ov.InternalHigh = uintptr(n)
	return nil
}

func (k *Kernel) GetOverlappedResult(h kernel.Handle, ov *kernel.Overlapped, wait bool) (uint32, error) {
	k.count("GetOverlappedResult")
	e, err := k.lookup(h)
	if err != nil {
		return 0, err
	}
	if e.kind != kindPipeRead {
		return 0, kernel.ErrInvalidHandle
	}
	if buf, ok := e.pipe.takeRead(ov); ok {
		if !wait {
			return 0, errIOIncomplete
		}
		return uint32(e.pipe.read(buf)), nil
	}
	return uint32(ov.InternalHigh), nil
}

func (k *Kernel) CloseHandle(h kernel.Handle) error {
	k.mu.Lock()
	k.calls["CloseHandle"]++
	e, ok := k.handles[h]
	if !ok {
		k.mu.Unlock()
		return kernel.ErrInvalidHandle
	}
	e.closes++
	first := e.closes == 1
	k.mu.Unlock()

	if !first {
		return kernel.ErrInvalidHandle
	}
	switch e.kind {
	case kindPipeRead:
		e.pipe.closeReader()
	case kindPipeWrite:
		e.pipe.releaseWriter()
	}
	if k.FailClose != nil {
		return k.FailClose(h)
	}
	return nil
}

func (k *Kernel) WaitForSingleObject(h kernel.Handle, timeoutMs uint32) (kernel.WaitResult, error) {
	k.count("WaitForSingleObject")
	if k.WaitOverride != nil {
		return k.WaitOverride(h)
	}
	e, err := k.lookup(h)
	if err != nil || e.kind != kindProcess {
		return kernel.WaitFailed, kernel.ErrInvalidHandle
	}
	if timeoutMs == kernel.Infinite {
		<-e.proc.done
		return kernel.WaitObject0, nil
	}
	timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-e.proc.done:
		return kernel.WaitObject0, nil
	case <-timer.C:
		return kernel.WaitTimeout, nil
	}
}

func (k *Kernel) GetExitCodeProcess(h kernel.Handle) (uint32, error) {
	k.count("GetExitCodeProcess")
	e, err := k.lookup(h)
	if err != nil || e.kind != kindProcess {
		return 0, kernel.ErrInvalidHandle
	}
	select {
	case <-e.proc.done:
		return e.proc.exitCode(), nil
	default:
		return stillActive, nil
	}
}

func (k *Kernel) TerminateProcess(h kernel.Handle, exitCode uint32) error {
	k.count("TerminateProcess")
	e, err := k.lookup(h)
	if err == nil && e.kind != kindProcess {
		err = kernel.ErrInvalidHandle
	}
	if err == nil && k.FailTerminate != nil {
		err = k.FailTerminate
	}

	k.mu.Lock()
	k.terminated = append(k.terminated, Termination{Handle: h, At: time.Now(), Err: err})
	k.mu.Unlock()

	if err != nil {
		return err
	}
	e.proc.kill(exitCode)
	return nil
}

// spawn registers a running process and takes a child reference on each
// write handle it inherits.
func (k *Kernel) spawn(stdout, stderr kernel.Handle) (kernel.Handle, *process, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	var pipes []*pipe
	for _, h := range []kernel.Handle{stdout, stderr} {
		if h == 0 {
			pipes = append(pipes, nil)
			continue
		}
		e, ok := k.handles[h]
		if !ok || e.closes > 0 || e.kind != kindPipeWrite {
			return 0, nil, kernel.ErrInvalidHandle
		}
		pipes = append(pipes, e.pipe)
	}
	proc := newProcess(pipes[0], pipes[1])
	h := k.alloc(&entry{kind: kindProcess, proc: proc})
	return h, proc, nil
}

// Allocated returns every handle handed out so far, in allocation order.
func (k *Kernel) Allocated() []kernel.Handle {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.sorted(func(*entry) bool { return true })
}

// Open returns handles that were never closed.
func (k *Kernel) Open() []kernel.Handle {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.sorted(func(e *entry) bool { return e.closes == 0 })
}

// DoubleClosed returns handles closed more than once.
func (k *Kernel) DoubleClosed() []kernel.Handle {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.sorted(func(e *entry) bool { return e.closes > 1 })
}

// Closes returns how many times h was closed.
func (k *Kernel) Closes(h kernel.Handle) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	if e, ok := k.handles[h]; ok {
		return e.closes
	}
	return 0
}

// Terminations returns every TerminateProcess call.
func (k *Kernel) Terminations() []Termination {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]Termination(nil), k.terminated...)
}

func (k *Kernel) sorted(keep func(*entry) bool) []kernel.Handle {
	var out []kernel.Handle
	for h, e := range k.handles {
		if keep(e) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
