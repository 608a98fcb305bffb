// Package kernel exposes the handful of Win32 kernel primitives the launch
// engine needs: anonymous pipes, overlapped reads, handle waits, process
// exit codes and forced termination.
//
// The primitives are expressed as the Kernel interface so the engine can run
// against the real kernel32 binding on Windows and against an in-memory fake
// (see kerneltest) everywhere else.
package kernel

import (
	"errors"
	"fmt"
	"syscall"
)

// Handle is an opaque OS handle. The zero value means "not allocated".
type Handle uintptr

// InvalidHandle is the INVALID_HANDLE_VALUE sentinel.
const InvalidHandle = ^Handle(0)

// Valid reports whether h refers to an allocated handle.
func (h Handle) Valid() bool {
	return h != 0 && h != InvalidHandle
}

// WaitResult is the outcome of WaitForSingleObject.
type WaitResult uint32

const (
	WaitObject0 WaitResult = 0x00000000
	WaitTimeout WaitResult = 0x00000102
	WaitFailed  WaitResult = 0xFFFFFFFF
)

func (r WaitResult) String() string {
	switch r {
	case WaitObject0:
		return "signaled"
	case WaitTimeout:
		return "timeout"
	case WaitFailed:
		return "failed"
	default:
		return fmt.Sprintf("WaitResult(%#x)", uint32(r))
	}
}

// Infinite is the INFINITE wait bound in milliseconds.
const Infinite = 0xFFFFFFFF

// Overlapped is the per-read OVERLAPPED context. Its layout matches
// windows.Overlapped so the Windows binding can pass it straight through.
type Overlapped struct {
	Internal     uintptr
	InternalHigh uintptr
	Offset       uint32
	OffsetHigh   uint32
	HEvent       Handle
}

// Platform error codes the engine distinguishes.
const (
	ErrIOPending     = syscall.Errno(997) // ERROR_IO_PENDING
	ErrBrokenPipe    = syscall.Errno(109) // ERROR_BROKEN_PIPE
	ErrInvalidHandle = syscall.Errno(6)   // ERROR_INVALID_HANDLE
)

// ErrUnsupported is returned by System on platforms without kernel32.
var ErrUnsupported = fmt.Errorf("kernel: kernel32 is only available on windows: %w", errors.ErrUnsupported)

// Kernel is the set of primitives the launch engine calls. Implementations
// must be safe for concurrent use; distinct handles are never touched by two
// goroutines at once.
type Kernel interface {
	// CreatePipe creates an anonymous pipe whose handles are inheritable.
	CreatePipe() (read, write Handle, err error)

	// ReadFile starts a read into buf using ov. It returns nil when the read
	// completed immediately, ErrIOPending when it is in flight, and any other
	// error when the stream cannot be read further.
	ReadFile(h Handle, buf []byte, ov *Overlapped) error

	// GetOverlappedResult reports how many bytes the read described by ov
	// transferred, blocking until it completes when wait is true.
	GetOverlappedResult(h Handle, ov *Overlapped, wait bool) (uint32, error)

	CloseHandle(h Handle) error

	// WaitForSingleObject blocks up to timeoutMs for h to become signaled.
	WaitForSingleObject(h Handle, timeoutMs uint32) (WaitResult, error)

	GetExitCodeProcess(h Handle) (uint32, error)
	TerminateProcess(h Handle, exitCode uint32) error
}
