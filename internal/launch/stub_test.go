package launch

import (
	"sync"

	"github.com/tmc/wslgo/internal/kernel"
)

// readStep scripts one ReadFile/GetOverlappedResult round.
type readStep struct {
	data      string
	readErr   error // returned by ReadFile; nil means immediate success
	resultErr error // returned by GetOverlappedResult
}

// stubKernel is a kernel.Kernel whose reads and waits follow a script.
type stubKernel struct {
	mu    sync.Mutex
	reads []readStep

	waitResult kernel.WaitResult
	waitErr    error
	exitCode   uint32
	exitErr    error
	termErr    error

	waitTimeout uint32
	terminated  []uint32
	overlapped  []*kernel.Overlapped
}

var _ kernel.Kernel = (*stubKernel)(nil)

func (s *stubKernel) CreatePipe() (kernel.Handle, kernel.Handle, error) {
	return 1, 2, nil
}

func (s *stubKernel) ReadFile(h kernel.Handle, buf []byte, ov *kernel.Overlapped) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlapped = append(s.overlapped, ov)
	if len(s.reads) == 0 {
		return kernel.ErrBrokenPipe
	}
	step := s.reads[0]
	if step.readErr != nil && step.readErr != kernel.ErrIOPending {
		s.reads = s.reads[1:]
		return step.readErr
	}
	ov.InternalHigh = uintptr(copy(buf, step.data))
	return step.readErr
}

func (s *stubKernel) GetOverlappedResult(h kernel.Handle, ov *kernel.Overlapped, wait bool) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := s.reads[0]
	s.reads = s.reads[1:]
	if step.resultErr != nil {
		return 0, step.resultErr
	}
	return uint32(ov.InternalHigh), nil
}

func (s *stubKernel) CloseHandle(h kernel.Handle) error { return nil }

func (s *stubKernel) WaitForSingleObject(h kernel.Handle, timeoutMs uint32) (kernel.WaitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitTimeout = timeoutMs
	return s.waitResult, s.waitErr
}

func (s *stubKernel) GetExitCodeProcess(h kernel.Handle) (uint32, error) {
	return s.exitCode, s.exitErr
}

func (s *stubKernel) TerminateProcess(h kernel.Handle, exitCode uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated = append(s.terminated, exitCode)
	return s.termErr
}
