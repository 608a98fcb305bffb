//go:build windows

package kernel

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// kernel32 binds Kernel to the real kernel32.dll entry points. The procs
// themselves are resolved lazily, once per process, by x/sys/windows.
type kernel32 struct{}

var system Kernel = kernel32{}

// System returns the process-wide kernel32 binding.
func System() (Kernel, error) {
	return system, nil
}

func (kernel32) CreatePipe() (Handle, Handle, error) {
	sa := windows.SecurityAttributes{InheritHandle: 1}
	sa.Length = uint32(unsafe.Sizeof(sa))

	var r, w windows.Handle
	if err := windows.CreatePipe(&r, &w, &sa, 0); err != nil {
		return 0, 0, err
	}
	return Handle(r), Handle(w), nil
}

func (kernel32) ReadFile(h Handle, buf []byte, ov *Overlapped) error {
	var n uint32
	return windows.ReadFile(windows.Handle(h), buf, &n, toWindows(ov))
}

func (kernel32) GetOverlappedResult(h Handle, ov *Overlapped, wait bool) (uint32, error) {
	var n uint32
	if err := windows.GetOverlappedResult(windows.Handle(h), toWindows(ov), &n, wait); err != nil {
		return 0, err
	}
	return n, nil
}

func (kernel32) CloseHandle(h Handle) error {
	return windows.CloseHandle(windows.Handle(h))
}

func (kernel32) WaitForSingleObject(h Handle, timeoutMs uint32) (WaitResult, error) {
	event, err := windows.WaitForSingleObject(windows.Handle(h), timeoutMs)
	return WaitResult(event), err
}

func (kernel32) GetExitCodeProcess(h Handle) (uint32, error) {
	var code uint32
	if err := windows.GetExitCodeProcess(windows.Handle(h), &code); err != nil {
		return 0, err
	}
	return code, nil
}

func (kernel32) TerminateProcess(h Handle, exitCode uint32) error {
	return windows.TerminateProcess(windows.Handle(h), exitCode)
}

func toWindows(ov *Overlapped) *windows.Overlapped {
	return (*windows.Overlapped)(unsafe.Pointer(ov))
}
