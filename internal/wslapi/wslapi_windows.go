//go:build windows

package wslapi

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"

	"github.com/tmc/wslgo/internal/kernel"
)

// wslapi.dll functions
var (
	fnWslLaunch                       func(name, command *uint16, useCwd bool, stdin, stdout, stderr windows.Handle, process *windows.Handle) int32
	fnWslLaunchInteractive            func(name, command *uint16, useCwd bool, exitCode *uint32) int32
	fnWslIsDistributionRegistered     func(name *uint16) int32
	fnWslConfigureDistribution        func(name *uint16, defaultUID uint32, flags uint32) int32
	fnWslGetDistributionConfiguration func(name *uint16, version, defaultUID, flags *uint32, env ***byte, envCount *uint32) int32
)

var bindings = []struct {
	fn   any
	name string
}{
	{&fnWslLaunch, "WslLaunch"},
	{&fnWslLaunchInteractive, "WslLaunchInteractive"},
	{&fnWslIsDistributionRegistered, "WslIsDistributionRegistered"},
	{&fnWslConfigureDistribution, "WslConfigureDistribution"},
	{&fnWslGetDistributionConfiguration, "WslGetDistributionConfiguration"},
}

var (
	initOnce sync.Once
	initErr  error
)

func initWslAPI() error {
	initOnce.Do(func() {
		dll := windows.NewLazySystemDLL("wslapi.dll")
		if err := dll.Load(); err != nil {
			initErr = fmt.Errorf("wslapi: load wslapi.dll: %w", err)
			return
		}
		for _, b := range bindings {
			proc := dll.NewProc(b.name)
			if err := proc.Find(); err != nil {
				initErr = fmt.Errorf("wslapi: resolve %s: %w", b.name, err)
				return
			}
			purego.RegisterFunc(b.fn, proc.Addr())
		}
	})
	return initErr
}

type dllAPI struct{}

// System returns the wslapi.dll binding, loading it on first use.
func System() (API, error) {
	if err := initWslAPI(); err != nil {
		return nil, err
	}
	return dllAPI{}, nil
}

func (dllAPI) Launch(distribution, command string, useCwd bool, stdin, stdout, stderr kernel.Handle) (kernel.Handle, HResult) {
	name, err := windows.UTF16PtrFromString(distribution)
	if err != nil {
		return 0, EInvalidArg
	}
	cmd, err := windows.UTF16PtrFromString(command)
	if err != nil {
		return 0, EInvalidArg
	}
	var process windows.Handle
	hr := HResult(uint32(fnWslLaunch(name, cmd, useCwd,
		windows.Handle(stdin), windows.Handle(stdout), windows.Handle(stderr), &process)))
	// Any handle written is the caller's to close, whatever hr says.
	return kernel.Handle(process), hr
}

func (dllAPI) LaunchInteractive(distribution, command string, useCwd bool) (uint32, HResult) {
	name, err := windows.UTF16PtrFromString(distribution)
	if err != nil {
		return 0, EInvalidArg
	}
	// A nil command launches the default shell.
	var cmd *uint16
	if command != "" {
		if cmd, err = windows.UTF16PtrFromString(command); err != nil {
			return 0, EInvalidArg
		}
	}
	var exitCode uint32
	hr := HResult(uint32(fnWslLaunchInteractive(name, cmd, useCwd, &exitCode)))
	return exitCode, hr
}

func (dllAPI) IsDistributionRegistered(distribution string) bool {
	name, err := windows.UTF16PtrFromString(distribution)
	if err != nil {
		return false
	}
	return fnWslIsDistributionRegistered(name) != 0
}

func (dllAPI) ConfigureDistribution(distribution string, defaultUID uint32, flags DistributionFlags) HResult {
	name, err := windows.UTF16PtrFromString(distribution)
	if err != nil {
		return EInvalidArg
	}
	return HResult(uint32(fnWslConfigureDistribution(name, defaultUID, uint32(flags))))
}

func (dllAPI) GetDistributionConfiguration(distribution string) (Configuration, HResult) {
	name, err := windows.UTF16PtrFromString(distribution)
	if err != nil {
		return Configuration{}, EInvalidArg
	}
	var (
		version, uid, flags uint32
		env                 **byte
		count               uint32
	)
	hr := HResult(uint32(fnWslGetDistributionConfiguration(name, &version, &uid, &flags, &env, &count)))
	vars := takeEnvironment(env, count)
	if !hr.OK() {
		return Configuration{}, hr
	}
	return Configuration{
		Version:     version,
		DefaultUID:  uid,
		Flags:       DistributionFlags(flags),
		Environment: ParseEnvironment(vars),
	}, hr
}

// takeEnvironment copies the CoTaskMemAlloc'd string array out and frees
// every string and the array itself.
func takeEnvironment(env **byte, count uint32) []string {
	if env == nil {
		return nil
	}
	defer windows.CoTaskMemFree(unsafe.Pointer(env))

	ptrs := unsafe.Slice(env, count)
	vars := make([]string, 0, count)
	for _, p := range ptrs {
		if p == nil {
			continue
		}
		vars = append(vars, windows.BytePtrToString(p))
		windows.CoTaskMemFree(unsafe.Pointer(p))
	}
	return vars
}
