//go:build !windows

package kernel

// System returns ErrUnsupported: kernel32 only exists on windows.
func System() (Kernel, error) {
	return nil, ErrUnsupported
}
