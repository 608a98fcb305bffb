//go:build !windows

package wslapi

// System returns ErrUnsupported: wslapi.dll only exists on windows.
func System() (API, error) {
	return nil, ErrUnsupported
}
