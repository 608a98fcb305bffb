package wslapi

import "fmt"

// HResult is a COM HRESULT as returned by the wslapi.dll entry points.
type HResult uint32

const (
	SOK           HResult = 0x00000000
	EFail         HResult = 0x80004005
	EAccessDenied HResult = 0x80070005
	EInvalidArg   HResult = 0x80070057
	ENotFound     HResult = 0x80070490 // HRESULT_FROM_WIN32(ERROR_NOT_FOUND)
)

// OK reports whether hr is exactly S_OK. The launch and configuration
// entry points signal success only this way.
func (hr HResult) OK() bool {
	return hr == SOK
}

// Err returns hr as an error, or nil when hr is S_OK.
func (hr HResult) Err() error {
	if hr.OK() {
		return nil
	}
	return hr
}

func (hr HResult) Error() string {
	return "wslapi: " + hr.String()
}

func (hr HResult) String() string {
	switch hr {
	case SOK:
		return "S_OK"
	case EFail:
		return "E_FAIL"
	case EAccessDenied:
		return "E_ACCESSDENIED"
	case EInvalidArg:
		return "E_INVALIDARG"
	case ENotFound:
		return "ERROR_NOT_FOUND"
	default:
		return fmt.Sprintf("HRESULT(%#08x)", uint32(hr))
	}
}
