package kernel

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// CloseError records a failed CloseHandle.
type CloseError struct {
	Handle Handle
	Err    error
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("close handle %#x: %v", uintptr(e.Handle), e.Err)
}

func (e *CloseError) Unwrap() error {
	return e.Err
}

// Owned is a handle that is released at most once. Close on a handle that
// was never allocated, or that has already been closed, is a no-op.
type Owned struct {
	k      Kernel
	h      Handle
	closed atomic.Bool
}

// Handle returns the underlying handle. It must not be used after Close.
func (o *Owned) Handle() Handle {
	if o == nil {
		return 0
	}
	return o.h
}

// Closed reports whether the handle has been released (or was never valid).
func (o *Owned) Closed() bool {
	return o == nil || o.closed.Load()
}

// Close releases the handle exactly once.
func (o *Owned) Close() error {
	if o == nil || !o.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := o.k.CloseHandle(o.h); err != nil {
		return &CloseError{Handle: o.h, Err: err}
	}
	return nil
}

// Scope tracks every handle acquired during one operation and releases all
// of them on Close. Use it with defer so release happens on every exit path,
// including panics:
//
//	scope := kernel.NewScope(k)
//	defer scope.Close()
type Scope struct {
	k       Kernel
	owned   []*Owned
	onError func(*CloseError)
}

// NewScope returns an empty scope bound to k.
func NewScope(k Kernel) *Scope {
	return &Scope{k: k}
}

// OnCloseError registers fn to observe each failed close during Close.
func (s *Scope) OnCloseError(fn func(*CloseError)) {
	s.onError = fn
}

// Own registers h with the scope. Invalid handles yield an Owned that is
// already closed, so callers never have to special-case them.
func (s *Scope) Own(h Handle) *Owned {
	o := &Owned{k: s.k, h: h}
	if !h.Valid() {
		o.closed.Store(true)
	}
	s.owned = append(s.owned, o)
	return o
}

// Close releases every handle still open, most recently acquired first.
// A failing close does not stop the remaining ones; all failures are
// returned joined.
func (s *Scope) Close() error {
	var errs []error
	for i := len(s.owned) - 1; i >= 0; i-- {
		err := s.owned[i].Close()
		if err == nil {
			continue
		}
		var ce *CloseError
		if s.onError != nil && errors.As(err, &ce) {
			s.onError(ce)
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
