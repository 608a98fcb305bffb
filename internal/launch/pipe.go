package launch

import "github.com/tmc/wslgo/internal/kernel"

// pipe is one anonymous pipe whose ends belong to a launch scope.
type pipe struct {
	read  *kernel.Owned
	write *kernel.Owned
}

// newPipe creates an anonymous pipe with an inheritable write end and
// registers both ends with scope.
func newPipe(k kernel.Kernel, scope *kernel.Scope, stream string) (*pipe, error) {
	r, w, err := k.CreatePipe()
	if err != nil {
		return nil, &AllocationError{Stream: stream, Err: err}
	}
	return &pipe{
		read:  scope.Own(r),
		write: scope.Own(w),
	}, nil
}
