package kerneltest

import (
	"sync"
	"sync/atomic"
)

// process is a fake child. It holds one writer reference on each inherited
// pipe until it exits or is killed.
type process struct {
	stdout, stderr *pipe

	done     chan struct{}
	killedCh chan struct{}
	exitOnce sync.Once
	killOnce sync.Once
	killed   atomic.Bool
	code     atomic.Uint32
}

func newProcess(stdout, stderr *pipe) *process {
	p := &process{
		stdout:   stdout,
		stderr:   stderr,
		done:     make(chan struct{}),
		killedCh: make(chan struct{}),
	}
	for _, pp := range p.pipes() {
		pp.addWriter()
	}
	return p
}

func (p *process) pipes() []*pipe {
	var out []*pipe
	for _, pp := range []*pipe{p.stdout, p.stderr} {
		if pp != nil {
			out = append(out, pp)
		}
	}
	return out
}

func (p *process) write(pp *pipe, data []byte) error {
	if pp == nil || len(data) == 0 {
		return nil
	}
	return pp.write(data, &p.killed)
}

func (p *process) exit(code uint32) {
	p.exitOnce.Do(func() {
		p.code.Store(code)
		for _, pp := range p.pipes() {
			pp.releaseWriter()
		}
		close(p.done)
	})
}

func (p *process) kill(code uint32) {
	p.killOnce.Do(func() {
		p.killed.Store(true)
		close(p.killedCh)
		for _, pp := range p.pipes() {
			pp.wake()
		}
	})
	p.exit(code)
}

func (p *process) exitCode() uint32 {
	return p.code.Load()
}
