package kerneltest

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/tmc/wslgo/internal/kernel"
)

var (
	errTooManyHandles = errors.New("too many open handles")
	errNoData         = errors.New("the pipe is being closed")
	errKilled         = errors.New("process terminated")
	errIOIncomplete   = errors.New("overlapped I/O event is not in a signaled state")
)

// pipe is a bounded byte buffer with reference-counted writers. Reads
// return 0 once every writer reference is gone and the buffer is empty.
type pipe struct {
	mu           sync.Mutex
	cond         *sync.Cond
	buf          []byte
	capacity     int
	writers      int
	readerClosed bool
	pending      map[*kernel.Overlapped][]byte
}

func newPipe(capacity int) *pipe {
	p := &pipe{
		capacity: capacity,
		writers:  1,
		pending:  make(map[*kernel.Overlapped][]byte),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *pipe) startRead(ov *kernel.Overlapped, buf []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[ov] = buf
}

func (p *pipe) takeRead(ov *kernel.Overlapped) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf, ok := p.pending[ov]
	delete(p.pending, ov)
	return buf, ok
}

func (p *pipe) read(buf []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.buf) == 0 && p.writers > 0 {
		p.cond.Wait()
	}
	n := copy(buf, p.buf)
	p.buf = p.buf[n:]
	p.cond.Broadcast()
	return n
}

func (p *pipe) write(data []byte, killed *atomic.Bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(data) > 0 {
		for len(p.buf) >= p.capacity && !p.readerClosed && !killed.Load() {
			p.cond.Wait()
		}
		if p.readerClosed {
			return errNoData
		}
		if killed.Load() {
			return errKilled
		}
		n := min(p.capacity-len(p.buf), len(data))
		p.buf = append(p.buf, data[:n]...)
		data = data[n:]
		p.cond.Broadcast()
	}
	return nil
}

func (p *pipe) addWriter() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writers++
}

func (p *pipe) releaseWriter() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writers--
	p.cond.Broadcast()
}

func (p *pipe) closeReader() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readerClosed = true
	p.cond.Broadcast()
}

func (p *pipe) wake() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cond.Broadcast()
}
