// Package stub provides an in-memory serialport.Port for host-side tests,
// generalised from a packet-level fake to a byte-stream fake.
package stub

import (
	"sync"

	"github.com/loratools/lorafile/serialport"
)

// Port is a fake serialport.Port backed by plain byte queues instead of an
// OS device.
type Port struct {
	mu      sync.Mutex
	rx      []byte
	written [][]byte
	closed  bool
}

func New() *Port { return &Port{} }

var _ serialport.Port = (*Port)(nil)

func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *Port) FlushInput() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rx = p.rx[:0]
	return nil
}

func (p *Port) FlushOutput() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written = p.written[:0]
	return nil
}

func (p *Port) Write(buf []byte) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]byte, len(buf))
	copy(cp, buf)
	p.written = append(p.written, cp)
	return true, nil
}

func (p *Port) BytesAvailable() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rx), nil
}

func (p *Port) ReadUpTo(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(buf)
	if n > len(p.rx) {
		n = len(p.rx)
	}
	copy(buf, p.rx[:n])
	p.rx = p.rx[n:]
	return n, nil
}

func (p *Port) OutputQueueBytes() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, w := range p.written {
		total += len(w)
	}
	return total, nil
}

// InjectRx appends bytes as if they had arrived on the wire.
func (p *Port) InjectRx(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rx = append(p.rx, data...)
}

// Written returns a copy of everything handed to Write so far, one entry
// per call.
func (p *Port) Written() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.written))
	for i, w := range p.written {
		cp := make([]byte, len(w))
		copy(cp, w)
		out[i] = cp
	}
	return out
}

func (p *Port) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
