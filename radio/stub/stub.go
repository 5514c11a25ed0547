// Package stub provides an in-memory gpio.ModePins for host-side tests.
package stub

import "sync"

// Pins records every M0/M1 write without touching real hardware.
type Pins struct {
	mu     sync.Mutex
	m0, m1 bool
}

func New() *Pins { return &Pins{} }

func (p *Pins) SetM0(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m0 = high
	return nil
}

func (p *Pins) SetM1(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m1 = high
	return nil
}

func (p *Pins) M0() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.m0
}

func (p *Pins) M1() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.m1
}
