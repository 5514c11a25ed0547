// Package gpio drives the two mode-select lines (M0, M1) of a LoRa UART
// module through periph.io.
package gpio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ModePins is the minimal interface the radio driver needs to switch the
// module between Config and Transmit mode. M0 is held at Low for the
// lifetime of the driver; only M1 toggles.
type ModePins interface {
	SetM0(high bool) error
	SetM1(high bool) error
}

// Pins wraps two periph.io gpio.PinIO handles.
type Pins struct {
	m0 gpio.PinIO
	m1 gpio.PinIO
}

// Open initialises the periph.io host and resolves the named M0/M1 pins
// (e.g. "GPIO17", "GPIO27").
func Open(m0Name, m1Name string) (*Pins, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: failed to initialise periph.io host: %w", err)
	}

	m0 := gpioreg.ByName(m0Name)
	if m0 == nil {
		return nil, fmt.Errorf("gpio: failed to open M0 pin %s", m0Name)
	}
	m1 := gpioreg.ByName(m1Name)
	if m1 == nil {
		return nil, fmt.Errorf("gpio: failed to open M1 pin %s", m1Name)
	}

	p := &Pins{m0: m0, m1: m1}
	if err := p.SetM0(false); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pins) SetM0(high bool) error {
	return p.m0.Out(level(high))
}

func (p *Pins) SetM1(high bool) error {
	return p.m1.Out(level(high))
}

func level(high bool) gpio.Level {
	if high {
		return gpio.High
	}
	return gpio.Low
}
