// Package radio owns the UART and the two GPIO mode-select lines of a
// LoRa UART module and implements the Config/Transmit state machine,
// configuration protocol, ambient RSSI scan, and self-synchronising
// host-frame parsing described by the data model.
package radio

import (
	"sync"
	"time"

	"github.com/loratools/lorafile/serialport"
)

// Mode is the module's persistent state: Config (registers reachable) or
// Transmit (packets flow).
type Mode int

const (
	ModeConfig Mode = iota
	ModeTransmit
)

// ModePins is re-exported so callers only need to import radio/gpio for
// the concrete implementation.
type ModePins interface {
	SetM0(high bool) error
	SetM1(high bool) error
}

// PortOpener opens (or reopens) the underlying serial device. The driver
// does not call it at construction; it calls it on every mode transition,
// since a transition closes and reopens the port around the M1 toggle.
type PortOpener func() (serialport.Port, error)

// Driver owns the UART and the M0/M1 GPIO pins exclusively; it must never
// be accessed from more than one goroutine concurrently (the serial port
// is not re-entrant).
type Driver struct {
	mu sync.Mutex

	open PortOpener
	pins ModePins
	port serialport.Port

	mode Mode
	img  image

	channel        uint8
	txAddress      uint16
	currentAddress uint16 // valid only when addressKnown is true
	addressKnown   bool   // survives mode transitions; the module keeps its address register across an M1 toggle

	rxBuf    []byte
	lastScan AmbientScan
}

// New constructs a driver bound to the given port opener and GPIO pins,
// with the given transmit address and operating channel. It does not talk
// to the hardware; call Initialize for that.
func New(open PortOpener, pins ModePins, address uint16, channel uint8) *Driver {
	return NewWithOptions(open, pins, address, channel, false)
}

// NewWithOptions is New with control over the option-byte bits beyond
// RSSI-on-receive, which is always enabled. lbt sets the listen-before-talk
// bit, making the module sense the channel before every transmit.
func NewWithOptions(open PortOpener, pins ModePins, address uint16, channel uint8, lbt bool) *Driver {
	return &Driver{
		open:      open,
		pins:      pins,
		img:       defaultImage(address, channel, lbt),
		channel:   channel,
		txAddress: address,
		rxBuf:     make([]byte, 0, minReceiveBuf),
	}
}

// Initialize enters Config mode, writes the full register image, reads it
// back, and runs the ambient RSSI scan. Any failure here is fatal.
func (d *Driver) Initialize() (AmbientScan, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.channel > MaxChannel {
		return AmbientScan{}, ErrInvalidChannel
	}

	if err := d.ensureConfig(); err != nil {
		return AmbientScan{}, err
	}
	if err := writeRegisters(d.port, 0, d.img[:]); err != nil {
		return AmbientScan{}, err
	}
	d.currentAddress = d.txAddress
	d.addressKnown = true

	scan, err := d.scanAmbient()
	if err != nil {
		return AmbientScan{}, err
	}
	return scan, nil
}

// LastScan returns the result of the most recent ambient RSSI scan.
func (d *Driver) LastScan() AmbientScan {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastScan
}

// ensureConfig idempotently transitions into Config mode: close the port,
// set M1 high, wait for the module to settle, reopen the port.
func (d *Driver) ensureConfig() error {
	if d.mode == ModeConfig && d.port != nil {
		return nil
	}
	return d.transition(ModeConfig, true)
}

// ensureTransmit idempotently transitions into Transmit mode (M1 low).
func (d *Driver) ensureTransmit() error {
	if d.mode == ModeTransmit && d.port != nil {
		return nil
	}
	return d.transition(ModeTransmit, false)
}

func (d *Driver) transition(mode Mode, m1High bool) error {
	if d.port != nil {
		d.port.Close()
		d.port = nil
	}
	if err := d.pins.SetM0(false); err != nil {
		return ErrGPIOInit
	}
	if err := d.pins.SetM1(m1High); err != nil {
		return ErrGPIOInit
	}

	time.Sleep(modeSwitchSettleDelay)

	port, err := d.open()
	if err != nil {
		return err
	}
	d.port = port
	d.mode = mode
	d.drain()
	return nil
}

// drain repeatedly reads-and-discards until no bytes are available, and
// resets the frame parse buffer. This is the only blocking-free way to
// recover from byte loss mid-frame.
func (d *Driver) drain() {
	d.rxBuf = d.rxBuf[:0]
	if d.port == nil {
		return
	}
	buf := make([]byte, 256)
	for {
		avail, err := d.port.BytesAvailable()
		if err != nil || avail == 0 {
			return
		}
		n, err := d.port.ReadUpTo(buf)
		if err != nil || n == 0 {
			return
		}
	}
}

// setAddress lazily switches the module's programmed address, writing the
// two address registers only when the requested address differs from the
// one currently programmed.
func (d *Driver) setAddress(addr uint16) error {
	if d.addressKnown && d.currentAddress == addr {
		return nil
	}
	if err := d.ensureConfig(); err != nil {
		return err
	}
	data := []byte{byte(addr >> 8), byte(addr)}
	if err := writeRegisters(d.port, RegAddrHigh, data); err != nil {
		return err
	}
	d.img[RegAddrHigh] = data[0]
	d.img[RegAddrLow] = data[1]
	d.currentAddress = addr
	d.addressKnown = true
	return nil
}

// Send frames payload and writes it to the UART in one call, switching the
// module to the configured transmit address and Transmit mode first.
func (d *Driver) Send(payload []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.setAddress(d.txAddress); err != nil {
		return err
	}
	if err := d.ensureTransmit(); err != nil {
		return err
	}

	frame, err := EncodeFrame(payload)
	if err != nil {
		return err
	}
	return serialport.WriteFull(d.port, frame)
}

// minReceiveBuf is the smallest persistent buffer size the parser wants
// so it can always see a full 235-byte data frame without starving.
const minReceiveBuf = 240

// Receive switches to monitor address and Transmit mode, pulls whatever
// bytes are waiting, scans for frames, and invokes onPayload for each one
// found, in wire-arrival order. onPayload must not retain the slice past
// the call.
func (d *Driver) Receive(onPayload func(payload []byte)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.setAddress(MonitorAddress); err != nil {
		return err
	}
	if err := d.ensureTransmit(); err != nil {
		return err
	}

	avail, err := d.port.BytesAvailable()
	if err != nil {
		return err
	}
	if avail > 0 {
		buf := make([]byte, avail)
		n, err := d.port.ReadUpTo(buf)
		if err != nil {
			return err
		}
		d.rxBuf = append(d.rxBuf, buf[:n]...)
	}

	consumed := ScanFrames(d.rxBuf, onPayload)
	d.rxBuf = append(d.rxBuf[:0], d.rxBuf[consumed:]...)
	return nil
}

// Close tears down the driver's port.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.port == nil {
		return nil
	}
	err := d.port.Close()
	d.port = nil
	return err
}
