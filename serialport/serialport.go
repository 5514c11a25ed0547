// Package serialport is a thin wrapper over a host UART device.
package serialport

import (
	"errors"
	"sync"
	"time"

	"go.bug.st/serial"
)

// pollTimeout bounds every underlying Read call so BytesAvailable and
// ReadUpTo never block the caller for long; callers that need to wait
// longer (e.g. the configuration protocol) loop with their own deadline.
const pollTimeout = 10 * time.Millisecond

// Port is a raw byte pipe to a named serial device.
type Port interface {
	Close() error
	FlushInput() error
	FlushOutput() error
	Write(buf []byte) (bool, error)
	BytesAvailable() (int, error)
	ReadUpTo(buf []byte) (int, error)
	OutputQueueBytes() (int, error)
}

// SerialPort implements Port over go.bug.st/serial, opened at a fixed baud
// rate in 8-N-1 raw mode.
type SerialPort struct {
	mu       sync.Mutex
	port     serial.Port
	device   string
	baud     int
	rxQueue  []byte
	txQueued int
}

// Open opens device at baud, 8 data bits, no parity, one stop bit.
func Open(device string, baud int) (*SerialPort, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(pollTimeout); err != nil {
		p.Close()
		return nil, err
	}

	return &SerialPort{port: p, device: device, baud: baud}, nil
}

func (s *SerialPort) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}

func (s *SerialPort) FlushInput() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rxQueue = s.rxQueue[:0]
	return s.port.ResetInputBuffer()
}

func (s *SerialPort) FlushOutput() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txQueued = 0
	return s.port.ResetOutputBuffer()
}

// Write writes the full buffer in one call; returning false (without an
// error) signals a short write, which callers should treat as a failure.
func (s *SerialPort) Write(buf []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.port.Write(buf)
	if err != nil {
		return false, err
	}
	s.txQueued += n
	return n == len(buf), nil
}

// fillQueue performs one short, bounded read and appends whatever arrived
// to the internal queue. It never blocks for longer than pollTimeout.
func (s *SerialPort) fillQueue() error {
	buf := make([]byte, 4096)
	n, err := s.port.Read(buf)
	if err != nil {
		return err
	}
	if n > 0 {
		s.rxQueue = append(s.rxQueue, buf[:n]...)
	}
	return nil
}

func (s *SerialPort) BytesAvailable() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fillQueue(); err != nil {
		return 0, err
	}
	return len(s.rxQueue), nil
}

// ReadUpTo reads at most len(buf) bytes, returning the number actually read.
// It may return 0 with a nil error when nothing is currently available.
func (s *SerialPort) ReadUpTo(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fillQueue(); err != nil {
		return 0, err
	}

	n := len(buf)
	if n > len(s.rxQueue) {
		n = len(s.rxQueue)
	}
	copy(buf, s.rxQueue[:n])
	s.rxQueue = s.rxQueue[n:]
	return n, nil
}

// OutputQueueBytes reports bytes handed to Write that have not yet been
// observed to flush. go.bug.st/serial does not expose a true OS send-queue
// depth across platforms, so this is a best-effort approximation: it is
// reset to zero by FlushOutput and otherwise only grows.
func (s *SerialPort) OutputQueueBytes() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txQueued, nil
}

var errShortWrite = errors.New("serialport: short write")

// WriteFull writes buf and returns errShortWrite if not all bytes were
// accepted, matching the "success only if full length accepted" contract.
func WriteFull(p Port, buf []byte) error {
	ok, err := p.Write(buf)
	if err != nil {
		return err
	}
	if !ok {
		return errShortWrite
	}
	return nil
}
