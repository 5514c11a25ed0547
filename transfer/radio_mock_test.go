package transfer

import "sync"

// mockRadioDriver implements RadioDriver without touching real hardware.
// Receive delivers whatever has been queued via InjectRx since the last
// call and then returns immediately, matching the non-blocking poll
// semantics of radio.Driver.Receive.
type mockRadioDriver struct {
	mu     sync.Mutex
	txLog  [][]byte
	rxData [][]byte
	closed bool
}

func newMockRadioDriver() *mockRadioDriver {
	return &mockRadioDriver{}
}

func (d *mockRadioDriver) Send(payload []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	d.txLog = append(d.txLog, cp)
	return nil
}

func (d *mockRadioDriver) Receive(onPayload func(payload []byte)) error {
	d.mu.Lock()
	pending := d.rxData
	d.rxData = nil
	d.mu.Unlock()

	for _, p := range pending {
		onPayload(p)
	}
	return nil
}

func (d *mockRadioDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *mockRadioDriver) InjectRx(payload []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	d.rxData = append(d.rxData, cp)
}

func (d *mockRadioDriver) TxLog() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.txLog))
	copy(out, d.txLog)
	return out
}

func (d *mockRadioDriver) ClearTxLog() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.txLog = d.txLog[:0]
}

func (d *mockRadioDriver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
