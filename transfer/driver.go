package transfer

// RadioDriver is the subset of the radio driver the transfer engine
// needs. Depending on this narrow interface (rather than the concrete
// driver type) lets sender and receiver tests run against an in-memory
// fake instead of real hardware.
type RadioDriver interface {
	Send(payload []byte) error
	Receive(onPayload func(payload []byte)) error
	Close() error
}
