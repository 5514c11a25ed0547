package radio

import "errors"

// Sentinel errors following the taxonomy: ConfigError is fatal to
// Initialize, IoError terminates the owning transfer, ProtocolError is
// swallowed inside the receive parser (single-byte resync).
var (
	ErrConfigMismatch = errors.New("radio: configuration write/readback mismatch")
	ErrConfigEcho     = errors.New("radio: unexpected configuration echo header")
	ErrRSSIScan       = errors.New("radio: ambient RSSI scan failed")
	ErrInvalidChannel = errors.New("radio: invalid channel")
	ErrPayloadTooLong = errors.New("radio: payload exceeds maximum frame size")
	ErrGPIOInit       = errors.New("radio: GPIO initialisation failed")

	errConfigTimeout = errors.New("radio: timed out waiting for configuration response")
)
