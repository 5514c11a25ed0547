package radio

import "time"

// Host frame sizing. Layout: Length(1) | CRC32C(4) | Payload(1..235).
const (
	LengthFieldSize = 1
	CRCSize         = 4
	FrameHeaderSize = LengthFieldSize + CRCSize

	// MaxPayloadSize is the largest payload the module will carry per
	// on-air packet; L > this indicates desynchronisation.
	MaxPayloadSize = 235
)

// Configuration register image offsets, within the 9-byte image described
// in the data model.
const (
	RegAddrHigh  = 0
	RegAddrLow   = 1
	RegNetworkID = 2
	RegUARTAir   = 3
	RegPowerOpts = 4
	RegChannel   = 5
	RegOptions   = 6
	RegKeyHigh   = 7
	RegKeyLow    = 8

	ConfigImageSize = 9
)

// Option byte bits.
const (
	OptRSSIOnReceive = 1 << 5
	OptLBTEnable     = 1 << 4
	OptWORMode       = 1 << 3
)

// MonitorAddress receives all traffic; the module silently drops any
// transmit attempted while addressed here.
const MonitorAddress uint16 = 0xFFFF

// RendezvousChannel is the default operating channel used by both sides
// before any channel negotiation.
const RendezvousChannel uint8 = 42

// MaxChannel is the highest channel number the module's frequency
// synthesiser accepts; channels above this fall outside the 915 MHz band
// plan the register image was designed for.
const MaxChannel uint8 = 83

// ambientProbeChannels is the fixed set of channels scanned for ambient
// noise.
var ambientProbeChannels = [4]uint8{16, 32, 48, 64}

const maxAmbientSamples = 10

// Mode transition timing.
const (
	modeSwitchSettleDelay = 100 * time.Millisecond
)

// Configuration command bytes.
const (
	cmdWriteHeader = 0xC2
	cmdWriteEcho   = 0xC1
)

var rssiQueryCommand = [6]byte{0xC0, 0xC1, 0xC2, 0xC3, 0x00, 0x01}

// configTimeout bounds how long the driver waits for a configuration
// command echo.
const configTimeout = 5 * time.Second
