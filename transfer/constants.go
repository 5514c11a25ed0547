package transfer

import "time"

// BlockDataSize is the fixed fountain-coded block size, the same value as
// the codec adapter's fountain.BlockSize, since the engine's packet
// shapes are defined in terms of it.
const BlockDataSize = 234

const (
	// infoEveryNBlocks: an info packet precedes the next data packet
	// whenever the block id is a multiple of this, including id 0.
	infoEveryNBlocks = 32

	// pacingInterval is the fixed sleep between packet emissions on the
	// sender.
	pacingInterval = 100 * time.Millisecond

	// receivePollInterval is the sender-side-equivalent sleep on the
	// receiver's background loop, between driver.Receive polls.
	receivePollInterval = 4 * time.Millisecond

	// idleTimeout resets an in-flight transfer after this much silence.
	idleTimeout = 20 * time.Second
)
