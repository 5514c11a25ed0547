package fountain

import "errors"

var (
	errShortRecovery              = errors.New("fountain: recovered buffer shorter than expected compressed length")
	errDecompressedLengthMismatch = errors.New("fountain: decompressed length did not match expected length")
	errEncodeFailed               = errors.New("fountain: codec returned no block for the requested id")
)
