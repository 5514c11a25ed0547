package transfer

import "errors"

var (
	ErrFileTooLarge      = errors.New("transfer: file too large for the fountain encoder")
	ErrIntegrityMismatch = errors.New("transfer: decompressed payload failed integrity check")
	ErrLengthMismatch    = errors.New("transfer: decompressed length did not match the info packet")
	ErrMalformedInner    = errors.New("transfer: inner payload header malformed")
)
