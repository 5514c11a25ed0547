package radio

import (
	"encoding/binary"
	"hash/crc32"
)

// Frame is the length+CRC+payload framing used on the UART between host
// and module. Layout: Length(1) | CRC32C(4, little-endian) | Payload(L).
// Length counts only the payload bytes that follow the CRC, so the full
// on-wire size is 1 + 4 + L.
type Frame struct {
	Payload []byte
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// EncodeFrame serialises payload into on-wire bytes. Payload must be
// 1..MaxPayloadSize bytes; a longer payload is an error, not a silent
// truncation, since every caller in this package already knows its exact
// packet size.
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) == 0 || len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLong
	}

	out := make([]byte, FrameHeaderSize+len(payload))
	out[0] = byte(len(payload))
	crc := crc32.Checksum(payload, castagnoli)
	binary.LittleEndian.PutUint32(out[LengthFieldSize:FrameHeaderSize], crc)
	copy(out[FrameHeaderSize:], payload)
	return out, nil
}

// decodeOneFrame attempts to decode a single frame starting at the head of
// buf. It returns the payload and the number of bytes consumed on success.
// ok is false when buf does not begin with a structurally valid,
// CRC-matching frame; callers should then advance by one byte and retry
// (single-byte resync).
func decodeOneFrame(buf []byte) (payload []byte, consumed int, ok bool) {
	if len(buf) < FrameHeaderSize+1 {
		return nil, 0, false
	}

	l := int(buf[0])
	if l == 0 || l > MaxPayloadSize {
		return nil, 0, false
	}

	total := FrameHeaderSize + l
	if total > len(buf) {
		return nil, 0, false
	}

	wantCRC := binary.LittleEndian.Uint32(buf[LengthFieldSize:FrameHeaderSize])
	body := buf[FrameHeaderSize:total]
	if crc32.Checksum(body, castagnoli) != wantCRC {
		return nil, 0, false
	}

	out := make([]byte, l)
	copy(out, body)
	return out, total, true
}

// ScanFrames scans buf for valid frames, invoking onFrame for each payload
// found, in order. It returns the number of leading bytes of buf that were
// fully consumed (including any skipped junk bytes); the caller should
// compact buf by discarding that many bytes and keep the remainder for the
// next call.
//
// At each position it interprets the byte as a candidate length; an
// invalid candidate (0 or above MaxPayloadSize) is skipped by one byte.
// If not enough bytes have arrived yet to complete a valid candidate and
// no complete, CRC-matching frame starts later in buf, scanning pauses at
// that position without consuming it (so a later call, once more bytes
// have arrived, can re-attempt the same position); if such a frame does
// follow, the candidate is treated as junk and scanning resumes at that
// frame. A CRC mismatch advances exactly one byte and retries — this is
// what makes the parser self-synchronising.
func ScanFrames(buf []byte, onFrame func(payload []byte)) (consumed int) {
	pos := 0
	for pos < len(buf) {
		payload, n, ok := decodeOneFrame(buf[pos:])
		if !ok {
			if len(buf[pos:]) < FrameHeaderSize+1 {
				break
			}
			l := int(buf[pos])
			if l == 0 || l > MaxPayloadSize {
				pos++
				continue
			}
			if FrameHeaderSize+l > len(buf[pos:]) {
				next := pos + 1
				for ; next < len(buf); next++ {
					if _, _, found := decodeOneFrame(buf[next:]); found {
						break
					}
				}
				if next >= len(buf) {
					break
				}
				pos = next
				continue
			}
			// Valid length, bad CRC: resync by one byte.
			pos++
			continue
		}
		onFrame(payload)
		pos += n
	}
	return pos
}
