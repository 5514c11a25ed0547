package transfer

import "encoding/binary"

// Wire sizes for the two packet kinds. Dispatch between them is a tagged
// variant discriminated on payload length, rather than duck-typing a
// header byte: anything else is a "bogon" and is dropped with a single
// warn log line by the caller.
const (
	InfoPayloadSize = 16
	DataPayloadSize = 1 + BlockDataSize
)

// PacketKind identifies which of the two packet shapes a payload matches.
type PacketKind int

const (
	KindBogon PacketKind = iota
	KindInfo
	KindData
)

// Classify dispatches on payload length alone.
func Classify(payload []byte) PacketKind {
	switch len(payload) {
	case InfoPayloadSize:
		return KindInfo
	case DataPayloadSize:
		return KindData
	default:
		return KindBogon
	}
}

// InfoPacket is the 16-byte metadata packet broadcast periodically by the
// sender.
type InfoPacket struct {
	CompressedLength   uint32
	IntegrityHash      uint32
	CurrentBlockID     uint32
	DecompressedLength uint32
}

func EncodeInfo(p InfoPacket) []byte {
	out := make([]byte, InfoPayloadSize)
	binary.LittleEndian.PutUint32(out[0:4], p.CompressedLength)
	binary.LittleEndian.PutUint32(out[4:8], p.IntegrityHash)
	binary.LittleEndian.PutUint32(out[8:12], p.CurrentBlockID)
	binary.LittleEndian.PutUint32(out[12:16], p.DecompressedLength)
	return out
}

// DecodeInfo decodes a 16-byte info payload. ok is false if payload is
// not exactly InfoPayloadSize bytes.
func DecodeInfo(payload []byte) (InfoPacket, bool) {
	if len(payload) != InfoPayloadSize {
		return InfoPacket{}, false
	}
	return InfoPacket{
		CompressedLength:   binary.LittleEndian.Uint32(payload[0:4]),
		IntegrityHash:      binary.LittleEndian.Uint32(payload[4:8]),
		CurrentBlockID:     binary.LittleEndian.Uint32(payload[8:12]),
		DecompressedLength: binary.LittleEndian.Uint32(payload[12:16]),
	}, true
}

// EncodeData frames one encoded block behind its truncated 8-bit id.
func EncodeData(truncatedID byte, block []byte) []byte {
	out := make([]byte, 1+len(block))
	out[0] = truncatedID
	copy(out[1:], block)
	return out
}

// DecodeData splits a data payload into its truncated id and block bytes.
// The returned slice aliases payload; callers that buffer it must copy.
func DecodeData(payload []byte) (truncatedID byte, block []byte, ok bool) {
	if len(payload) != DataPayloadSize {
		return 0, nil, false
	}
	return payload[0], payload[1:], true
}
