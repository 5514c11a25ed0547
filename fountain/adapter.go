// Package fountain wraps a rateless fountain codec and a compression
// library with this project's blocking, block-size, and block-identifier
// conventions.
package fountain

import (
	gofountain "github.com/google/gofountain"
	"github.com/klauspost/compress/zstd"
)

// BlockSize is the fixed size of every encoded block on the wire.
const BlockSize = 234

// padBlocks is the number of extra blocks appended to the compressed
// payload before encoding, working around the underlying codec's
// minimum-two-blocks restriction; the receiver trims the same number of
// trailing blocks after recovery.
const padBlocks = 1

// symbolAlignmentSize is gofountain's Raptor codec symbol-alignment
// parameter; 1 means every byte is its own alignment unit, since this
// project has no wider word-size requirement on the source data.
const symbolAlignmentSize = 1

// Encoder produces an unbounded sequence of BlockSize-byte blocks indexed
// by a 32-bit id from a padded, compressed buffer.
type Encoder struct {
	codec  gofountain.Codec
	padded []byte
	rawLen int
}

// NewEncoder compresses src and pads it by one block length before
// constructing the underlying rateless encoder.
func NewEncoder(src []byte) (*Encoder, error) {
	compressed, err := Compress(src)
	if err != nil {
		return nil, err
	}

	padded := make([]byte, len(compressed)+padBlocks*BlockSize)
	copy(padded, compressed)

	codec := gofountain.NewRaptorCodec(blockCount(len(padded)), symbolAlignmentSize)

	return &Encoder{codec: codec, padded: padded, rawLen: len(compressed)}, nil
}

// CompressedLen is the length of the compressed (pre-pad) payload; this is
// the value carried in the info packet.
func (e *Encoder) CompressedLen() int { return e.rawLen }

// Encode produces the block for the given 32-bit logical id.
func (e *Encoder) Encode(blockID uint32) ([]byte, error) {
	out := gofountain.EncodeLTBlocks(e.padded, []int64{int64(blockID)}, e.codec)
	if len(out) == 0 {
		return nil, errEncodeFailed
	}
	return out[0].Data, nil
}

// Decoder accumulates submitted blocks until enough have arrived to
// recover the original compressed buffer.
type Decoder struct {
	decoder   gofountain.Decoder
	done      bool
	recovered []byte
}

// Submission is the outcome of submitting one block to the decoder.
type Submission int

const (
	SubmissionNeedMore Submission = iota
	SubmissionSuccess
	SubmissionError
)

// NewDecoder initialises a decoder for a compressed buffer of
// compressedLen bytes (before the sender's trailing pad block).
func NewDecoder(compressedLen int) (*Decoder, error) {
	padded := compressedLen + padBlocks*BlockSize
	codec := gofountain.NewRaptorCodec(blockCount(padded), symbolAlignmentSize)
	return &Decoder{decoder: codec.NewDecoder(padded)}, nil
}

// Submit hands one (id, block) pair to the decoder in any order.
func (d *Decoder) Submit(blockID uint32, block []byte) Submission {
	if d.done {
		return SubmissionSuccess
	}
	if len(block) != BlockSize {
		return SubmissionError
	}

	complete := d.decoder.AddBlocks([]gofountain.LTBlock{{BlockCode: int64(blockID), Data: block}})
	if !complete {
		return SubmissionNeedMore
	}

	d.done = true
	d.recovered = d.decoder.Decode()
	return SubmissionSuccess
}

// Recover returns the fully recovered, unpadded-but-still-compressed buffer
// (i.e. compressedLen bytes, with the trailing pad block trimmed).
func (d *Decoder) Recover(compressedLen int) ([]byte, error) {
	if !d.done || len(d.recovered) < compressedLen {
		return nil, errShortRecovery
	}
	out := make([]byte, compressedLen)
	copy(out, d.recovered[:compressedLen])
	return out, nil
}

func blockCount(totalLen int) int {
	n := totalLen / BlockSize
	if totalLen%BlockSize != 0 {
		n++
	}
	return n
}

// zstdLevel corresponds to the codec contract's level=1 (fastest).
var zstdLevel = zstd.SpeedFastest

// Compress compresses src with the fastest zstd level.
func Compress(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdLevel))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, make([]byte, 0, len(src))), nil
}

// Decompress decompresses src, expecting exactly wantLen bytes of output.
func Decompress(src []byte, wantLen int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	out, err := dec.DecodeAll(src, make([]byte, 0, wantLen))
	if err != nil {
		return nil, err
	}
	if len(out) != wantLen {
		return nil, errDecompressedLengthMismatch
	}
	return out, nil
}

// ExpandBlockID reconstructs the 32-bit logical block id nearest to last
// whose low 8 bits equal low8, resolving ties upward. This is the only
// nontrivial numeric logic in the adapter.
func ExpandBlockID(last uint32, low8 byte) uint32 {
	lastLow := byte(last)
	delta := int32(low8) - int32(lastLow)

	// delta is the signed distance in the truncated (mod 256) domain,
	// normalised to (-128, 128].
	if delta > 128 {
		delta -= 256
	} else if delta <= -128 {
		delta += 256
	}

	return uint32(int64(last) + int64(delta))
}
