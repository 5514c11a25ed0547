package transfer

import (
	"bytes"
	"testing"
	"time"

	"github.com/loratools/lorafile/fountain"
)

// recoverInner builds the inner payload for name and data, encodes enough
// blocks of it to let the receiver recover, submitting them directly to
// dispatch, and reports the final delivered ProgressEvent.
func recoverInner(t *testing.T, name string, data []byte) ProgressEvent {
	t.Helper()

	inner := BuildInnerPayload(name, data)
	hash := IntegrityHash(inner)

	enc, err := fountain.NewEncoder(inner)
	if err != nil {
		t.Fatalf("fountain.NewEncoder() error = %v", err)
	}

	var final ProgressEvent
	var got bool
	receiver := NewFileReceiver(newMockRadioDriver(), func(e ProgressEvent) {
		if e.Progress == 1.0 {
			final = e
			got = true
		}
	})

	info := EncodeInfo(InfoPacket{
		CompressedLength:   uint32(enc.CompressedLen()),
		IntegrityHash:      hash,
		CurrentBlockID:     0,
		DecompressedLength: uint32(len(inner)),
	})
	receiver.dispatch(info)

	for blockID := uint32(0); blockID < 5000 && !got; blockID++ {
		block, err := enc.Encode(blockID)
		if err != nil {
			t.Fatalf("Encode(%d) error = %v", blockID, err)
		}
		receiver.dispatch(EncodeData(byte(blockID), block))
	}

	if !got {
		t.Fatal("receiver never recovered the file")
	}
	return final
}

func TestFileReceiverRecoversTrivialTransfer(t *testing.T) {
	final := recoverInner(t, "hello.txt", []byte("HI"))
	if final.Name != "hello.txt" {
		t.Errorf("Name = %q, want %q", final.Name, "hello.txt")
	}
	if !bytes.Equal(final.Data, []byte("HI")) {
		t.Errorf("Data = %q, want %q", final.Data, "HI")
	}
}

func TestFileReceiverRecoversLargerPayload(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 50)
	final := recoverInner(t, "fox.txt", data)
	if !bytes.Equal(final.Data, data) {
		t.Error("recovered data does not match the original")
	}
}

func TestFileReceiverBuffersEarlyBlocksAndReplaysInOrder(t *testing.T) {
	inner := BuildInnerPayload("early.bin", []byte("xyz"))
	hash := IntegrityHash(inner)
	enc, err := fountain.NewEncoder(inner)
	if err != nil {
		t.Fatalf("fountain.NewEncoder() error = %v", err)
	}

	var final ProgressEvent
	var got bool
	receiver := NewFileReceiver(newMockRadioDriver(), func(e ProgressEvent) {
		if e.Progress == 1.0 {
			final = e
			got = true
		}
	})

	// Two data packets arrive before any info packet; they must be
	// buffered and replayed once the header is known.
	for blockID := uint32(0); blockID < 2; blockID++ {
		block, err := enc.Encode(blockID)
		if err != nil {
			t.Fatalf("Encode(%d) error = %v", blockID, err)
		}
		receiver.dispatch(EncodeData(byte(blockID), block))
	}
	if len(receiver.early) != 2 {
		t.Fatalf("len(early) = %d, want 2", len(receiver.early))
	}

	info := EncodeInfo(InfoPacket{
		CompressedLength:   uint32(enc.CompressedLen()),
		IntegrityHash:      hash,
		CurrentBlockID:     2,
		DecompressedLength: uint32(len(inner)),
	})
	receiver.dispatch(info)
	if receiver.early != nil {
		t.Error("early buffer was not drained after the info packet arrived")
	}

	for blockID := uint32(2); blockID < 5000 && !got; blockID++ {
		block, err := enc.Encode(blockID)
		if err != nil {
			t.Fatalf("Encode(%d) error = %v", blockID, err)
		}
		receiver.dispatch(EncodeData(byte(blockID), block))
	}
	if !got {
		t.Fatal("receiver never recovered the file after replaying early blocks")
	}
	if !bytes.Equal(final.Data, []byte("xyz")) {
		t.Errorf("Data = %q, want %q", final.Data, "xyz")
	}
}

func TestFileReceiverReplayDeliversOnlyOneFinalEvent(t *testing.T) {
	inner := BuildInnerPayload("replay.bin", []byte("xyz"))
	hash := IntegrityHash(inner)
	enc, err := fountain.NewEncoder(inner)
	if err != nil {
		t.Fatalf("fountain.NewEncoder() error = %v", err)
	}

	var finalCalls int
	receiver := NewFileReceiver(newMockRadioDriver(), func(e ProgressEvent) {
		if e.Progress == 1.0 {
			finalCalls++
		}
	})

	// Buffer far more data packets than this tiny payload needs to
	// recover, all before any info packet arrives, so the replay that
	// follows the info packet completes decoding partway through the
	// buffered backlog with blocks still left to replay.
	const earlyCount = 40
	for blockID := uint32(0); blockID < earlyCount; blockID++ {
		block, err := enc.Encode(blockID)
		if err != nil {
			t.Fatalf("Encode(%d) error = %v", blockID, err)
		}
		receiver.dispatch(EncodeData(byte(blockID), block))
	}
	if len(receiver.early) != earlyCount {
		t.Fatalf("len(early) = %d, want %d", len(receiver.early), earlyCount)
	}

	info := EncodeInfo(InfoPacket{
		CompressedLength:   uint32(enc.CompressedLen()),
		IntegrityHash:      hash,
		CurrentBlockID:     earlyCount,
		DecompressedLength: uint32(len(inner)),
	})
	receiver.dispatch(info)

	if finalCalls != 1 {
		t.Errorf("finalCalls = %d, want exactly 1 despite %d buffered blocks replaying past completion", finalCalls, earlyCount)
	}
}

func TestFileReceiverIdleResetClearsLatchAndState(t *testing.T) {
	receiver := NewFileReceiver(newMockRadioDriver(), nil)
	receiver.compressedLength = 123
	receiver.integrityHash = 0xff
	receiver.nextBlockID = 9
	receiver.early = []earlyBlock{{truncatedID: 1, data: []byte{1}}}
	receiver.transferComplete = true

	oldNow := now
	defer func() { now = oldNow }()

	base := time.Unix(1000, 0)
	receiver.lastReceiveTime = base
	now = func() time.Time { return base.Add(idleTimeout - time.Second) }
	receiver.checkIdleReset()
	if receiver.compressedLength == 0 {
		t.Fatal("checkIdleReset fired before idleTimeout elapsed")
	}

	now = func() time.Time { return base.Add(idleTimeout + time.Second) }
	receiver.checkIdleReset()

	if receiver.compressedLength != 0 || receiver.integrityHash != 0 || receiver.nextBlockID != 0 {
		t.Error("checkIdleReset did not clear header state")
	}
	if receiver.early != nil {
		t.Error("checkIdleReset did not clear the early buffer")
	}
	if receiver.transferComplete {
		t.Error("checkIdleReset did not clear the completion latch")
	}
}

func TestFileReceiverRejectsIntegrityMismatch(t *testing.T) {
	inner := BuildInnerPayload("bad.bin", []byte("zzz"))
	enc, err := fountain.NewEncoder(inner)
	if err != nil {
		t.Fatalf("fountain.NewEncoder() error = %v", err)
	}

	var finalCalls int
	receiver := NewFileReceiver(newMockRadioDriver(), func(e ProgressEvent) {
		if e.Progress == 1.0 {
			finalCalls++
		}
	})

	info := EncodeInfo(InfoPacket{
		CompressedLength:   uint32(enc.CompressedLen()),
		IntegrityHash:      0xbadc0de, // deliberately wrong
		CurrentBlockID:     0,
		DecompressedLength: uint32(len(inner)),
	})
	receiver.dispatch(info)

	for blockID := uint32(0); blockID < 5000; blockID++ {
		block, err := enc.Encode(blockID)
		if err != nil {
			t.Fatalf("Encode(%d) error = %v", blockID, err)
		}
		receiver.dispatch(EncodeData(byte(blockID), block))
		if receiver.compressedLength == 0 {
			break
		}
	}

	if finalCalls != 0 {
		t.Error("receiver delivered a file despite a bad integrity hash")
	}
}
