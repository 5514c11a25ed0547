package transfer

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loratools/lorafile/fountain"
)

// ProgressEvent is delivered to the receiver's callback in arrival order,
// on the receiver's background goroutine. Consumers must not block it.
type ProgressEvent struct {
	Progress float64
	Name     string
	Data     []byte
}

// earlyBlock is a data packet buffered before any info packet has been
// seen, kept verbatim and replayed with its captured length once the
// decoder is initialised.
type earlyBlock struct {
	truncatedID byte
	data        []byte
}

// FileReceiver runs the receiver loop: it buffers data packets until
// metadata arrives, decodes, recovers, decompresses, validates, and
// delivers the completed file through onProgress. It holds at most one
// in-flight file.
type FileReceiver struct {
	driver     RadioDriver
	onProgress func(ProgressEvent)

	compressedLength   uint32
	decompressedLength uint32
	integrityHash      uint32
	nextBlockID        uint32
	totalBlockCount    uint32
	receivedBlockCount uint32

	decoder          *fountain.Decoder
	early            []earlyBlock
	transferComplete bool
	lastReceiveTime  time.Time

	terminate atomic.Bool
	wg        sync.WaitGroup
	mu        sync.Mutex
	started   bool
}

// NewFileReceiver constructs a receiver bound to driver. onProgress may
// be nil, in which case progress events are dropped.
func NewFileReceiver(driver RadioDriver, onProgress func(ProgressEvent)) *FileReceiver {
	if onProgress == nil {
		onProgress = func(ProgressEvent) {}
	}
	return &FileReceiver{
		driver:          driver,
		onProgress:      onProgress,
		lastReceiveTime: now(),
	}
}

func (r *FileReceiver) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.wg.Add(1)
	go r.run()
}

func (r *FileReceiver) run() {
	defer r.wg.Done()

	for !r.terminate.Load() {
		if err := r.driver.Receive(r.dispatch); err != nil {
			log.Printf("[receiver] receive failed: %v", err)
			r.terminate.Store(true)
			return
		}
		r.checkIdleReset()
		sleep(receivePollInterval)
	}
}

func (r *FileReceiver) Terminate() {
	r.terminate.Store(true)
}

// Stopped reports whether the background loop has been asked to exit, or
// has already exited on its own after a receive error.
func (r *FileReceiver) Stopped() bool {
	return r.terminate.Load()
}

// Shutdown is idempotent: set the termination flag, join the background
// goroutine, then close the radio driver.
func (r *FileReceiver) Shutdown() error {
	r.terminate.Store(true)
	r.wg.Wait()
	return r.driver.Close()
}

// dispatch is invoked by the radio driver for every valid host frame, in
// wire-arrival order. It must not retain payload past the call.
func (r *FileReceiver) dispatch(payload []byte) {
	r.lastReceiveTime = now()

	switch Classify(payload) {
	case KindInfo:
		info, ok := DecodeInfo(payload)
		if !ok {
			return
		}
		r.onInfoPacket(info)
	case KindData:
		truncatedID, block, ok := DecodeData(payload)
		if !ok {
			return
		}
		r.onDataPacket(truncatedID, block)
	default:
		log.Printf("[receiver] dropping bogon packet of length %d", len(payload))
	}
}

func (r *FileReceiver) onInfoPacket(info InfoPacket) {
	if info.CompressedLength == 0 || info.DecompressedLength < 2 {
		return
	}

	r.nextBlockID = info.CurrentBlockID

	if info.CompressedLength == r.compressedLength &&
		info.IntegrityHash == r.integrityHash &&
		info.DecompressedLength == r.decompressedLength {
		return
	}

	dec, err := fountain.NewDecoder(int(info.CompressedLength))
	if err != nil {
		return
	}

	r.transferComplete = false
	r.decoder = dec
	r.compressedLength = info.CompressedLength
	r.integrityHash = info.IntegrityHash
	r.decompressedLength = info.DecompressedLength
	r.totalBlockCount = blockCount(r.compressedLength)
	r.receivedBlockCount = 0

	r.onProgress(ProgressEvent{Progress: 0.0})

	buffered := r.early
	r.early = nil
	for _, b := range buffered {
		r.onBlock(b.truncatedID, b.data)
	}
}

func (r *FileReceiver) onDataPacket(truncatedID byte, block []byte) {
	if r.transferComplete {
		return
	}
	if r.compressedLength == 0 {
		cp := make([]byte, len(block))
		copy(cp, block)
		r.early = append(r.early, earlyBlock{truncatedID: truncatedID, data: cp})
		return
	}
	r.onBlock(truncatedID, block)
}

// onBlock expands the truncated id against the last full id, submits the
// block under that expanded id (spec's Open Question (b): the decoder
// must see the same id the sender encoded the block under), and advances
// progress or completion state accordingly.
func (r *FileReceiver) onBlock(truncatedID byte, block []byte) {
	if r.transferComplete {
		return
	}

	r.nextBlockID = fountain.ExpandBlockID(r.nextBlockID, truncatedID)

	switch r.decoder.Submit(r.nextBlockID, block) {
	case fountain.SubmissionNeedMore:
		r.receivedBlockCount++
		if r.totalBlockCount > 0 {
			progress := float64(r.receivedBlockCount) / float64(r.totalBlockCount)
			if progress >= 1.0 {
				// The decoder can need more blocks than the source count;
				// 1.0 is reserved for the delivery event in finish.
				progress = 0.99
			}
			r.onProgress(ProgressEvent{Progress: progress})
		}
	case fountain.SubmissionSuccess:
		r.transferComplete = true
		r.finish()
	case fountain.SubmissionError:
		r.compressedLength = 0
	}
}

func (r *FileReceiver) finish() {
	compressed, err := r.decoder.Recover(int(r.compressedLength))
	if err != nil {
		r.compressedLength = 0
		return
	}

	decompressed, err := fountain.Decompress(compressed, int(r.decompressedLength))
	if err != nil {
		r.compressedLength = 0
		return
	}
	if uint32(len(decompressed)) != r.decompressedLength {
		log.Printf("[receiver] discarding transfer: %v", ErrLengthMismatch)
		r.compressedLength = 0
		return
	}

	if IntegrityHash(decompressed) != r.integrityHash {
		log.Printf("[receiver] discarding transfer: %v", ErrIntegrityMismatch)
		r.compressedLength = 0
		return
	}

	name, data, ok := ParseInnerPayload(decompressed)
	if !ok {
		log.Printf("[receiver] discarding transfer: %v", ErrMalformedInner)
		r.compressedLength = 0
		return
	}

	r.onProgress(ProgressEvent{Progress: 1.0, Name: name, Data: data})
}

// checkIdleReset resets all per-transfer state after idleTimeout of
// silence, clearing the post-transfer latch so a fresh transfer with
// different header values can begin without a process restart.
func (r *FileReceiver) checkIdleReset() {
	if r.compressedLength == 0 {
		return
	}
	if now().Sub(r.lastReceiveTime) <= idleTimeout {
		return
	}

	r.compressedLength = 0
	r.integrityHash = 0
	r.nextBlockID = 0
	r.early = nil
	r.transferComplete = false
}

func blockCount(compressedLength uint32) uint32 {
	total := compressedLength / BlockDataSize
	if compressedLength%BlockDataSize != 0 {
		total++
	}
	return total
}
