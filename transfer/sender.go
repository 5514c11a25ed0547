package transfer

import (
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/loratools/lorafile/fountain"
)

// FileSender runs the sender loop for a single file: it frames metadata
// into a periodic info packet, emits fountain-coded data packets at a
// fixed pace, and owns the radio driver exclusively for the lifetime of
// the transfer.
type FileSender struct {
	driver  RadioDriver
	encoder *fountain.Encoder

	name               string
	decompressedLength uint32
	compressedLength   uint32
	integrityHash      uint32

	terminate atomic.Bool
	wg        sync.WaitGroup
	mu        sync.Mutex
	started   bool
}

// NewFileSender prepares a sender for path's contents, retaining only the
// last path component as the delivered file name.
func NewFileSender(driver RadioDriver, path string, data []byte) (*FileSender, error) {
	name := filepath.Base(path)
	inner := BuildInnerPayload(name, data)
	hash := IntegrityHash(inner)

	enc, err := fountain.NewEncoder(inner)
	if err != nil {
		return nil, ErrFileTooLarge
	}

	return &FileSender{
		driver:             driver,
		encoder:            enc,
		name:               name,
		decompressedLength: uint32(len(inner)),
		compressedLength:   uint32(enc.CompressedLen()),
		integrityHash:      hash,
	}, nil
}

// Start launches the sender's background goroutine. Calls after the first
// do nothing.
func (s *FileSender) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.wg.Add(1)
	go s.run()
}

func (s *FileSender) run() {
	defer s.wg.Done()

	var blockID uint32
	for !s.terminate.Load() {
		if blockID%infoEveryNBlocks == 0 {
			if err := s.sendInfo(blockID); err != nil {
				log.Printf("[sender] info send failed: %v", err)
				s.terminate.Store(true)
				return
			}
			sleepPacing()
			if s.terminate.Load() {
				return
			}
		}

		if err := s.sendBlock(blockID); err != nil {
			log.Printf("[sender] block %d send failed: %v", blockID, err)
			s.terminate.Store(true)
			return
		}
		sleepPacing()

		blockID++
	}
}

func (s *FileSender) sendInfo(blockID uint32) error {
	info := EncodeInfo(InfoPacket{
		CompressedLength:   s.compressedLength,
		IntegrityHash:      s.integrityHash,
		CurrentBlockID:     blockID,
		DecompressedLength: s.decompressedLength,
	})
	return s.driver.Send(info)
}

func (s *FileSender) sendBlock(blockID uint32) error {
	block, err := s.encoder.Encode(blockID)
	if err != nil {
		return err
	}
	return s.driver.Send(EncodeData(byte(blockID), block))
}

// Terminate requests that the background loop exit after finishing its
// current iteration.
func (s *FileSender) Terminate() {
	s.terminate.Store(true)
}

// Stopped reports whether the background loop has been asked to exit, or
// has already exited on its own after a send error.
func (s *FileSender) Stopped() bool {
	return s.terminate.Load()
}

// Shutdown is idempotent: set the termination flag, join the background
// goroutine, then close the radio driver. The driver must never be torn
// down before the goroutine that uses it has exited.
func (s *FileSender) Shutdown() error {
	s.terminate.Store(true)
	s.wg.Wait()
	return s.driver.Close()
}

func sleepPacing() {
	sleep(pacingInterval)
}
