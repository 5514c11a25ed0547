// Package fileio reads the file handed to the sender and writes the file
// delivered by the receiver. Neither belongs to the transfer engine's core
// logic; both are external collaborators it calls through.
package fileio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/mmap"
)

// mmapThreshold is the file size at or above which ReadFile reads the
// file through a memory map instead of os.ReadFile.
const mmapThreshold = 4 << 20 // 4 MiB

var errPathEscapesWorkingDirectory = errors.New("fileio: file name escapes the working directory")

// ReadFile returns the full contents of path. Small files are read with
// os.ReadFile; larger files are read through a memory-mapped reader. In
// both cases the whole file is copied into one returned heap buffer.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() < mmapThreshold {
		return os.ReadFile(path)
	}
	return readMmap(path, info.Size())
}

func readMmap(path string, size int64) ([]byte, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteBufferToFile writes data to a file named by name, relative to the
// current working directory. It rejects names that would escape that
// directory, since name arrives off the wire from a sender that is not
// trusted to produce a safe path.
func WriteBufferToFile(name string, data []byte) error {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return errPathEscapesWorkingDirectory
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	target := filepath.Join(wd, clean)
	rel, err := filepath.Rel(wd, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return errPathEscapesWorkingDirectory
	}

	return os.WriteFile(target, data, 0o644)
}
