package secrets

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
)

const wipeBlockSize = 64 * 1024

type wipePattern int

const (
	wipeOnes wipePattern = iota
	wipeRandom
	wipeZeros
)

// wipeAndRemove overwrites the file with ones, random data twice, and zeros,
// syncing after each pass, then deletes it.
func wipeAndRemove(path string) error {
	for _, pattern := range []wipePattern{wipeOnes, wipeRandom, wipeRandom, wipeZeros} {
		if err := wipeFile(path, pattern); err != nil {
			return err
		}
	}
	return os.Remove(path)
}

func wipeFile(path string, pattern wipePattern) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size == 0 {
		return nil
	}

	block := make([]byte, min(size, wipeBlockSize))
	switch pattern {
	case wipeOnes:
		for i := range block {
			block[i] = 0xff
		}
	case wipeRandom:
		if _, err := io.ReadFull(rand.Reader, block); err != nil {
			return fmt.Errorf("failed to read random data: %w", err)
		}
	}

	for written := int64(0); written < size; {
		n := min(int64(len(block)), size-written)
		if _, err := f.WriteAt(block[:n], written); err != nil {
			return err
		}
		written += n
	}

	return f.Sync()
}
