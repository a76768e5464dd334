package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize is the read granularity used when hashing, bounding
// memory use regardless of file size
const DefaultChunkSize = 2 * 1024 * 1024

// HashStore computes content hashes of byte streams and files
type HashStore struct {
	chunkSize int
}

// NewHashStore creates a hash store with the given chunk size.
// Non-positive sizes fall back to DefaultChunkSize.
func NewHashStore(chunkSize int) *HashStore {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &HashStore{chunkSize: chunkSize}
}

// Sum hashes a seekable stream and restores its position to the start,
// so the caller can consume the same bytes again.
func (h *HashStore) Sum(r io.ReadSeeker) (string, error) {
	hasher := md5.New()
	buf := make([]byte, h.chunkSize)

	if _, err := io.CopyBuffer(hasher, r, buf); err != nil {
		return "", fmt.Errorf("hash stream: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind stream after hashing: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// SumFile hashes the file at path. The file is fully consumed and
// closed before returning.
func (h *HashStore) SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	hasher := md5.New()
	buf := make([]byte, h.chunkSize)

	if _, err := io.CopyBuffer(hasher, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
