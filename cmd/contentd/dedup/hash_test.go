package dedup

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashStore_StreamAndFileAgree(t *testing.T) {
	content := []byte("the same bytes, whatever the source representation")

	hasher := NewHashStore(0)

	streamSum, err := hasher.Sum(bytes.NewReader(content))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "copy.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	fileSum, err := hasher.SumFile(path)
	require.NoError(t, err)

	assert.Equal(t, streamSum, fileSum)

	want := md5.Sum(content)
	assert.Equal(t, hex.EncodeToString(want[:]), streamSum)
}

func TestHashStore_RestoresStreamPosition(t *testing.T) {
	content := []byte("consumed twice")
	r := bytes.NewReader(content)

	hasher := NewHashStore(4)
	_, err := hasher.Sum(r)
	require.NoError(t, err)

	// The caller must be able to read the same bytes again
	again, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, content, again)
}

func TestHashStore_ChunkingDoesNotAffectDigest(t *testing.T) {
	content := bytes.Repeat([]byte("abcdef0123456789"), 1000)

	small := NewHashStore(7)
	large := NewHashStore(1 << 20)

	a, err := small.Sum(bytes.NewReader(content))
	require.NoError(t, err)
	b, err := large.Sum(bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashStore_MissingFile(t *testing.T) {
	hasher := NewHashStore(0)

	_, err := hasher.SumFile(filepath.Join(t.TempDir(), "nope.mp4"))
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
func (failingReader) Seek(int64, int) (int64, error) { return 0, nil }

func TestHashStore_StreamErrorSurfaces(t *testing.T) {
	hasher := NewHashStore(0)

	_, err := hasher.Sum(failingReader{})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
