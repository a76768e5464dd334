package dedup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/common/logger"
)

type stubScanner struct {
	paths []string
	calls int
	err   error
}

func (s *stubScanner) PathsByKind(ctx context.Context, kind models.ContentKind, fields []string) ([]string, error) {
	s.calls++
	return s.paths, s.err
}

func testLogger() *logger.Logger {
	return logger.New("error", "json")
}

func writeMedia(t *testing.T, root, rel string, content []byte) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, content, 0o644))
	return full
}

func TestDuplicateIndex_MemoryTier(t *testing.T) {
	idx := NewDuplicateIndex(NewHashStore(0), &stubScanner{}, t.TempDir(), testLogger())

	idx.Add("abc123", "2025/07/12/video/clip.mp4")

	path, ok := idx.Lookup(context.Background(), "abc123", models.KindVideo, nil)
	require.True(t, ok)
	assert.Equal(t, "2025/07/12/video/clip.mp4", path)
}

func TestDuplicateIndex_RecordScanTier(t *testing.T) {
	root := t.TempDir()
	content := []byte("record scan candidate")
	writeMedia(t, root, "2025/01/02/video/a.mp4", content)

	hasher := NewHashStore(0)
	sum, err := hasher.SumFile(filepath.Join(root, "2025/01/02/video/a.mp4"))
	require.NoError(t, err)

	scanner := &stubScanner{paths: []string{
		"https://cdn.example.com/remote.mp4", // remote, never hashed
		"2025/01/02/video/a.mp4",
	}}
	idx := NewDuplicateIndex(hasher, scanner, root, testLogger())

	path, ok := idx.Lookup(context.Background(), sum, models.KindVideo, []string{"video_path"})
	require.True(t, ok)
	assert.Equal(t, "2025/01/02/video/a.mp4", path)
	assert.Equal(t, 1, scanner.calls)

	// The hit is memoized: a repeat lookup never re-scans
	_, ok = idx.Lookup(context.Background(), sum, models.KindVideo, []string{"video_path"})
	require.True(t, ok)
	assert.Equal(t, 1, scanner.calls)
}

func TestDuplicateIndex_StorageWalkTier(t *testing.T) {
	root := t.TempDir()
	content := []byte("orphaned on disk, unknown to any record")
	writeMedia(t, root, "2024/12/31/audio/old.mp3", content)

	hasher := NewHashStore(0)
	sum, err := hasher.SumFile(filepath.Join(root, "2024/12/31/audio/old.mp3"))
	require.NoError(t, err)

	idx := NewDuplicateIndex(hasher, &stubScanner{}, root, testLogger())

	path, ok := idx.Lookup(context.Background(), sum, models.KindAudio, []string{"audio_path"})
	require.True(t, ok)
	assert.Equal(t, filepath.FromSlash("2024/12/31/audio/old.mp3"), path)

	// Memoized: removing the file does not break re-lookup
	require.NoError(t, os.Remove(filepath.Join(root, "2024/12/31/audio/old.mp3")))
	path, ok = idx.Lookup(context.Background(), sum, models.KindAudio, nil)
	require.True(t, ok)
	assert.Equal(t, filepath.FromSlash("2024/12/31/audio/old.mp3"), path)
}

func TestDuplicateIndex_NoMatch(t *testing.T) {
	idx := NewDuplicateIndex(NewHashStore(0), &stubScanner{}, t.TempDir(), testLogger())

	_, ok := idx.Lookup(context.Background(), "deadbeef", models.KindVideo, []string{"video_path"})
	assert.False(t, ok)
}

func TestDuplicateIndex_UnreadableCandidatesAreSkipped(t *testing.T) {
	root := t.TempDir()
	content := []byte("good candidate after a bad one")
	writeMedia(t, root, "2025/05/05/video/good.mp4", content)

	hasher := NewHashStore(0)
	sum, err := hasher.SumFile(filepath.Join(root, "2025/05/05/video/good.mp4"))
	require.NoError(t, err)

	scanner := &stubScanner{paths: []string{
		"2025/05/05/video/missing.mp4", // does not exist, fail open
		"2025/05/05/video/good.mp4",
	}}
	idx := NewDuplicateIndex(hasher, scanner, root, testLogger())

	path, ok := idx.Lookup(context.Background(), sum, models.KindVideo, []string{"video_path"})
	require.True(t, ok)
	assert.Equal(t, "2025/05/05/video/good.mp4", path)
}

func TestDuplicateIndex_ScannerErrorFailsOpen(t *testing.T) {
	idx := NewDuplicateIndex(
		NewHashStore(0),
		&stubScanner{err: fmt.Errorf("db offline")},
		t.TempDir(),
		testLogger(),
	)

	_, ok := idx.Lookup(context.Background(), "abc", models.KindVideo, []string{"video_path"})
	assert.False(t, ok)
}

func TestDuplicateIndex_Clear(t *testing.T) {
	idx := NewDuplicateIndex(NewHashStore(0), &stubScanner{}, t.TempDir(), testLogger())

	idx.Add("h", "p")
	idx.Clear()

	_, ok := idx.Lookup(context.Background(), "h", models.KindVideo, nil)
	assert.False(t, ok)
}

func TestDuplicateIndex_ConcurrentAccess(t *testing.T) {
	idx := NewDuplicateIndex(NewHashStore(0), &stubScanner{}, t.TempDir(), testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			idx.Add(fmt.Sprintf("hash-%d", n), fmt.Sprintf("path-%d", n))
		}(i)
		go func(n int) {
			defer wg.Done()
			idx.Lookup(context.Background(), fmt.Sprintf("hash-%d", n), models.KindVideo, nil)
		}(i)
	}
	wg.Wait()

	path, ok := idx.Lookup(context.Background(), "hash-7", models.KindVideo, nil)
	require.True(t, ok)
	assert.Equal(t, "path-7", path)
}

func TestIsRemoteURL(t *testing.T) {
	assert.True(t, IsRemoteURL("http://files.example.com/a.mp4"))
	assert.True(t, IsRemoteURL("https://files.example.com/a.mp4"))
	assert.False(t, IsRemoteURL("2025/01/01/video/a.mp4"))
	assert.False(t, IsRemoteURL(""))
}
