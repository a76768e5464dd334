package dedup

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/common/logger"
)

// RecordScanner supplies candidate path values stored on existing
// content records, for the record-scan lookup tier
type RecordScanner interface {
	PathsByKind(ctx context.Context, kind models.ContentKind, fields []string) ([]string, error)
}

// DuplicateIndex maps content hashes to canonical media-root-relative
// paths. Lookups fall through three tiers: the in-memory map, a scan of
// path fields on existing records, and a walk of the media root. Hits
// from the slower tiers are memoized into the map.
type DuplicateIndex struct {
	mu        sync.RWMutex
	byHash    map[string]string
	hasher    *HashStore
	scanner   RecordScanner
	mediaRoot string
	log       *logger.Logger
}

// NewDuplicateIndex creates an empty index over the given media root
func NewDuplicateIndex(hasher *HashStore, scanner RecordScanner, mediaRoot string, log *logger.Logger) *DuplicateIndex {
	return &DuplicateIndex{
		byHash:    make(map[string]string),
		hasher:    hasher,
		scanner:   scanner,
		mediaRoot: mediaRoot,
		log:       log,
	}
}

// IsRemoteURL reports whether a source points at a remote file. Remote
// URLs are never duplicate candidates.
func IsRemoteURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Lookup resolves a content hash to the canonical path of an already
// stored copy, or reports no match. Hashing failures on individual
// candidates are logged and skipped; they never fail the lookup.
func (i *DuplicateIndex) Lookup(ctx context.Context, hash string, kind models.ContentKind, fields []string) (string, bool) {
	// Tier 1: memory
	i.mu.RLock()
	path, ok := i.byHash[hash]
	i.mu.RUnlock()
	if ok {
		return path, true
	}

	// Tier 2: path fields of existing records
	if path, ok := i.scanRecords(ctx, hash, kind, fields); ok {
		i.Add(hash, path)
		return path, true
	}

	// Tier 3: full media root walk
	if path, ok := i.scanStorage(hash); ok {
		i.Add(hash, path)
		return path, true
	}

	return "", false
}

// Add registers a hash with its canonical path
func (i *DuplicateIndex) Add(hash, path string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.byHash[hash] = path
}

// Clear drops every memoized entry
func (i *DuplicateIndex) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.byHash = make(map[string]string)
}

func (i *DuplicateIndex) scanRecords(ctx context.Context, hash string, kind models.ContentKind, fields []string) (string, bool) {
	if i.scanner == nil || len(fields) == 0 {
		return "", false
	}

	paths, err := i.scanner.PathsByKind(ctx, kind, fields)
	if err != nil {
		i.log.Error("dedup record scan failed", "kind", kind, "error", err)
		return "", false
	}

	for _, candidate := range paths {
		if candidate == "" || IsRemoteURL(candidate) {
			continue
		}

		sum, err := i.hasher.SumFile(filepath.Join(i.mediaRoot, candidate))
		if err != nil {
			i.log.Warn("dedup candidate unreadable", "path", candidate, "error", err)
			continue
		}
		if sum == hash {
			return candidate, true
		}
	}

	return "", false
}

func (i *DuplicateIndex) scanStorage(hash string) (string, bool) {
	if i.mediaRoot == "" {
		return "", false
	}

	var found string
	err := filepath.WalkDir(i.mediaRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			i.log.Warn("dedup storage walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		sum, err := i.hasher.SumFile(path)
		if err != nil {
			i.log.Warn("dedup storage candidate unreadable", "path", path, "error", err)
			return nil
		}
		if sum == hash {
			rel, err := filepath.Rel(i.mediaRoot, path)
			if err != nil {
				return nil
			}
			found = rel
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		i.log.Error("dedup storage walk failed", "root", i.mediaRoot, "error", err)
		return "", false
	}

	return found, found != ""
}
