package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pagehub/contentd/cmd/contentd/dedup"
	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/common/logger"
)

// RecordUpdater reads and repoints path fields on content records
type RecordUpdater interface {
	Get(ctx context.Context, table string, id int64) (map[string]any, error)
	Update(ctx context.Context, table string, id int64, fields map[string]any) error
}

// UploadService attaches uploaded media files to content records,
// routing every upload through the duplicate index so bitwise-identical
// content is stored exactly once.
type UploadService struct {
	hasher    *dedup.HashStore
	index     *dedup.DuplicateIndex
	records   RecordUpdater
	mediaRoot string
	log       *logger.Logger

	now func() time.Time
}

// NewUploadService creates a new upload service
func NewUploadService(hasher *dedup.HashStore, index *dedup.DuplicateIndex, records RecordUpdater, mediaRoot string, log *logger.Logger) *UploadService {
	return &UploadService{
		hasher:    hasher,
		index:     index,
		records:   records,
		mediaRoot: mediaRoot,
		log:       log,
		now:       time.Now,
	}
}

// Attach stores the uploaded bytes for a record, or repoints the record
// at an existing copy when the content is already stored. Returns the
// media-root-relative path the record now references and whether the
// upload was deduplicated.
func (s *UploadService) Attach(ctx context.Context, kind models.ContentKind, recordID int64, src io.ReadSeeker, filename string) (string, bool, error) {
	table, pathCol, err := storageColumns(kind)
	if err != nil {
		return "", false, err
	}

	hash, err := s.hasher.Sum(src)
	if err != nil {
		// Fail open: an unhashable upload is stored as new content,
		// never rejected
		s.log.Warn("hashing upload failed, skipping dedup", "record_id", recordID, "error", err)
		hash = ""
	}

	if hash != "" {
		if existing, ok := s.index.Lookup(ctx, hash, kind, candidateFields(kind)); ok {
			// Re-uploading the same bytes to the same record is a no-op
			if current, getErr := s.records.Get(ctx, table, recordID); getErr == nil {
				if p, _ := current[pathCol].(string); p == existing {
					return existing, true, nil
				}
			}
			err := s.records.Update(ctx, table, recordID, map[string]any{
				pathCol:        existing,
				"content_type": string(kind),
			})
			if err != nil {
				return "", false, fmt.Errorf("repoint record %s/%d: %w", table, recordID, err)
			}
			s.log.Info("duplicate upload repointed",
				"record_id", recordID, "kind", kind, "path", existing)
			return existing, true, nil
		}
	}

	rel, err := s.persist(src, kind, filename)
	if err != nil {
		return "", false, err
	}

	err = s.records.Update(ctx, table, recordID, map[string]any{
		pathCol:        rel,
		"content_type": string(kind),
	})
	if err != nil {
		return "", false, fmt.Errorf("update record %s/%d: %w", table, recordID, err)
	}

	if hash != "" {
		s.index.Add(hash, rel)
	}

	return rel, false, nil
}

// AttachFile is Attach for an on-disk temp file. The temp file is
// removed once its bytes are stored or found to be duplicates.
func (s *UploadService) AttachFile(ctx context.Context, kind models.ContentKind, recordID int64, tempPath, filename string) (string, bool, error) {
	f, err := os.Open(tempPath)
	if err != nil {
		return "", false, fmt.Errorf("open upload %s: %w", tempPath, err)
	}

	rel, deduped, err := s.Attach(ctx, kind, recordID, f, filename)
	f.Close()
	if err != nil {
		return "", false, err
	}

	if rmErr := os.Remove(tempPath); rmErr != nil {
		s.log.Warn("failed to remove upload temp file", "path", tempPath, "error", rmErr)
	}

	return rel, deduped, nil
}

// AttachURL repoints a record at a remote file. Remote URLs are never
// duplicate candidates, so no dedup lookup runs.
func (s *UploadService) AttachURL(ctx context.Context, kind models.ContentKind, recordID int64, fileURL string) error {
	if !dedup.IsRemoteURL(fileURL) {
		return fmt.Errorf("not a remote URL: %q", fileURL)
	}

	table, _, err := storageColumns(kind)
	if err != nil {
		return err
	}

	urlCol := "video_url"
	if kind == models.KindAudio {
		urlCol = "audio_url"
	}

	return s.records.Update(ctx, table, recordID, map[string]any{
		urlCol:         fileURL,
		"content_type": string(kind),
	})
}

// persist writes the source bytes to the canonical dated location under
// the media root
func (s *UploadService) persist(src io.Reader, kind models.ContentKind, filename string) (string, error) {
	rel := path.Join(s.now().Format("2006/01/02"), string(kind), filepath.Base(filename))
	dest := filepath.Join(s.mediaRoot, filepath.FromSlash(rel))

	// A different file may already own this name; keep both
	if _, err := os.Stat(dest); err == nil {
		ext := path.Ext(filename)
		base := filepath.Base(filename[:len(filename)-len(ext)])
		rel = path.Join(path.Dir(rel), fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:8], ext))
		dest = filepath.Join(s.mediaRoot, filepath.FromSlash(rel))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("close %s: %w", dest, err)
	}

	return rel, nil
}

func storageColumns(kind models.ContentKind) (table, pathCol string, err error) {
	switch kind {
	case models.KindVideo:
		return "video_content", "video_path", nil
	case models.KindAudio:
		return "audio_content", "audio_path", nil
	}
	return "", "", fmt.Errorf("unknown content kind: %q", kind)
}

// candidateFields lists the path-bearing columns scanned by the dedup
// record tier for a kind. URL columns are included for completeness but
// remote values are skipped during the scan.
func candidateFields(kind models.ContentKind) []string {
	if kind == models.KindAudio {
		return []string{"audio_path", "audio_url"}
	}
	return []string{"video_path", "video_url"}
}
