package repository

import (
	"context"
	"fmt"

	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/common/db"
)

// ContentRepository handles database operations for media contents
type ContentRepository struct {
	db *db.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *db.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// ListByPages retrieves every video and audio content belonging to the
// given pages, keyed by page id and sorted by (order, counter) ascending.
func (r *ContentRepository) ListByPages(ctx context.Context, pageIDs []int64) (map[int64]models.ContentList, error) {
	contents := make(map[int64]models.ContentList, len(pageIDs))
	if len(pageIDs) == 0 {
		return contents, nil
	}

	videoQuery := `
		SELECT id, title, counter, "order", page_id, is_active,
		       video_path, video_url, subtitles_url
		FROM video_content
		WHERE page_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, videoQuery, pageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list video contents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pageID int64
		item := &models.VideoItem{}
		item.ContentType = models.KindVideo
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Counter,
			&item.Order,
			&pageID,
			&item.IsActive,
			&item.VideoPath,
			&item.VideoURL,
			&item.SubtitlesURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan video content: %w", err)
		}
		contents[pageID] = append(contents[pageID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read video contents: %w", err)
	}
	rows.Close()

	audioQuery := `
		SELECT id, title, counter, "order", page_id, is_active,
		       audio_path, audio_url
		FROM audio_content
		WHERE page_id = ANY($1)
	`

	rows, err = r.db.Query(ctx, audioQuery, pageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list audio contents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pageID int64
		item := &models.AudioItem{}
		item.ContentType = models.KindAudio
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Counter,
			&item.Order,
			&pageID,
			&item.IsActive,
			&item.AudioPath,
			&item.AudioURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audio content: %w", err)
		}
		contents[pageID] = append(contents[pageID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audio contents: %w", err)
	}

	for _, list := range contents {
		list.Sort()
	}

	return contents, nil
}

// ApplyIncrements runs one atomic counter+1 update per reference inside a
// single transaction. A reference that matches no row is skipped; any query
// failure rolls back the whole batch. Returns the number of rows updated.
func (r *ContentRepository) ApplyIncrements(ctx context.Context, refs []models.ContentReference) (int, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin counter transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	applied := 0
	for _, ref := range refs {
		table, ok := tableForKind(ref.Kind)
		if !ok {
			continue
		}

		query := fmt.Sprintf(
			`UPDATE %s SET counter = counter + 1 WHERE id = $1 AND content_type = $2`,
			table,
		)
		tag, err := tx.Exec(ctx, query, ref.ID, string(ref.Kind))
		if err != nil {
			return 0, fmt.Errorf("failed to increment counter for %s %d: %w", ref.Kind, ref.ID, err)
		}
		applied += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit counter transaction: %w", err)
	}

	return applied, nil
}

// PathsByKind returns the values of the given path-bearing columns for
// every record of the kind. Used by the dedup record-scan tier.
func (r *ContentRepository) PathsByKind(ctx context.Context, kind models.ContentKind, fields []string) ([]string, error) {
	table, ok := tableForKind(kind)
	if !ok {
		return nil, fmt.Errorf("unknown content kind: %q", kind)
	}

	var paths []string
	for _, field := range fields {
		if !allowedColumns[table][field] {
			return nil, fmt.Errorf("column %q not allowed on table %q", field, table)
		}

		query := fmt.Sprintf(
			`SELECT %s FROM %s WHERE %s IS NOT NULL AND %s <> ''`,
			field, table, field, field,
		)
		rows, err := r.db.Query(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s.%s: %w", table, field, err)
		}

		for rows.Next() {
			var p string
			if err := rows.Scan(&p); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan path: %w", err)
			}
			paths = append(paths, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to read paths: %w", err)
		}
		rows.Close()
	}

	return paths, nil
}

func tableForKind(kind models.ContentKind) (string, bool) {
	switch kind {
	case models.KindVideo:
		return "video_content", true
	case models.KindAudio:
		return "audio_content", true
	}
	return "", false
}
