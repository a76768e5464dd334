package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/common/db"
)

// allowedColumns is the explicit allow-list of tables and columns the
// record store may touch. Identifiers never come from request input
// without passing through this list.
var allowedColumns = map[string]map[string]bool{
	"video_content": {
		"title":         true,
		"counter":       true,
		"order":         true,
		"content_type":  true,
		"is_active":     true,
		"video_path":    true,
		"video_url":     true,
		"subtitles_url": true,
	},
	"audio_content": {
		"title":        true,
		"counter":      true,
		"order":        true,
		"content_type": true,
		"is_active":    true,
		"audio_path":   true,
		"audio_url":    true,
		"text":         true,
	},
}

// RecordStore updates and reads individual content records by id through
// a narrow allow-listed SQL surface
type RecordStore struct {
	db *db.DB
}

// NewRecordStore creates a new record store
func NewRecordStore(db *db.DB) *RecordStore {
	return &RecordStore{db: db}
}

// Get reads a whole record as a column->value map. Returns
// models.ErrRecordNotFound when no row exists.
func (s *RecordStore) Get(ctx context.Context, table string, id int64) (map[string]any, error) {
	if _, ok := allowedColumns[table]; !ok {
		return nil, fmt.Errorf("table %q not allowed", table)
	}

	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, table)
	rows, err := s.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s/%d: %w", table, id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get record %s/%d: %w", table, id, err)
		}
		return nil, models.ErrRecordNotFound
	}

	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s/%d: %w", table, id, err)
	}

	record := make(map[string]any, len(values))
	for i, desc := range rows.FieldDescriptions() {
		record[desc.Name] = values[i]
	}

	return record, nil
}

// Update sets the given columns of a single record. Tables and columns
// are validated against the allow-list; values are always bound as
// query parameters.
func (s *RecordStore) Update(ctx context.Context, table string, id int64, fields map[string]any) error {
	cols, ok := allowedColumns[table]
	if !ok {
		return fmt.Errorf("table %q not allowed", table)
	}
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}

	// Stable order so the generated SQL is deterministic
	names := make([]string, 0, len(fields))
	for name := range fields {
		if !cols[name] {
			return fmt.Errorf("column %q not allowed on table %q", name, table)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	setClauses := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		setClauses = append(setClauses, fmt.Sprintf(`%q = $%d`, name, i+1))
		args = append(args, fields[name])
	}
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = $%d`,
		table, strings.Join(setClauses, ", "), len(args),
	)

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update record %s/%d: %w", table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrRecordNotFound
	}

	return nil
}
