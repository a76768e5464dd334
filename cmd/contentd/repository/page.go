package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/common/db"
)

//go:embed schema.sql
var schemaSQL string

// InitSchema creates the page and content tables if they do not exist
func InitSchema(database *db.DB) error {
	_, err := database.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

// PageRepository handles database operations for pages
type PageRepository struct {
	db *db.DB
}

// NewPageRepository creates a new page repository
func NewPageRepository(db *db.DB) *PageRepository {
	return &PageRepository{db: db}
}

// List retrieves a page of page records ordered by title
func (r *PageRepository) List(ctx context.Context, limit, offset int) ([]*models.PageDetail, error) {
	query := `
		SELECT id, created_at, updated_at, url, title, text
		FROM page
		ORDER BY title
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []*models.PageDetail
	for rows.Next() {
		page := &models.PageDetail{}
		if err := rows.Scan(
			&page.ID,
			&page.CreatedAt,
			&page.UpdatedAt,
			&page.URL,
			&page.Title,
			&page.Text,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pages: %w", err)
	}

	return pages, nil
}

// Count returns the total number of pages
func (r *PageRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM page`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// GetByID retrieves a single page. Returns models.ErrPageNotFound when
// no row exists.
func (r *PageRepository) GetByID(ctx context.Context, id int64) (*models.PageDetail, error) {
	query := `
		SELECT id, created_at, updated_at, url, title, text
		FROM page
		WHERE id = $1
	`

	page := &models.PageDetail{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&page.ID,
		&page.CreatedAt,
		&page.UpdatedAt,
		&page.URL,
		&page.Title,
		&page.Text,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page %d: %w", id, err)
	}

	return page, nil
}
