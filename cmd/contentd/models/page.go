package models

import "time"

// PageDetail is the full serialized form of a page and its media contents
type PageDetail struct {
	ID        int64       `json:"id"`
	Contents  ContentList `json:"contents"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	URL       string      `json:"url"`
	Title     string      `json:"title"`
	Text      string      `json:"text"`
}

// PageList is the paginated list envelope
type PageList struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []*PageDetail `json:"results"`
}
