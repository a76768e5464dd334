package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPageNotFound is returned when a requested page does not exist
var ErrPageNotFound = errors.New("page not found")

// ErrRecordNotFound is returned when a content record does not exist
var ErrRecordNotFound = errors.New("record not found")

// ErrSourceUnavailable wraps failures of the underlying page store
var ErrSourceUnavailable = errors.New("source of record unavailable")

// ValidationError carries per-field validation failures
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
