package utils

import (
	"fmt"
	"strings"
)

// SortSpec holds a validated sort selection for listing tasks.
type SortSpec struct {
	Field      string
	Descending bool
}

// DefaultSortSpec orders by creation time, newest first.
func DefaultSortSpec() SortSpec {
	return SortSpec{Field: "createdAt", Descending: true}
}

var sortFields = map[string]struct{}{
	"createdAt": {},
	"dueDate":   {},
	"title":     {},
	"status":    {},
}

// ParseSortBy parses a "field:direction" token. An empty token yields the
// default order. Unknown fields are rejected; an unrecognized direction
// falls back to ascending.
func ParseSortBy(token string) (SortSpec, error) {
	if token == "" {
		return DefaultSortSpec(), nil
	}

	field := token
	direction := ""
	if i := strings.IndexByte(token, ':'); i >= 0 {
		field = token[:i]
		direction = token[i+1:]
	}

	if _, ok := sortFields[field]; !ok {
		return SortSpec{}, fmt.Errorf("unknown sort field %q", field)
	}

	return SortSpec{
		Field:      field,
		Descending: direction == "desc",
	}, nil
}
